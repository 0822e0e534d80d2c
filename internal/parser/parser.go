// Package parser turns raw browse and next responses into playlist and track
// records using the presets in catalog.go.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haryoiro/ytmgrab/internal/chain"
	"github.com/haryoiro/ytmgrab/internal/logger"
)

// ErrUnexpectedResponse wraps every failure of a required chain.
var ErrUnexpectedResponse = errors.New("unexpected response")

// PlaylistRecord is one entry of an endpoint listing. Payload is nil when no
// payload preset matched.
type PlaylistRecord struct {
	Title   string
	Payload map[string]any
}

// TrackRecord is one entry of a playlist.
type TrackRecord struct {
	Artist  string
	Title   string
	Length  string
	VideoID string
}

// ParseEndpointResponse extracts the playlists listed in a browse response.
func ParseEndpointResponse(raw any) ([]PlaylistRecord, error) {
	items, err := contents(raw, EndpointContents())
	if err != nil {
		return nil, err
	}

	records := make([]PlaylistRecord, 0, len(items))
	for i, item := range items {
		item = chain.Unwrap(item)

		title, err := playlistTitle(item)
		if err != nil {
			return nil, fmt.Errorf("playlist item %d: %w", i, err)
		}

		payload, err := playlistPayload(item)
		if err != nil {
			return nil, fmt.Errorf("playlist item %d: %w", i, err)
		}
		if payload == nil {
			logger.Debug("No payload preset matched for %q", title)
		}

		records = append(records, PlaylistRecord{Title: title, Payload: payload})
	}

	return records, nil
}

// ParsePlaylistResponse extracts the tracks of a next response. Items missing
// a field, including a text fragment without "text", are skipped. A fragment
// whose text is not a string aborts the whole batch.
func ParsePlaylistResponse(raw any) ([]TrackRecord, error) {
	items, err := contents(raw, PlaylistContents())
	if err != nil {
		return nil, err
	}

	records := make([]TrackRecord, 0, len(items))
	for i, item := range items {
		track, err := parseTrack(chain.Unwrap(item))
		if err != nil {
			if errors.Is(err, chain.ErrRunText) {
				return nil, fmt.Errorf("track item %d: %w", i, err)
			}
			logger.Debug("Skipping track item %d: %v", i, err)
			continue
		}
		records = append(records, track)
	}

	return records, nil
}

func contents(raw any, preset Preset) ([]any, error) {
	value, err := chain.Extract(raw, preset.Chain...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s contents: %w", ErrUnexpectedResponse, preset.Name, err)
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s contents is %T, not a list", ErrUnexpectedResponse, preset.Name, value)
	}
	return items, nil
}

func playlistTitle(item any) (string, error) {
	title, err := requiredText(item, "title", chain.RunsKey)
	if err != nil {
		if errors.Is(err, chain.ErrRunText) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}

	sub := chain.Lookup(item, "subtitle", chain.RunsKey)
	if errors.Is(sub.Err, chain.ErrRunText) {
		return "", sub.Err
	}
	if subtitle, ok := sub.Value.(string); sub.OK() && ok {
		return fmt.Sprintf("%s (%s)", title, strings.TrimSpace(subtitle)), nil
	}

	return title, nil
}

func playlistPayload(item any) (map[string]any, error) {
	for _, preset := range EndpointPayloads() {
		res := chain.Lookup(item, preset.Chain...)
		if errors.Is(res.Err, chain.ErrRunText) {
			return nil, res.Err
		}
		found, ok := res.Value.(map[string]any)
		if !res.OK() || !ok {
			continue
		}

		payload := make(map[string]any, len(preset.ReturnKeys))
		for _, key := range preset.ReturnKeys {
			if v, has := found[key]; has {
				payload[key] = v
			}
		}
		return payload, nil
	}

	return nil, nil
}

func parseTrack(item any) (TrackRecord, error) {
	title, err := requiredText(item, "title", chain.RunsKey)
	if err != nil {
		return TrackRecord{}, fmt.Errorf("title: %w", err)
	}

	length, err := requiredText(item, "lengthText", chain.RunsKey)
	if err != nil {
		return TrackRecord{}, fmt.Errorf("length: %w", err)
	}

	rawID, err := chain.Extract(item, "videoId")
	if err != nil {
		return TrackRecord{}, fmt.Errorf("video id: %w", err)
	}
	videoID, ok := rawID.(string)
	if !ok {
		return TrackRecord{}, fmt.Errorf("video id: %w: %T", chain.ErrMalformed, rawID)
	}

	artist, err := trackArtist(item)
	if err != nil {
		return TrackRecord{}, fmt.Errorf("artist: %w", err)
	}

	return TrackRecord{
		Artist:  artist,
		Title:   title,
		Length:  length,
		VideoID: videoID,
	}, nil
}

// trackArtist joins the byline fragments that link to artist pages. Without
// any, the first fragment is the uploader and is used verbatim.
func trackArtist(item any) (string, error) {
	raw, err := chain.Extract(item, "longBylineText")
	if err != nil {
		return "", err
	}
	byline, ok := raw.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: byline is %T", chain.ErrMalformed, raw)
	}
	runs, ok := byline[chain.RunsKey].([]any)
	if !ok {
		return "", fmt.Errorf("%w: byline runs", chain.ErrAbsent)
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("%w: empty byline", chain.ErrAbsent)
	}

	pageType := ArtistPageType()
	var artists []string
	for _, run := range runs {
		text, err := chain.RunText(run)
		if err != nil {
			return "", err
		}
		res := chain.Lookup(run, pageType.Chain...)
		if kind, ok := res.Value.(string); res.OK() && ok && kind == ArtistPageTypeValue {
			artists = append(artists, text)
		}
	}

	if len(artists) > 0 {
		return strings.Join(artists, ", "), nil
	}
	return chain.RunText(runs[0])
}

func requiredText(item any, steps ...chain.Step) (string, error) {
	value, err := chain.Extract(item, steps...)
	if err != nil {
		return "", err
	}
	text, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %v is %T", chain.ErrMalformed, steps, value)
	}
	return strings.TrimSpace(text), nil
}
