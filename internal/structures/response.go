package structures

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/haryoiro/ytmgrab/internal/api"
	"github.com/haryoiro/ytmgrab/internal/parser"
)

const (
	// BrowseIDKey is required in every endpoint payload.
	BrowseIDKey = "browse_id"

	watchURL = "https://www.youtube.com/watch?v=%s"
)

// Fetcher posts a payload to the API. *api.Client implements it.
type Fetcher interface {
	Send(ctx context.Context, payload map[string]any, target api.Target) (any, error)
}

// PayloadError reports a payload that cannot be sent.
type PayloadError struct {
	Title  string
	Reason string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid payload for %q: %s", e.Title, e.Reason)
}

// Endpoint is a catalog section. Its playlists are fetched on first use and
// kept for the life of the value.
type Endpoint struct {
	title   string
	payload map[string]any
	fetcher Fetcher

	// mu serialises fetches; fetched is readable without it.
	mu        sync.Mutex
	fetched   atomic.Bool
	playlists []*Playlist
}

// NewEndpoint validates payload before anything is sent.
func NewEndpoint(title string, payload map[string]any, fetcher Fetcher) (*Endpoint, error) {
	if _, ok := payload[BrowseIDKey]; !ok {
		return nil, &PayloadError{Title: title, Reason: "missing " + BrowseIDKey}
	}
	return &Endpoint{
		title:   title,
		payload: copyPayload(payload),
		fetcher: fetcher,
	}, nil
}

func (e *Endpoint) Title() string { return e.title }

func (e *Endpoint) Payload() map[string]any { return copyPayload(e.payload) }

// Fetched reports whether Playlists has already succeeded. It does not wait
// for a fetch in flight.
func (e *Endpoint) Fetched() bool {
	return e.fetched.Load()
}

// Playlists returns the cached playlists, fetching them on the first call.
// A failed fetch leaves the cache empty so the next call tries again.
func (e *Endpoint) Playlists(ctx context.Context) ([]*Playlist, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fetched.Load() {
		return e.playlists, nil
	}

	raw, err := e.fetcher.Send(ctx, e.payload, api.TargetBrowse)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", e.title, err)
	}
	records, err := parser.ParseEndpointResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", e.title, err)
	}

	playlists := make([]*Playlist, 0, len(records))
	for _, r := range records {
		playlists = append(playlists, NewPlaylist(r.Title, r.Payload, e.fetcher))
	}

	e.playlists = playlists
	e.fetched.Store(true)
	return e.playlists, nil
}

// Playlist is a track list. A nil payload means the API offered no way to
// open it.
type Playlist struct {
	title   string
	payload map[string]any
	fetcher Fetcher

	mu      sync.Mutex
	fetched atomic.Bool
	tracks  []Track
}

func NewPlaylist(title string, payload map[string]any, fetcher Fetcher) *Playlist {
	return &Playlist{
		title:   title,
		payload: copyPayload(payload),
		fetcher: fetcher,
	}
}

func (p *Playlist) Title() string { return p.title }

func (p *Playlist) Payload() map[string]any { return copyPayload(p.payload) }

// Available reports whether the playlist can be opened.
func (p *Playlist) Available() bool { return p.payload != nil }

// ID is the playlistId, or the videoId for radio style entries.
func (p *Playlist) ID() string {
	for _, key := range []string{"playlistId", "videoId"} {
		if id, ok := p.payload[key].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

func (p *Playlist) Fetched() bool {
	return p.fetched.Load()
}

// Tracks returns the cached tracks, fetching them on the first call.
func (p *Playlist) Tracks(ctx context.Context) ([]Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fetched.Load() {
		return p.tracks, nil
	}
	if p.payload == nil {
		return nil, &PayloadError{Title: p.title, Reason: "no payload"}
	}

	raw, err := p.fetcher.Send(ctx, p.payload, api.TargetNext)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", p.title, err)
	}
	records, err := parser.ParsePlaylistResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.title, err)
	}

	tracks := make([]Track, 0, len(records))
	for _, r := range records {
		tracks = append(tracks, Track{
			Artist:  r.Artist,
			Title:   r.Title,
			Length:  r.Length,
			VideoID: r.VideoID,
		})
	}

	p.tracks = tracks
	p.fetched.Store(true)
	return p.tracks, nil
}

// Track is immutable once parsed.
type Track struct {
	Artist  string `json:"artist"`
	Title   string `json:"title"`
	Length  string `json:"length"`
	VideoID string `json:"video_id"`
}

// URL is the canonical watch URL handed to the downloader.
func (t Track) URL() string {
	return fmt.Sprintf(watchURL, t.VideoID)
}

func (t Track) String() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

func copyPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	return out
}
