package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/haryoiro/ytmgrab/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	var v any
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func browseWith(items ...any) map[string]any {
	return map[string]any{
		"contents": map[string]any{
			"content": map[string]any{
				"contents": map[string]any{"items": items},
			},
		},
	}
}

func nextWith(items ...any) map[string]any {
	return map[string]any{
		"contents": []any{
			map[string]any{"content": map[string]any{"content": map[string]any{"contents": items}}},
			map[string]any{"tabRenderer": map[string]any{"title": "Lyrics"}},
		},
	}
}

func runs(texts ...string) map[string]any {
	out := make([]any, 0, len(texts))
	for _, text := range texts {
		out = append(out, map[string]any{"text": text})
	}
	return map[string]any{"runs": out}
}

func artistRun(text, pageType string) map[string]any {
	return map[string]any{
		"text": text,
		"navigationEndpoint": map[string]any{
			"browseEndpoint": map[string]any{
				"browseId": "UC_" + text,
				"browseEndpointContextSupportedConfigs": map[string]any{
					"browseEndpointContextMusicConfig": map[string]any{"pageType": pageType},
				},
			},
		},
	}
}

func trackItem(title, videoID string, byline ...any) map[string]any {
	renderer := map[string]any{
		"title":          runs(title),
		"lengthText":     runs("2:30"),
		"longBylineText": map[string]any{"runs": byline},
	}
	if videoID != "" {
		renderer["videoId"] = videoID
	}
	return map[string]any{"playlistPanelVideoRenderer": renderer}
}

func TestParseEndpointResponseFixture(t *testing.T) {
	records, err := ParseEndpointResponse(loadFixture(t, "browse_response.json"))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, PlaylistRecord{
		Title:   "Chill Mix (Playlist - YouTube Music)",
		Payload: map[string]any{"playlistId": "RDCLAK5uy_chill", "params": "wAEB"},
	}, records[0])

	assert.Equal(t, PlaylistRecord{
		Title:   "Repeat Song",
		Payload: map[string]any{"videoId": "dQw4w9WgXcQ", "params": "wAEB"},
	}, records[1])

	assert.Equal(t, "Liked Music (Auto playlist)", records[2].Title)
	assert.Nil(t, records[2].Payload)
}

func TestParseEndpointPayloadFallback(t *testing.T) {
	item := map[string]any{
		"title": runs("Second"),
		"menu": map[string]any{
			"items": []any{
				map[string]any{
					"navigationEndpoint": map[string]any{
						"watchPlaylistEndpoint": map[string]any{
							"playlistId": "PL2",
							"params":     "p2",
							"videoId":    "should-not-leak",
						},
					},
					"text": runs("Shuffle"),
				},
				map[string]any{"text": runs("Save to library")},
			},
		},
	}

	records, err := ParseEndpointResponse(browseWith(item))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Second", records[0].Title)
	assert.Equal(t, map[string]any{"playlistId": "PL2", "params": "p2"}, records[0].Payload)
}

func TestParseEndpointResponseErrors(t *testing.T) {
	t.Run("contents chain missing", func(t *testing.T) {
		_, err := ParseEndpointResponse(map[string]any{"error": "x", "code": 400.0})
		assert.ErrorIs(t, err, ErrUnexpectedResponse)
	})

	t.Run("contents not a list", func(t *testing.T) {
		raw := map[string]any{
			"contents": map[string]any{"content": map[string]any{"contents": map[string]any{"items": "nope"}}},
		}
		_, err := ParseEndpointResponse(raw)
		assert.ErrorIs(t, err, ErrUnexpectedResponse)
	})

	t.Run("item without title", func(t *testing.T) {
		_, err := ParseEndpointResponse(browseWith(
			map[string]any{"title": runs("ok"), "menu": map[string]any{}},
			map[string]any{"subtitle": runs("orphan"), "menu": map[string]any{}},
		))
		assert.ErrorIs(t, err, ErrUnexpectedResponse)
	})

	t.Run("subtitle text of wrong type", func(t *testing.T) {
		_, err := ParseEndpointResponse(browseWith(map[string]any{
			"title":    runs("ok"),
			"subtitle": map[string]any{"runs": []any{map[string]any{"text": 3.0}}},
		}))
		assert.ErrorIs(t, err, chain.ErrRunText)
		assert.NotErrorIs(t, err, ErrUnexpectedResponse)
	})
}

func TestParseEndpointSubtitleWithoutText(t *testing.T) {
	records, err := ParseEndpointResponse(browseWith(map[string]any{
		"title":    runs("ok"),
		"subtitle": map[string]any{"runs": []any{map[string]any{"bold": true}}},
	}))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ok", records[0].Title)
}

func TestParsePlaylistResponseFixture(t *testing.T) {
	tracks, err := ParsePlaylistResponse(loadFixture(t, "next_response.json"))
	require.NoError(t, err)

	assert.Equal(t, []TrackRecord{
		{Artist: "Alpha, Beta", Title: "First Song", Length: "3:42", VideoID: "vid_one"},
		{Artist: "Some Channel", Title: "Live Session", Length: "10:05", VideoID: "vid_three"},
	}, tracks)
}

func TestParsePlaylistArtist(t *testing.T) {
	tests := []struct {
		name   string
		byline []any
		want   string
	}{
		{
			name:   "single fragment without navigation",
			byline: []any{map[string]any{"text": "Various"}},
			want:   "Various",
		},
		{
			name: "two artists",
			byline: []any{
				artistRun("A", ArtistPageTypeValue),
				map[string]any{"text": " & "},
				artistRun("B", ArtistPageTypeValue),
			},
			want: "A, B",
		},
		{
			name: "non artist links fall back to the first fragment",
			byline: []any{
				artistRun("Uploader", "MUSIC_PAGE_TYPE_USER_CHANNEL"),
				map[string]any{"text": " - "},
				artistRun("Album", "MUSIC_PAGE_TYPE_ALBUM"),
			},
			want: "Uploader",
		},
		{
			name: "artist text is not normalized",
			byline: []any{
				artistRun("Ａｒｔｉｓｔ", ArtistPageTypeValue),
			},
			want: "Ａｒｔｉｓｔ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracks, err := ParsePlaylistResponse(nextWith(trackItem("Song", "v1", tt.byline...)))
			require.NoError(t, err)
			require.Len(t, tracks, 1)
			assert.Equal(t, tt.want, tracks[0].Artist)
		})
	}
}

func TestParsePlaylistSkipsIncompleteItems(t *testing.T) {
	byline := map[string]any{"text": "Someone"}
	tracks, err := ParsePlaylistResponse(nextWith(
		trackItem("One", "v1", byline),
		trackItem("Two", "", byline),
		trackItem("Three", "v3", byline),
	))
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "One", tracks[0].Title)
	assert.Equal(t, "Three", tracks[1].Title)
}

func TestParsePlaylistSkipsEmptyByline(t *testing.T) {
	tracks, err := ParsePlaylistResponse(nextWith(
		trackItem("No byline", "v1"),
		trackItem("With byline", "v2", map[string]any{"text": "X"}),
	))
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "v2", tracks[0].VideoID)
}

func TestParsePlaylistResponseErrors(t *testing.T) {
	t.Run("contents chain missing", func(t *testing.T) {
		_, err := ParsePlaylistResponse(map[string]any{"responseContext": map[string]any{}, "error": true})
		assert.ErrorIs(t, err, ErrUnexpectedResponse)
	})

	t.Run("title text of wrong type aborts", func(t *testing.T) {
		broken := trackItem("x", "v2", map[string]any{"text": "A"})
		broken["playlistPanelVideoRenderer"].(map[string]any)["title"] = map[string]any{
			"runs": []any{map[string]any{"text": true}},
		}
		_, err := ParsePlaylistResponse(nextWith(
			trackItem("ok", "v1", map[string]any{"text": "A"}),
			broken,
		))
		assert.ErrorIs(t, err, chain.ErrRunText)
	})
}

func TestParsePlaylistSkipsRunWithoutText(t *testing.T) {
	byline := map[string]any{"text": "A"}
	broken := trackItem("Two", "v2", byline)
	broken["playlistPanelVideoRenderer"].(map[string]any)["title"] = map[string]any{
		"runs": []any{map[string]any{"notText": "x"}},
	}
	noTextByline := trackItem("Four", "v4", map[string]any{"italics": true})

	tracks, err := ParsePlaylistResponse(nextWith(
		trackItem("One", "v1", byline),
		broken,
		trackItem("Three", "v3", byline),
		noTextByline,
	))
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "v1", tracks[0].VideoID)
	assert.Equal(t, "v3", tracks[1].VideoID)
}

func TestCatalogIsReadOnly(t *testing.T) {
	payloads := EndpointPayloads()
	require.Len(t, payloads, 2)
	assert.Equal(t, "listen_again", payloads[0].Name)
	assert.Equal(t, []string{"params", "videoId"}, payloads[0].ReturnKeys)
	assert.Equal(t, "common_cases", payloads[1].Name)
	assert.Equal(t, []string{"params", "playlistId"}, payloads[1].ReturnKeys)

	payloads[0].Chain[0] = "mutated"
	payloads[0].ReturnKeys[0] = "mutated"
	assert.Equal(t, "menu", EndpointPayloads()[0].Chain[0])
	assert.Equal(t, "params", EndpointPayloads()[0].ReturnKeys[0])

	contents := EndpointContents()
	contents.Chain[0] = "mutated"
	assert.Equal(t, []chain.Step{"contents", "content", "contents", "items"}, EndpointContents().Chain)
	assert.Equal(t, []chain.Step{"contents", 0, "content", "content", "contents"}, PlaylistContents().Chain)
	assert.Equal(t, "pageType", ArtistPageType().Chain[3])
}
