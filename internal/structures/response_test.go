package structures

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haryoiro/ytmgrab/internal/api"
	"github.com/haryoiro/ytmgrab/internal/parser"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Send(ctx context.Context, payload map[string]any, target api.Target) (any, error) {
	args := m.Called(ctx, payload, target)
	return args.Get(0), args.Error(1)
}

func browseResponse() map[string]any {
	item := func(title, key, id string) map[string]any {
		endpoint := "watchPlaylistEndpoint"
		if key == "videoId" {
			endpoint = "watchEndpoint"
		}
		return map[string]any{
			"musicTwoRowItemRenderer": map[string]any{
				"title": map[string]any{"runs": []any{map[string]any{"text": title}}},
				"menu": map[string]any{
					"items": []any{
						map[string]any{"navigationEndpoint": map[string]any{endpoint: map[string]any{key: id, "params": "p"}}},
						map[string]any{"text": "other"},
					},
				},
			},
		}
	}
	return map[string]any{
		"contents": map[string]any{
			"content": map[string]any{
				"contents": map[string]any{
					"items": []any{
						item("Mix", "playlistId", "PL1"),
						item("Radio", "videoId", "VID1"),
					},
				},
			},
		},
	}
}

func nextResponse() map[string]any {
	track := func(title, id string) map[string]any {
		return map[string]any{
			"playlistPanelVideoRenderer": map[string]any{
				"title":          map[string]any{"runs": []any{map[string]any{"text": title}}},
				"lengthText":     map[string]any{"runs": []any{map[string]any{"text": "3:00"}}},
				"longBylineText": map[string]any{"runs": []any{map[string]any{"text": "Artist"}}},
				"videoId":        id,
			},
		}
	}
	return map[string]any{
		"contents": []any{
			map[string]any{"content": map[string]any{"content": map[string]any{"contents": []any{
				track("One", "v1"),
				track("Two", "v2"),
			}}}},
			map[string]any{"lyrics": true},
		},
	}
}

func TestNewEndpointRequiresBrowseID(t *testing.T) {
	f := &mockFetcher{}

	_, err := NewEndpoint("Library", map[string]any{}, f)

	var payloadErr *PayloadError
	require.True(t, errors.As(err, &payloadErr))
	assert.Equal(t, "Library", payloadErr.Title)
	f.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestEndpointPlaylistsCached(t *testing.T) {
	f := &mockFetcher{}
	payload := map[string]any{BrowseIDKey: "FEmusic_library_landing"}
	f.On("Send", mock.Anything, payload, api.TargetBrowse).Return(browseResponse(), nil).Once()

	e, err := NewEndpoint("Library", payload, f)
	require.NoError(t, err)
	assert.False(t, e.Fetched())

	first, err := e.Playlists(context.Background())
	require.NoError(t, err)
	second, err := e.Playlists(context.Background())
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Same(t, &first[0], &second[0])
	assert.Same(t, first[0], second[0])
	assert.True(t, e.Fetched())
	f.AssertNumberOfCalls(t, "Send", 1)

	assert.Equal(t, "Mix", first[0].Title())
	assert.Equal(t, "PL1", first[0].ID())
	assert.Equal(t, "VID1", first[1].ID())
	assert.True(t, first[1].Available())
}

func TestEndpointFailedFetchNotCached(t *testing.T) {
	f := &mockFetcher{}
	payload := map[string]any{BrowseIDKey: "X"}
	f.On("Send", mock.Anything, payload, api.TargetBrowse).Return(nil, api.ErrUnauthorized).Once()
	f.On("Send", mock.Anything, payload, api.TargetBrowse).Return(browseResponse(), nil).Once()

	e, err := NewEndpoint("X", payload, f)
	require.NoError(t, err)

	_, err = e.Playlists(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.False(t, e.Fetched())

	playlists, err := e.Playlists(context.Background())
	require.NoError(t, err)
	assert.Len(t, playlists, 2)
	f.AssertNumberOfCalls(t, "Send", 2)
}

func TestEndpointShapeMismatch(t *testing.T) {
	f := &mockFetcher{}
	f.On("Send", mock.Anything, mock.Anything, api.TargetBrowse).Return(map[string]any{"a": 1, "b": 2}, nil)

	e, err := NewEndpoint("X", map[string]any{BrowseIDKey: "X"}, f)
	require.NoError(t, err)

	_, err = e.Playlists(context.Background())
	assert.ErrorIs(t, err, parser.ErrUnexpectedResponse)
}

func TestEndpointConcurrentCallersFetchOnce(t *testing.T) {
	f := &mockFetcher{}
	f.On("Send", mock.Anything, mock.Anything, api.TargetBrowse).Return(browseResponse(), nil)

	e, err := NewEndpoint("X", map[string]any{BrowseIDKey: "X"}, f)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.Playlists(context.Background())
		}()
	}
	wg.Wait()

	f.AssertNumberOfCalls(t, "Send", 1)
}

// gateFetcher holds every Send until release is closed.
type gateFetcher struct {
	started chan struct{}
	release chan struct{}
	resp    any
}

func (g *gateFetcher) Send(ctx context.Context, payload map[string]any, target api.Target) (any, error) {
	close(g.started)
	<-g.release
	return g.resp, nil
}

func TestEndpointFetchedDoesNotWaitForFetch(t *testing.T) {
	g := &gateFetcher{
		started: make(chan struct{}),
		release: make(chan struct{}),
		resp:    browseResponse(),
	}
	e, err := NewEndpoint("X", map[string]any{BrowseIDKey: "X"}, g)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := e.Playlists(context.Background())
		done <- err
	}()
	<-g.started

	answered := make(chan bool, 1)
	go func() { answered <- e.Fetched() }()
	select {
	case fetched := <-answered:
		assert.False(t, fetched)
	case <-time.After(time.Second):
		t.Fatal("Fetched blocked while a fetch was in flight")
	}

	close(g.release)
	require.NoError(t, <-done)
	assert.True(t, e.Fetched())
}

func TestEndpointPayloadIsCopied(t *testing.T) {
	payload := map[string]any{BrowseIDKey: "X"}
	e, err := NewEndpoint("X", payload, &mockFetcher{})
	require.NoError(t, err)

	payload[BrowseIDKey] = "changed"
	assert.Equal(t, "X", e.Payload()[BrowseIDKey])

	out := e.Payload()
	out[BrowseIDKey] = "changed"
	assert.Equal(t, "X", e.Payload()[BrowseIDKey])
}

func TestPlaylistTracksCached(t *testing.T) {
	f := &mockFetcher{}
	payload := map[string]any{"playlistId": "PL1", "params": "p"}
	f.On("Send", mock.Anything, payload, api.TargetNext).Return(nextResponse(), nil).Once()

	p := NewPlaylist("Mix", payload, f)
	first, err := p.Tracks(context.Background())
	require.NoError(t, err)
	second, err := p.Tracks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []Track{
		{Artist: "Artist", Title: "One", Length: "3:00", VideoID: "v1"},
		{Artist: "Artist", Title: "Two", Length: "3:00", VideoID: "v2"},
	}, first)
	assert.Same(t, &first[0], &second[0])
	assert.True(t, p.Fetched())
	f.AssertNumberOfCalls(t, "Send", 1)
}

func TestPlaylistWithoutPayload(t *testing.T) {
	f := &mockFetcher{}
	p := NewPlaylist("Liked Music", nil, f)

	assert.False(t, p.Available())
	assert.Equal(t, "", p.ID())

	_, err := p.Tracks(context.Background())
	var payloadErr *PayloadError
	assert.ErrorAs(t, err, &payloadErr)
	f.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestTrackURL(t *testing.T) {
	tr := Track{Artist: "A", Title: "T", VideoID: "dQw4w9WgXcQ"}
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", tr.URL())
	assert.Equal(t, "A - T", tr.String())
}

func TestDownloadStatus(t *testing.T) {
	assert.Equal(t, "wait", StatusWaiting.String())
	assert.Equal(t, "download", StatusDownloading.String())
	assert.Equal(t, "done", StatusDone.String())
	assert.True(t, StatusFailed.Finished())
	assert.False(t, StatusDownloading.Finished())
}

func TestEndpointConfigPayload(t *testing.T) {
	assert.Equal(t, map[string]any{BrowseIDKey: "FEmusic_home"}, EndpointConfig{BrowseID: "FEmusic_home"}.Payload())
	assert.Empty(t, EndpointConfig{Title: "x"}.Payload())
}
