package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledWithoutDSN(t *testing.T) {
	require.NoError(t, Init(Options{}))
	assert.False(t, Enabled())

	// Must not panic or block.
	Capture(context.Background(), errors.New("ignored"), nil)
	Breadcrumb(context.Background(), "test", "ignored")
	Flush(time.Millisecond)
}

func TestInitRejectsBadDSN(t *testing.T) {
	err := Init(Options{DSN: "::not a dsn"})
	assert.Error(t, err)
	assert.False(t, Enabled())
}

func TestCaptureTagsJob(t *testing.T) {
	var mu sync.Mutex
	var events []*sentry.Event

	err := Init(Options{
		DSN:     "https://public@example.com/1",
		Release: "ytmgrab@test",
		BeforeSend: func(event *sentry.Event) *sentry.Event {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
			return nil
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { Init(Options{}) })
	require.True(t, Enabled())

	ctx, span := StartJob(context.Background(), "Mixed for you", "RDCLAK5uy")
	Breadcrumb(ctx, "download", "started")
	Capture(ctx, errors.New("yt-dlp exited 1"), map[string]string{"video_id": "abc"})
	span.Finish()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, "abc", events[0].Tags["video_id"])
	assert.Equal(t, "RDCLAK5uy", events[0].Tags["playlist_id"])
	assert.Equal(t, "ytmgrab@test", events[0].Release)
}

func TestRecoverRepanics(t *testing.T) {
	require.NoError(t, Init(Options{}))
	assert.PanicsWithValue(t, "boom", func() {
		defer Recover()
		panic("boom")
	})
}
