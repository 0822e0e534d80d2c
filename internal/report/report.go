// Package report forwards failures to Sentry. Every call is a no-op until
// Init succeeds with a non-empty DSN.
package report

import (
	"context"
	"sync/atomic"
	"time"

	sentry "github.com/getsentry/sentry-go"
)

var enabled atomic.Bool

// Options configure the Sentry client.
type Options struct {
	DSN         string
	Release     string
	Environment string
	// BeforeSend may inspect or drop events.
	BeforeSend func(*sentry.Event) *sentry.Event
}

// Init sets up the global client. An empty DSN leaves reporting disabled.
func Init(opts Options) error {
	if opts.DSN == "" {
		enabled.Store(false)
		return nil
	}

	clientOpts := sentry.ClientOptions{
		Dsn:              opts.DSN,
		Release:          opts.Release,
		Environment:      opts.Environment,
		AttachStacktrace: true,
		TracesSampleRate: 1.0,
	}
	if opts.BeforeSend != nil {
		clientOpts.BeforeSend = func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return opts.BeforeSend(event)
		}
	}

	if err := sentry.Init(clientOpts); err != nil {
		return err
	}
	enabled.Store(true)
	return nil
}

// Enabled reports whether events are being sent.
func Enabled() bool {
	return enabled.Load()
}

// StartJob clones the hub for one download job so its tags and breadcrumbs
// stay isolated. The returned span must be finished by the caller.
func StartJob(ctx context.Context, name, playlistID string) (context.Context, *sentry.Span) {
	hub := sentry.CurrentHub().Clone()
	ctx = sentry.SetHubOnContext(ctx, hub)

	span := sentry.StartTransaction(ctx, "download."+name,
		sentry.WithOpName("download.playlist"),
		sentry.WithTransactionSource(sentry.SourceTask),
	)
	span.SetTag("playlist_id", playlistID)
	hub.Scope().SetTag("playlist_id", playlistID)
	hub.Scope().SetSpan(span)

	return span.Context(), span
}

func hubFromContext(ctx context.Context) *sentry.Hub {
	if ctx != nil {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			return hub
		}
	}
	return sentry.CurrentHub()
}

// Breadcrumb records a step on the hub in ctx.
func Breadcrumb(ctx context.Context, category, message string) {
	if !Enabled() {
		return
	}
	hubFromContext(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}, nil)
}

// Capture sends err with the given tags.
func Capture(ctx context.Context, err error, tags map[string]string) {
	if err == nil || !Enabled() {
		return
	}
	hubFromContext(ctx).WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hubFromContext(ctx).CaptureException(err)
	})
}

// Flush waits for queued events up to timeout.
func Flush(timeout time.Duration) {
	if Enabled() {
		sentry.Flush(timeout)
	}
}

// Recover reports a panic and re-raises it. Use with defer.
func Recover() {
	if r := recover(); r != nil {
		if Enabled() {
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
		}
		panic(r)
	}
}
