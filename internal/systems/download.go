package systems

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haryoiro/ytmgrab/internal/constants"
	"github.com/haryoiro/ytmgrab/internal/downloader"
	"github.com/haryoiro/ytmgrab/internal/logger"
	"github.com/haryoiro/ytmgrab/internal/report"
	"github.com/haryoiro/ytmgrab/internal/structures"
)

var (
	ErrUnavailable   = errors.New("playlist has no payload")
	ErrAlreadyQueued = errors.New("playlist already queued")
	ErrQueueFull     = errors.New("download queue is full")
	ErrNotWaiting    = errors.New("job is not waiting")
	ErrStopped       = errors.New("download system stopped")
)

// TrackSource is a playlist whose tracks can be listed.
type TrackSource interface {
	Title() string
	ID() string
	Available() bool
	Tracks(ctx context.Context) ([]structures.Track, error)
}

// PlaylistDownloader saves a list of tracks.
type PlaylistDownloader interface {
	DownloadPlaylist(ctx context.Context, title string, tracks []structures.Track, progress func(downloader.Progress)) (downloader.Result, error)
}

type job struct {
	state     structures.DownloadJob
	source    TrackSource
	cancelled bool
	done      chan struct{}
}

// DownloadSystem runs queued playlist downloads on a fixed set of workers.
type DownloadSystem struct {
	mu             sync.RWMutex
	config         *structures.Config
	downloader     PlaylistDownloader
	jobs           map[string]*job
	order          []string
	queue          chan *job
	stopChan       chan struct{}
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	started        bool
	stopped        bool
	statusCallback func(structures.DownloadJob)
}

// NewDownloadSystem creates a new download system
func NewDownloadSystem(cfg *structures.Config, dl PlaylistDownloader) *DownloadSystem {
	ctx, cancel := context.WithCancel(context.Background())
	return &DownloadSystem{
		config:     cfg,
		downloader: dl,
		jobs:       make(map[string]*job),
		queue:      make(chan *job, constants.DefaultQueueSize),
		stopChan:   make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SetStatusCallback is called with a copy of a job on every change.
func (ds *DownloadSystem) SetStatusCallback(callback func(structures.DownloadJob)) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.statusCallback = callback
}

// Workers is the pool size derived from the config.
func (ds *DownloadSystem) Workers() int {
	n := ds.config.MaxConcurrentDownloads
	if n < 1 {
		n = 1
	}
	if n > constants.MaxWorkerCount {
		n = constants.MaxWorkerCount
	}
	return n
}

// Start launches the workers.
func (ds *DownloadSystem) Start() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.started {
		return nil
	}
	ds.started = true

	for i := 0; i < ds.Workers(); i++ {
		ds.wg.Add(1)
		go ds.worker()
	}
	return nil
}

// Stop cancels running downloads and waits for the workers to exit.
func (ds *DownloadSystem) Stop() {
	ds.mu.Lock()
	if ds.stopped {
		ds.mu.Unlock()
		return
	}
	ds.stopped = true
	ds.mu.Unlock()

	ds.cancel()
	close(ds.stopChan)
	ds.wg.Wait()
}

// Queue adds a playlist and returns the job id. A playlist that is waiting
// or downloading is not queued twice.
func (ds *DownloadSystem) Queue(source TrackSource) (string, error) {
	if !source.Available() {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, source.Title())
	}

	ds.mu.Lock()
	if ds.stopped {
		ds.mu.Unlock()
		return "", ErrStopped
	}
	if id, ok := ds.activeLocked(source); ok {
		ds.mu.Unlock()
		return id, ErrAlreadyQueued
	}

	j := &job{
		state: structures.DownloadJob{
			ID:         uuid.NewString(),
			PlaylistID: source.ID(),
			Title:      source.Title(),
			Status:     structures.StatusWaiting,
			QueuedAt:   time.Now(),
		},
		source: source,
		done:   make(chan struct{}),
	}

	select {
	case ds.queue <- j:
	default:
		ds.mu.Unlock()
		return "", ErrQueueFull
	}
	ds.jobs[j.state.ID] = j
	ds.order = append(ds.order, j.state.ID)
	snapshot := j.state
	cb := ds.statusCallback
	ds.mu.Unlock()

	logger.Info("Queued %q (%s)", snapshot.Title, snapshot.ID)
	if cb != nil {
		cb(snapshot)
	}
	return snapshot.ID, nil
}

// Toggle queues source, or withdraws it when it is still waiting.
func (ds *DownloadSystem) Toggle(source TrackSource) (queued bool, err error) {
	ds.mu.RLock()
	id, active := ds.activeLocked(source)
	ds.mu.RUnlock()

	if active {
		if err := ds.Withdraw(id); err != nil {
			return true, err
		}
		return false, nil
	}
	if _, err := ds.Queue(source); err != nil {
		return false, err
	}
	return true, nil
}

// Requeue queues the playlist of a finished job again.
func (ds *DownloadSystem) Requeue(id string) (string, error) {
	ds.mu.RLock()
	j, ok := ds.jobs[id]
	var source TrackSource
	finished := false
	if ok {
		source, finished = j.source, j.state.Status.Finished()
	}
	ds.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("unknown job %s", id)
	}
	if !finished {
		return id, ErrAlreadyQueued
	}
	return ds.Queue(source)
}

// Withdraw drops a waiting job from the queue.
func (ds *DownloadSystem) Withdraw(id string) error {
	ds.mu.Lock()
	j, ok := ds.jobs[id]
	if !ok || j.state.Status != structures.StatusWaiting {
		ds.mu.Unlock()
		return ErrNotWaiting
	}
	j.cancelled = true
	delete(ds.jobs, id)
	for i, oid := range ds.order {
		if oid == id {
			ds.order = append(ds.order[:i], ds.order[i+1:]...)
			break
		}
	}
	close(j.done)
	ds.mu.Unlock()
	return nil
}

// IsQueued reports whether playlistID is waiting or downloading.
func (ds *DownloadSystem) IsQueued(playlistID string) bool {
	if playlistID == "" {
		return false
	}
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	for _, id := range ds.order {
		j := ds.jobs[id]
		if j.state.PlaylistID == playlistID && !j.state.Status.Finished() {
			return true
		}
	}
	return false
}

// IsSourceQueued is IsQueued for sources that may lack an id.
func (ds *DownloadSystem) IsSourceQueued(source TrackSource) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	_, ok := ds.activeLocked(source)
	return ok
}

// activeLocked finds the unfinished job of source. Sources with an id match
// by id; the rest only match themselves.
func (ds *DownloadSystem) activeLocked(source TrackSource) (string, bool) {
	playlistID := source.ID()
	for _, id := range ds.order {
		j := ds.jobs[id]
		if j.state.Status.Finished() {
			continue
		}
		if playlistID != "" && j.state.PlaylistID == playlistID {
			return id, true
		}
		if playlistID == "" && j.source == source {
			return id, true
		}
	}
	return "", false
}

// Jobs returns every job in queue order.
func (ds *DownloadSystem) Jobs() []structures.DownloadJob {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	out := make([]structures.DownloadJob, 0, len(ds.order))
	for _, id := range ds.order {
		out = append(out, ds.jobs[id].state)
	}
	return out
}

// Job returns one job by id.
func (ds *DownloadSystem) Job(id string) (structures.DownloadJob, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	j, ok := ds.jobs[id]
	if !ok {
		return structures.DownloadJob{}, false
	}
	return j.state, true
}

// Wait blocks until the job finishes or ctx is done.
func (ds *DownloadSystem) Wait(ctx context.Context, id string) (structures.DownloadJob, error) {
	ds.mu.RLock()
	j, ok := ds.jobs[id]
	ds.mu.RUnlock()
	if !ok {
		return structures.DownloadJob{}, fmt.Errorf("unknown job %s", id)
	}

	select {
	case <-j.done:
		ds.mu.RLock()
		defer ds.mu.RUnlock()
		return j.state, nil
	case <-ctx.Done():
		return structures.DownloadJob{}, ctx.Err()
	}
}

func (ds *DownloadSystem) worker() {
	defer ds.wg.Done()
	for {
		select {
		case j := <-ds.queue:
			ds.process(j)
		case <-ds.stopChan:
			return
		}
	}
}

// update applies fn to the job under the lock and notifies the callback.
func (ds *DownloadSystem) update(j *job, fn func(*structures.DownloadJob)) {
	ds.mu.Lock()
	fn(&j.state)
	snapshot := j.state
	cb := ds.statusCallback
	ds.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

func (ds *DownloadSystem) process(j *job) {
	ds.mu.Lock()
	if j.cancelled {
		ds.mu.Unlock()
		return
	}
	j.state.Status = structures.StatusDownloading
	snapshot := j.state
	cb := ds.statusCallback
	ds.mu.Unlock()
	if cb != nil {
		cb(snapshot)
	}

	title, id := j.source.Title(), j.source.ID()
	ctx, span := report.StartJob(ds.ctx, title, id)
	defer span.Finish()

	err := ds.run(ctx, j)

	ds.update(j, func(s *structures.DownloadJob) {
		s.FinishedAt = time.Now()
		s.Current = ""
		if err != nil {
			s.Status = structures.StatusFailed
			s.Err = err
			return
		}
		s.Status = structures.StatusDone
	})
	close(j.done)

	if err != nil {
		logger.Error("Download of %q failed: %v", title, err)
		if !errors.Is(err, context.Canceled) {
			report.Capture(ctx, err, map[string]string{"stage": "playlist"})
		}
		return
	}
	logger.Info("Download of %q finished", title)
}

func (ds *DownloadSystem) run(ctx context.Context, j *job) error {
	tracks, err := j.source.Tracks(ctx)
	if err != nil {
		return fmt.Errorf("list tracks: %w", err)
	}
	report.Breadcrumb(ctx, "download", fmt.Sprintf("%d tracks", len(tracks)))
	ds.update(j, func(s *structures.DownloadJob) { s.Total = len(tracks) })

	result, err := ds.downloader.DownloadPlaylist(ctx, j.source.Title(), tracks, func(p downloader.Progress) {
		ds.update(j, func(s *structures.DownloadJob) {
			s.Current = p.Track.String()
			s.Percent = p.Percent
			if !p.Done {
				return
			}
			switch {
			case p.Err != nil:
				s.Failed++
			case p.Skipped:
				s.Skipped++
			default:
				s.Completed++
			}
		})
	})
	if err != nil {
		return err
	}

	for _, trackErr := range result.Errors {
		report.Capture(ctx, trackErr, map[string]string{"stage": "track"})
	}
	if len(tracks) > 0 && result.Failed == len(tracks) {
		return fmt.Errorf("all %d tracks failed: %w", result.Failed, errors.Join(result.Errors...))
	}
	return nil
}
