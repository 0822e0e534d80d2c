package systems

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/haryoiro/ytmgrab/internal/api"
	"github.com/haryoiro/ytmgrab/internal/auth"
	"github.com/haryoiro/ytmgrab/internal/logger"
	"github.com/haryoiro/ytmgrab/internal/structures"
)

var (
	ErrNoAuth           = errors.New("no session selected")
	ErrUnknownAuth      = errors.New("unknown auth file")
	ErrPlaylistNotFound = errors.New("playlist not found")
)

// videoIDPattern is the fixed form of a video id. Playlist ids are longer.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// FetcherFactory builds the transport for a selected session.
type FetcherFactory func(data auth.Data) (structures.Fetcher, error)

// APISystem holds the loaded sessions, the active transport and the
// endpoints built on top of it.
type APISystem struct {
	mu         sync.RWMutex
	config     *structures.Config
	newFetcher FetcherFactory
	authFiles  map[string]auth.Data
	selected   string
	fetcher    structures.Fetcher
	endpoints  []*structures.Endpoint
}

// NewAPISystem creates a new API system
func NewAPISystem(cfg *structures.Config) *APISystem {
	as := &APISystem{
		config:    cfg,
		authFiles: make(map[string]auth.Data),
	}
	as.newFetcher = func(data auth.Data) (structures.Fetcher, error) {
		client, err := api.NewClient(data, api.Options{
			Timeout:    cfg.RequestTimeout(),
			Retries:    cfg.RequestRetries,
			RetryDelay: cfg.RetryDelay(),
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return as
}

// SetFetcherFactory replaces how transports are built.
func (as *APISystem) SetFetcherFactory(f FetcherFactory) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.newFetcher = f
}

// LoadAuthDir rescans the auth directory and returns the usable file names.
func (as *APISystem) LoadAuthDir() ([]string, error) {
	files, err := auth.LoadDir(as.config.AuthDir)
	if err != nil {
		return nil, fmt.Errorf("read auth dir: %w", err)
	}

	as.mu.Lock()
	as.authFiles = files
	as.mu.Unlock()

	names := auth.Names(files)
	logger.Info("Found %d auth file(s) in %s", len(names), as.config.AuthDir)
	return names, nil
}

// AddAuth registers a session that did not come from the auth directory.
func (as *APISystem) AddAuth(name string, data auth.Data) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.authFiles[name] = data
}

// AuthFiles returns the loaded session names, sorted.
func (as *APISystem) AuthFiles() []string {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return auth.Names(as.authFiles)
}

// Selected returns the active session name.
func (as *APISystem) Selected() string {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.selected
}

// Ready reports whether a session has been selected.
func (as *APISystem) Ready() bool {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.fetcher != nil
}

// Select activates a session and rebuilds the configured endpoints on it.
func (as *APISystem) Select(name string) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	data, ok := as.authFiles[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAuth, name)
	}

	fetcher, err := as.newFetcher(data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	var endpoints []*structures.Endpoint
	for _, ec := range as.config.Endpoints {
		ep, err := structures.NewEndpoint(ec.Title, ec.Payload(), fetcher)
		if err != nil {
			logger.Warn("Skipping endpoint %q: %v", ec.Title, err)
			continue
		}
		endpoints = append(endpoints, ep)
	}

	as.selected = name
	as.fetcher = fetcher
	as.endpoints = endpoints
	logger.Info("Using session %s with %d endpoint(s)", name, len(endpoints))
	return nil
}

// Endpoints returns the endpoints of the active session.
func (as *APISystem) Endpoints() []*structures.Endpoint {
	as.mu.RLock()
	defer as.mu.RUnlock()
	out := make([]*structures.Endpoint, len(as.endpoints))
	copy(out, as.endpoints)
	return out
}

// FindPlaylist looks id up in every endpoint. Endpoints that fail to load are
// skipped. When nothing matches, a bare playlist titled by its id is returned;
// a video id opens that video's radio.
func (as *APISystem) FindPlaylist(ctx context.Context, id string) (*structures.Playlist, error) {
	as.mu.RLock()
	fetcher, endpoints := as.fetcher, as.endpoints
	as.mu.RUnlock()

	if fetcher == nil {
		return nil, ErrNoAuth
	}
	if id == "" {
		return nil, ErrPlaylistNotFound
	}

	for _, ep := range endpoints {
		playlists, err := ep.Playlists(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Debug("Endpoint %q unavailable: %v", ep.Title(), err)
			continue
		}
		for _, p := range playlists {
			if p.ID() == id {
				return p, nil
			}
		}
	}

	return structures.NewPlaylist(id, fallbackPayload(id), fetcher), nil
}

func fallbackPayload(id string) map[string]any {
	if videoIDPattern.MatchString(id) {
		return map[string]any{"videoId": id}
	}
	return map[string]any{"playlistId": id}
}
