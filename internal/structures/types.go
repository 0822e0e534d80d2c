package structures

import (
	"time"
)

// DownloadStatus is the state of a queued playlist download.
type DownloadStatus int

const (
	StatusWaiting DownloadStatus = iota
	StatusDownloading
	StatusDone
	StatusFailed
)

func (s DownloadStatus) String() string {
	switch s {
	case StatusWaiting:
		return "wait"
	case StatusDownloading:
		return "download"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Finished reports whether the job will not change state again.
func (s DownloadStatus) Finished() bool {
	return s == StatusDone || s == StatusFailed
}

// DownloadJob is one playlist in the download queue.
type DownloadJob struct {
	ID         string
	PlaylistID string
	Title      string
	Status     DownloadStatus
	Total      int
	Completed  int
	Skipped    int
	Failed     int
	Current    string
	Percent    float64
	Err        error
	QueuedAt   time.Time
	FinishedAt time.Time
}

// ArchiveEntry records a track that has been downloaded.
type ArchiveEntry struct {
	Track        Track
	Playlist     string
	FilePath     string
	Duration     time.Duration
	DownloadedAt time.Time
}

// Config represents the application configuration
type Config struct {
	Theme       Theme       `toml:"theme"`
	KeyBindings KeyBindings `toml:"key_bindings"`

	// Session
	AuthDir  string `toml:"auth_dir"`
	AuthFile string `toml:"auth_file"` // file name inside auth_dir

	// Download Configuration
	DownloadDir            string `toml:"download_dir"`
	MaxConcurrentDownloads int    `toml:"max_concurrent_downloads"`
	AudioFormat            string `toml:"audio_format"`
	AudioQuality           string `toml:"audio_quality"` // low/medium/high/best
	DownloadRetries        int    `toml:"download_retries"`
	ArchiveEnabled         bool   `toml:"archive_enabled"`

	// Transport
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
	RequestRetries        int `toml:"request_retries"`
	RetryDelayMs          int `toml:"retry_delay_ms"`

	// Reporting
	SentryDSN string `toml:"sentry_dsn"`
	LogLevel  string `toml:"log_level"`

	// UI Configuration
	DisableAltScreen bool `toml:"disable_alt_screen"`

	Endpoints []EndpointConfig `toml:"endpoints"`
}

// RequestTimeout returns the transport timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// RetryDelay returns the pause between transport attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// EndpointConfig is a catalog section shown in the explorer.
type EndpointConfig struct {
	Title    string `toml:"title"`
	BrowseID string `toml:"browse_id"`
}

// Payload returns the browse payload for the endpoint.
func (e EndpointConfig) Payload() map[string]any {
	if e.BrowseID == "" {
		return map[string]any{}
	}
	return map[string]any{BrowseIDKey: e.BrowseID}
}

// Theme represents the UI theme configuration
type Theme struct {
	Foreground string `toml:"foreground"` // Default text color
	Selected   string `toml:"selected"`   // Cursor color
	Queued     string `toml:"queued"`     // Playlists marked for download
	Border     string `toml:"border"`
	Done       string `toml:"done"`
	Failed     string `toml:"failed"`
	Muted      string `toml:"muted"` // Unavailable items and help text
}

// KeyBindings represents configurable keyboard shortcuts
type KeyBindings struct {
	Quit     []string `toml:"quit"`
	MoveUp   []string `toml:"move_up"`
	MoveDown []string `toml:"move_down"`
	Expand   []string `toml:"expand"`
	Toggle   []string `toml:"toggle"`
	Back     []string `toml:"back"`
	NextTab  string   `toml:"next_tab"`
	PrevTab  string   `toml:"prev_tab"`
	Start    string   `toml:"start"`
}
