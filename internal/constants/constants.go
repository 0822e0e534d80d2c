package constants

import "time"

// Queue and worker pool sizes
const (
	DefaultQueueSize   = 256
	DefaultWorkerCount = 2
	MaxWorkerCount     = 8
)

// Timing constants
const (
	ProgressInterval    = 250 * time.Millisecond
	StatusTickInterval  = 200 * time.Millisecond
	DownloadRetryDelay  = 2 * time.Second
	SentryFlushDeadline = 2 * time.Second
)

// UI constants
const (
	DefaultMaxWidth = 100
	MinVisibleItems = 3
	ScrollPadding   = 2
)

// Audio quality levels
const (
	AudioQualityBest   = "best"
	AudioQualityHigh   = "high"
	AudioQualityMedium = "medium"
	AudioQualityLow    = "low"
)

// yt-dlp quality mapping
var AudioQualityMap = map[string]string{
	AudioQualityBest:   "0", // Best available quality
	AudioQualityHigh:   "2", // High quality (~192 kbps)
	AudioQualityMedium: "5", // Medium quality (~128 kbps)
	AudioQualityLow:    "9", // Low quality (~64-96 kbps)
}

// App state keys
const (
	StateAuthFile    = "auth_file"
	StateDownloadDir = "download_dir"
)
