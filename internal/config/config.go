package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/haryoiro/ytmgrab/internal/structures"
)

// Environment overrides applied by ApplyEnv.
const (
	EnvDownloadDir = "YTMGRAB_DOWNLOAD_DIR"
	EnvAuthDir     = "YTMGRAB_AUTH_DIR"
	EnvAuthFile    = "YTMGRAB_AUTH_FILE"
	EnvSentryDSN   = "YTMGRAB_SENTRY_DSN"
	EnvWorkers     = "YTMGRAB_MAX_CONCURRENT_DOWNLOADS"
)

// Load loads the configuration from a TOML file
func Load(path string) (*structures.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a TOML file
func Save(cfg *structures.Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv loads .env files if present and lets the environment override the
// file based settings.
func ApplyEnv(cfg *structures.Config, envFiles ...string) {
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		// Load never overrides variables already set in the process.
		_ = godotenv.Load(existing...)
	}

	if v := os.Getenv(EnvDownloadDir); v != "" {
		cfg.DownloadDir = v
	}
	if v := os.Getenv(EnvAuthDir); v != "" {
		cfg.AuthDir = v
	}
	if v := os.Getenv(EnvAuthFile); v != "" {
		cfg.AuthFile = v
	}
	if v := os.Getenv(EnvSentryDSN); v != "" {
		cfg.SentryDSN = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConcurrentDownloads = n
		}
	}
}

// DefaultEndpoints are the catalog sections shown when none are configured.
func DefaultEndpoints() []structures.EndpointConfig {
	return []structures.EndpointConfig{
		{Title: "New releases albums", BrowseID: "FEmusic_new_releases_albums"},
		{Title: "Mixed for you", BrowseID: "FEmusic_mixed_for_you"},
		{Title: "Listen again", BrowseID: "FEmusic_listen_again"},
		{Title: "Library", BrowseID: "FEmusic_library_landing"},
	}
}

// Default returns the default configuration
func Default() *structures.Config {
	return &structures.Config{
		AuthDir:                filepath.Join("files", "auth"),
		DownloadDir:            filepath.Join("files", "music"),
		MaxConcurrentDownloads: 2,
		AudioFormat:            "mp3",
		AudioQuality:           "best",
		DownloadRetries:        35,
		ArchiveEnabled:         true,
		RequestTimeoutSeconds:  10,
		RequestRetries:         5,
		RetryDelayMs:           1000,
		LogLevel:               "info",
		Endpoints:              DefaultEndpoints(),
		Theme: structures.Theme{
			Foreground: "#c0caf5", // Tokyo Night foreground
			Selected:   "#7aa2f7", // Tokyo Night blue
			Queued:     "#e0af68", // Tokyo Night yellow
			Border:     "#3b4261", // Tokyo Night border
			Done:       "#9ece6a", // Tokyo Night green
			Failed:     "#f7768e", // Tokyo Night red
			Muted:      "#565f89", // Tokyo Night dark gray
		},
		KeyBindings: structures.KeyBindings{
			Quit:     []string{"ctrl+d", "ctrl+c", "q"},
			MoveUp:   []string{"up", "k"},
			MoveDown: []string{"down", "j"},
			Expand:   []string{"enter", "l", "right"},
			Toggle:   []string{"space"},
			Back:     []string{"esc", "backspace", "h", "left"},
			NextTab:  "tab",
			PrevTab:  "shift+tab",
			Start:    "d",
		},
	}
}
