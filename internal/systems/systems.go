package systems

import (
	"errors"
	"os"

	"github.com/haryoiro/ytmgrab/internal/constants"
	"github.com/haryoiro/ytmgrab/internal/database"
	"github.com/haryoiro/ytmgrab/internal/downloader"
	"github.com/haryoiro/ytmgrab/internal/logger"
	"github.com/haryoiro/ytmgrab/internal/structures"
)

// Systems contains all the core systems of the application
type Systems struct {
	Config     *structures.Config
	Database   database.DB
	Downloader *downloader.Downloader
	Download   *DownloadSystem
	API        *APISystem
}

// ErrNotDir is returned for a download dir that is not a directory.
var ErrNotDir = errors.New("Value is not dir.")

// New creates a new Systems instance
func New(cfg *structures.Config, db database.DB, engine downloader.Engine) *Systems {
	s := &Systems{
		Config:   cfg,
		Database: db,
	}

	var archive database.DB
	if cfg.ArchiveEnabled {
		archive = db
	}
	s.Downloader = downloader.New(engine, archive, downloader.Settings{
		Dir:          cfg.DownloadDir,
		AudioFormat:  cfg.AudioFormat,
		AudioQuality: cfg.AudioQuality,
		Retries:      cfg.DownloadRetries,
	})

	s.Download = NewDownloadSystem(cfg, s.Downloader)
	s.API = NewAPISystem(cfg)

	return s
}

// Start loads the sessions, restores the last selected one and starts the
// download workers.
func (s *Systems) Start() error {
	names, err := s.API.LoadAuthDir()
	if err != nil {
		logger.Warn("Auth dir unavailable: %v", err)
	}

	if name := s.preferredAuth(names); name != "" {
		if err := s.SelectAuth(name); err != nil {
			logger.Warn("Could not restore session %s: %v", name, err)
		}
	}

	if dir, ok := s.Database.GetAppState(constants.StateDownloadDir); ok {
		if err := s.SetDownloadDir(dir); err != nil {
			logger.Warn("Ignoring saved download dir %s: %v", dir, err)
		}
	}

	return s.Download.Start()
}

// SetDownloadDir validates dir and makes it the download root.
func (s *Systems) SetDownloadDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ErrNotDir
	}

	s.Config.DownloadDir = dir
	s.Downloader.SetDir(dir)
	if err := s.Database.SaveAppState(constants.StateDownloadDir, dir); err != nil {
		logger.Warn("Failed to save download dir: %v", err)
	}
	return nil
}

// Stop stops all systems
func (s *Systems) Stop() error {
	s.Download.Stop()
	return nil
}

// SelectAuth activates a session and remembers it for the next run.
func (s *Systems) SelectAuth(name string) error {
	if err := s.API.Select(name); err != nil {
		return err
	}
	if err := s.Database.SaveAppState(constants.StateAuthFile, name); err != nil {
		logger.Warn("Failed to save selected session: %v", err)
	}
	return nil
}

// preferredAuth picks the config's auth_file, then the last used one, then
// the only one available.
func (s *Systems) preferredAuth(names []string) string {
	has := func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}

	if s.Config.AuthFile != "" && has(s.Config.AuthFile) {
		return s.Config.AuthFile
	}
	if last, ok := s.Database.GetAppState(constants.StateAuthFile); ok && has(last) {
		return last
	}
	if len(names) == 1 {
		return names[0]
	}
	return ""
}
