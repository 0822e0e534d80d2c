package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/haryoiro/ytmgrab/internal/config"
	"github.com/haryoiro/ytmgrab/internal/constants"
	"github.com/haryoiro/ytmgrab/internal/database"
	"github.com/haryoiro/ytmgrab/internal/downloader"
	"github.com/haryoiro/ytmgrab/internal/logger"
	"github.com/haryoiro/ytmgrab/internal/report"
	"github.com/haryoiro/ytmgrab/internal/structures"
	"github.com/haryoiro/ytmgrab/internal/systems"
	"github.com/haryoiro/ytmgrab/internal/ui"
	"github.com/haryoiro/ytmgrab/internal/version"
)

const banner = `
 _   _ _____ __  __  ____ ____      _    ____
| | | |_   _|  \/  |/ ___|  _ \    / \  | __ )
| |_| | | | | |\/| | |  _| |_) |  / _ \ |  _ \
 \__, | | | | |  | | |_| |  _ <  / ___ \| |_) |
 |___/  |_| |_|  |_|\____|_| \_\/_/   \_\____/
            YouTube Music playlist grabber`

func main() {
	os.Exit(run())
}

func run() int {
	var (
		showHelp     = flag.Bool("help", false, "Show help message")
		showFiles    = flag.Bool("files", false, "Show file locations")
		showVersion  = flag.Bool("version", false, "Show version")
		debugMode    = flag.Bool("debug", false, "Enable debug logging")
		clearArchive = flag.Bool("clear-archive", false, "Forget every downloaded track")
		authFile     = flag.String("auth", "", "Session file inside the auth dir to use")
		listOnly     = flag.Bool("list", false, "Print the playlists of every endpoint and exit")
		downloadID   = flag.String("download", "", "Download one playlist (or the radio of a video) without the UI")
	)

	flag.Parse()

	if *showHelp {
		printHelp()
		return 0
	}

	if *showVersion {
		fmt.Println(version.Info())
		return 0
	}

	configDir, dataDir := getDirectories()
	configPath := filepath.Join(configDir, "config.toml")
	dbPath := filepath.Join(dataDir, "ytmgrab.db")
	logFile := filepath.Join(dataDir, "ytmgrab.log")

	if *showFiles {
		fmt.Println("# ytmgrab file locations:")
		fmt.Printf("  Config:  %s\n", configPath)
		fmt.Printf("  Archive: %s\n", dbPath)
		fmt.Printf("  Logs:    %s\n", logFile)
		return 0
	}

	if *clearArchive {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Failed to remove archive: %v\n", err)
			return 1
		}
		fmt.Println("Archive cleared")
		return 0
	}

	cfg, err := config.Load(configPath)
	switch {
	case os.IsNotExist(err):
		cfg = config.Default()
		if saveErr := config.Save(cfg, configPath); saveErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save default config: %v\n", saveErr)
		}
	case err != nil:
		fmt.Fprintf(os.Stderr, "Warning: %s is invalid, using defaults: %v\n", configPath, err)
		cfg = config.Default()
	}
	config.ApplyEnv(cfg, ".env", filepath.Join(configDir, ".env"))
	if *authFile != "" {
		cfg.AuthFile = *authFile
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if *debugMode {
		level = logger.DEBUG
	}
	if err := logger.InitLogger(logFile, level, *debugMode); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer logger.CloseLogger()
	logger.Info("%s starting", version.String())

	if err := report.Init(report.Options{DSN: cfg.SentryDSN, Release: version.Release()}); err != nil {
		logger.Warn("Error reporting disabled: %v", err)
	}
	defer report.Flush(constants.SentryFlushDeadline)
	defer report.Recover()

	if err := checkYtDlp(); err != nil {
		fmt.Println(banner)
		fmt.Println("\nyt-dlp is not installed!")
		fmt.Println("\nyt-dlp is required to download music from YouTube.")
		fmt.Println("  macOS:    brew install yt-dlp")
		fmt.Println("  Linux:    sudo apt install yt-dlp  # or use pip")
		fmt.Println("  Windows:  winget install yt-dlp")
		fmt.Println("\nFor more information, visit: https://github.com/yt-dlp/yt-dlp")
		return 1
	}

	for _, dir := range []string{cfg.AuthDir, cfg.DownloadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Warn("Failed to create %s: %v", dir, err)
		}
	}

	var db database.DB
	if sqlite, err := database.OpenSQLite(dbPath); err != nil {
		logger.Warn("Failed to open archive, keeping it in memory: %v", err)
		db = database.NewMemory()
	} else {
		db = sqlite
	}
	defer func() {
		logger.Debug("Closing database connection")
		db.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appSystems := systems.New(cfg, db, downloader.YtDlp{})
	if err := appSystems.Start(); err != nil {
		logger.Error("Failed to start systems: %v", err)
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer func() {
		logger.Debug("Stopping all application systems...")
		appSystems.Stop()
	}()

	switch {
	case *listOnly:
		if err := listEndpoints(ctx, appSystems); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case *downloadID != "":
		if err := downloadHeadless(ctx, appSystems, *downloadID); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	if err := ui.Run(ctx, appSystems, cfg); err != nil {
		logger.Error("Application error: %v", err)
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		return 1
	}
	logger.Info("ytmgrab shutdown complete")
	return 0
}

func printHelp() {
	fmt.Println(banner)
	fmt.Println("\nUsage: ytmgrab [OPTIONS]")
	fmt.Println("\nOptions:")
	flag.PrintDefaults()
	fmt.Println("\nSessions:")
	fmt.Println("  Put one file per account in the auth dir. Each holds the request headers")
	fmt.Println("  of a logged in music.youtube.com browse request, copied as raw headers,")
	fmt.Println("  as cURL (bash) or as cURL (cmd).")
	fmt.Println("\nKeyboard shortcuts:")
	fmt.Println("    Tab / Shift+Tab - Switch between Settings, Explore and Download")
	fmt.Println("    ↑ or k          - Move selection up")
	fmt.Println("    ↓ or j          - Move selection down")
	fmt.Println("    Enter or l      - Open endpoint / select session")
	fmt.Println("    Space           - Queue or unqueue a playlist")
	fmt.Println("    Esc or h        - Close endpoint")
	fmt.Println("    d               - Retry a finished download")
	fmt.Println("    q or Ctrl+D     - Quit")
}

func requireSession(sys *systems.Systems) error {
	if sys.API.Ready() {
		return nil
	}
	if len(sys.API.AuthFiles()) == 0 {
		return fmt.Errorf("no session files in %s", sys.Config.AuthDir)
	}
	return fmt.Errorf("several sessions available, pick one with -auth (%s)",
		strings.Join(sys.API.AuthFiles(), ", "))
}

func listEndpoints(ctx context.Context, sys *systems.Systems) error {
	if err := requireSession(sys); err != nil {
		return err
	}
	for _, ep := range sys.API.Endpoints() {
		fmt.Println(ep.Title())
		playlists, err := ep.Playlists(ctx)
		if err != nil {
			fmt.Printf("  (failed: %v)\n", err)
			continue
		}
		for _, p := range playlists {
			if !p.Available() {
				fmt.Printf("  %s (unavailable)\n", p.Title())
				continue
			}
			fmt.Printf("  %-40s %s\n", p.ID(), p.Title())
		}
	}
	return nil
}

func downloadHeadless(ctx context.Context, sys *systems.Systems, id string) error {
	if err := requireSession(sys); err != nil {
		return err
	}

	playlist, err := sys.API.FindPlaylist(ctx, id)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]"+playlist.Title()+"[reset]"),
	)
	sys.Download.SetStatusCallback(func(job structures.DownloadJob) {
		if job.PlaylistID != playlist.ID() || job.Total == 0 {
			return
		}
		if bar.GetMax() != job.Total {
			bar.ChangeMax(job.Total)
		}
		if job.Current != "" {
			bar.Describe(fmt.Sprintf("[cyan]%s[reset] %s", playlist.Title(), job.Current))
		}
		_ = bar.Set(job.Completed + job.Skipped + job.Failed)
	})

	jobID, err := sys.Download.Queue(playlist)
	if err != nil {
		return err
	}
	job, err := sys.Download.Wait(ctx, jobID)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d downloaded, %d skipped, %d failed\n",
		job.Title, job.Completed, job.Skipped, job.Failed)
	fmt.Printf("Saved to %s\n", sys.Downloader.PlaylistDir(playlist.Title()))
	if job.Status == structures.StatusFailed {
		if job.Err != nil {
			return job.Err
		}
		return errors.New("download failed")
	}
	return nil
}

func getDirectories() (config, data string) {
	// Use XDG Base Directory specification
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		config = filepath.Join(xdgConfig, "ytmgrab")
	} else if home, err := os.UserHomeDir(); err == nil {
		config = filepath.Join(home, ".config", "ytmgrab")
	}

	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		data = filepath.Join(xdgData, "ytmgrab")
	} else if home, err := os.UserHomeDir(); err == nil {
		data = filepath.Join(home, ".local", "share", "ytmgrab")
	}

	os.MkdirAll(config, 0755)
	os.MkdirAll(data, 0755)

	return
}

func checkYtDlp() error {
	path, err := exec.LookPath("yt-dlp")
	if err != nil {
		return fmt.Errorf("yt-dlp not found in PATH")
	}

	output, err := exec.Command(path, "--version").Output()
	if err != nil {
		return fmt.Errorf("failed to run yt-dlp: %w", err)
	}

	logger.Info("Found yt-dlp version: %s", strings.TrimSpace(string(output)))
	logger.Debug("yt-dlp path: %s", path)
	return nil
}
