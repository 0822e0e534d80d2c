// Package downloader saves the tracks of a playlist as audio files and keeps
// the download archive up to date.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep/mp3"

	"github.com/haryoiro/ytmgrab/internal/database"
	"github.com/haryoiro/ytmgrab/internal/logger"
	"github.com/haryoiro/ytmgrab/internal/structures"
)

var log = logger.WithComponent("downloader")

// Settings are the knobs taken from the config file.
type Settings struct {
	Dir          string
	AudioFormat  string
	AudioQuality string
	Retries      int
}

// Progress is reported before, during and after each track.
type Progress struct {
	Index   int
	Total   int
	Track   structures.Track
	Percent float64
	Skipped bool
	Done    bool
	Err     error
}

// Result summarizes one playlist run.
type Result struct {
	Downloaded int
	Skipped    int
	Failed     int
	Errors     []error
}

// Downloader writes tracks to <dir>/<playlist>/<artist> - <title>.<ext>.
type Downloader struct {
	mu       sync.RWMutex
	engine   Engine
	archive  database.DB
	settings Settings
	probe    func(path string) (time.Duration, error)
}

// New creates a Downloader. archive may be nil to always download.
func New(engine Engine, archive database.DB, settings Settings) *Downloader {
	if settings.AudioFormat == "" {
		settings.AudioFormat = "mp3"
	}
	return &Downloader{
		engine:   engine,
		archive:  archive,
		settings: settings,
		probe:    probeMP3,
	}
}

// SetDir changes the download root for jobs started afterwards.
func (d *Downloader) SetDir(dir string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settings.Dir = dir
}

// Dir returns the download root.
func (d *Downloader) Dir() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings.Dir
}

// PlaylistDir is the folder a playlist's tracks are written to.
func (d *Downloader) PlaylistDir(playlist string) string {
	return filepath.Join(d.Dir(), SanitizeName(playlist))
}

// TrackPath is the final audio file for a track.
func (d *Downloader) TrackPath(playlist string, track structures.Track) string {
	return filepath.Join(d.PlaylistDir(playlist), trackBase(track)+"."+d.settings.AudioFormat)
}

// DownloadPlaylist fetches every track not already archived. A failing track
// does not stop the rest; cancellation does.
func (d *Downloader) DownloadPlaylist(ctx context.Context, playlist string, tracks []structures.Track, progress func(Progress)) (Result, error) {
	var result Result
	if progress == nil {
		progress = func(Progress) {}
	}

	dir := d.PlaylistDir(playlist)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return result, fmt.Errorf("create %s: %w", dir, err)
	}

	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		report := Progress{Index: i, Total: len(tracks), Track: track}
		path := d.TrackPath(playlist, track)

		if d.archived(track) {
			result.Skipped++
			report.Skipped, report.Done, report.Percent = true, true, 100
			progress(report)
			continue
		}

		progress(report)
		req := Request{
			URL:            track.URL(),
			OutputTemplate: filepath.Join(dir, escapeTemplate(trackBase(track))+".%(ext)s"),
			AudioFormat:    d.settings.AudioFormat,
			AudioQuality:   d.settings.AudioQuality,
			Retries:        d.settings.Retries,
		}
		err := d.engine.Download(ctx, req, func(p float64) {
			r := report
			r.Percent = p
			progress(r)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			log.WithField("video_id", track.VideoID).Warnf("download failed: %v", err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", track, err))
			report.Err, report.Done = err, true
			progress(report)
			continue
		}

		d.record(playlist, track, path)
		result.Downloaded++
		report.Done, report.Percent = true, 100
		progress(report)
	}

	return result, nil
}

// archived reports whether the track was fetched before and its file is
// still on disk. Files deleted since are fetched again.
func (d *Downloader) archived(track structures.Track) bool {
	if d.archive == nil {
		return false
	}
	entry, ok := d.archive.Get(track.VideoID)
	if !ok {
		return false
	}
	_, err := os.Stat(entry.FilePath)
	return err == nil
}

func (d *Downloader) record(playlist string, track structures.Track, path string) {
	var duration time.Duration
	if d.settings.AudioFormat == "mp3" {
		var err error
		if duration, err = d.probe(path); err != nil {
			log.WithField("path", path).Debugf("probe failed: %v", err)
		}
	}

	if d.archive == nil {
		return
	}
	err := d.archive.Add(structures.ArchiveEntry{
		Track:    track,
		Playlist: playlist,
		FilePath: path,
		Duration: duration,
	})
	if err != nil {
		log.WithField("video_id", track.VideoID).Errorf("archive: %v", err)
	}
}

// probeMP3 returns the play time of an mp3 file.
func probeMP3(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return 0, err
	}
	defer streamer.Close()

	if streamer.Len() <= 0 {
		return 0, errors.New("empty stream")
	}
	return format.SampleRate.D(streamer.Len()), nil
}

func trackBase(track structures.Track) string {
	if track.Artist == "" {
		return SanitizeName(track.Title)
	}
	return SanitizeName(track.Artist + " - " + track.Title)
}

// SanitizeName makes s safe to use as a single path element.
func SanitizeName(s string) string {
	replacer := strings.NewReplacer(
		"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_",
		`"`, "_", "<", "_", ">", "_", "|", "_", "\x00", "",
	)
	s = strings.Trim(strings.TrimSpace(replacer.Replace(s)), ".")
	if s == "" {
		return "untitled"
	}
	return s
}

// escapeTemplate keeps yt-dlp from expanding % in titles.
func escapeTemplate(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}
