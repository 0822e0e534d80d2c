package database

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/haryoiro/ytmgrab/internal/structures"
)

// SQLiteDatabase is the persistent download archive.
type SQLiteDatabase struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates a SQLite database
func OpenSQLite(path string) (*SQLiteDatabase, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = 10000",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	sqliteDB := &SQLiteDatabase{
		db:   db,
		path: path,
	}

	if err := sqliteDB.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sqliteDB, nil
}

func (db *SQLiteDatabase) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS tracks (
			video_id TEXT PRIMARY KEY,
			artist TEXT NOT NULL,
			title TEXT NOT NULL,
			length TEXT NOT NULL DEFAULT '',
			playlist TEXT NOT NULL DEFAULT '',
			file_path TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			downloaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_playlist ON tracks(playlist)`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_downloaded_at ON tracks(downloaded_at)`,

		`CREATE TABLE IF NOT EXISTS app_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

func (db *SQLiteDatabase) Close() error {
	return db.db.Close()
}

// Add records a downloaded track, replacing any earlier record.
func (db *SQLiteDatabase) Add(entry structures.ArchiveEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if entry.DownloadedAt.IsZero() {
		entry.DownloadedAt = time.Now()
	}

	query := `
		INSERT OR REPLACE INTO tracks
		(video_id, artist, title, length, playlist, file_path, duration_ms, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.db.Exec(query,
		entry.Track.VideoID,
		entry.Track.Artist,
		entry.Track.Title,
		entry.Track.Length,
		entry.Playlist,
		entry.FilePath,
		entry.Duration.Milliseconds(),
		entry.DownloadedAt.UTC(),
	)

	return err
}

func (db *SQLiteDatabase) Remove(videoID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.db.Exec("DELETE FROM tracks WHERE video_id = ?", videoID)
	return err
}

const selectTracks = `
	SELECT video_id, artist, title, length, playlist, file_path, duration_ms, downloaded_at
	FROM tracks
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (structures.ArchiveEntry, error) {
	var entry structures.ArchiveEntry
	var durationMs int64

	err := row.Scan(
		&entry.Track.VideoID,
		&entry.Track.Artist,
		&entry.Track.Title,
		&entry.Track.Length,
		&entry.Playlist,
		&entry.FilePath,
		&durationMs,
		&entry.DownloadedAt,
	)
	entry.Duration = time.Duration(durationMs) * time.Millisecond
	return entry, err
}

func (db *SQLiteDatabase) Get(videoID string) (*structures.ArchiveEntry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	entry, err := scanEntry(db.db.QueryRow(selectTracks+"WHERE video_id = ?", videoID))
	if err != nil {
		return nil, false
	}
	return &entry, true
}

// GetAll returns every record, newest first.
func (db *SQLiteDatabase) GetAll() []structures.ArchiveEntry {
	return db.query(selectTracks + "ORDER BY downloaded_at DESC")
}

// ByPlaylist returns the records of one playlist folder, newest first.
func (db *SQLiteDatabase) ByPlaylist(playlist string) []structures.ArchiveEntry {
	return db.query(selectTracks+"WHERE playlist = ? ORDER BY downloaded_at DESC", playlist)
}

func (db *SQLiteDatabase) query(query string, args ...any) []structures.ArchiveEntry {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var entries []structures.ArchiveEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}

// SaveAppState saves application state
func (db *SQLiteDatabase) SaveAppState(key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.db.Exec(`
		INSERT OR REPLACE INTO app_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, key, value)
	return err
}

// GetAppState retrieves application state
func (db *SQLiteDatabase) GetAppState(key string) (string, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var value string
	err := db.db.QueryRow("SELECT value FROM app_state WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}
