package database

import "github.com/haryoiro/ytmgrab/internal/structures"

// DB is the download archive. SQLiteDatabase persists it; Memory keeps it
// for one run only.
type DB interface {
	Add(entry structures.ArchiveEntry) error
	Remove(videoID string) error
	Get(videoID string) (*structures.ArchiveEntry, bool)
	GetAll() []structures.ArchiveEntry
	ByPlaylist(playlist string) []structures.ArchiveEntry
	SaveAppState(key, value string) error
	GetAppState(key string) (string, bool)
	Close() error
}
