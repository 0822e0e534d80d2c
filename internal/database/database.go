package database

import (
	"sort"
	"sync"
	"time"

	"github.com/haryoiro/ytmgrab/internal/structures"
)

// Memory is a DB that lives for one run. It is used when the archive is
// disabled.
type Memory struct {
	mu      sync.RWMutex
	entries []structures.ArchiveEntry
	index   map[string]int // videoID -> index mapping
	state   map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		index: make(map[string]int),
		state: make(map[string]string),
	}
}

func (db *Memory) Close() error {
	return nil
}

// Add adds or replaces an entry.
func (db *Memory) Add(entry structures.ArchiveEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if entry.DownloadedAt.IsZero() {
		entry.DownloadedAt = time.Now()
	}

	if idx, exists := db.index[entry.Track.VideoID]; exists {
		db.entries[idx] = entry
		return nil
	}

	db.entries = append(db.entries, entry)
	db.index[entry.Track.VideoID] = len(db.entries) - 1
	return nil
}

func (db *Memory) Remove(videoID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	idx, exists := db.index[videoID]
	if !exists {
		return nil
	}

	db.entries = append(db.entries[:idx], db.entries[idx+1:]...)
	delete(db.index, videoID)

	// Rebuild index
	for i := idx; i < len(db.entries); i++ {
		db.index[db.entries[i].Track.VideoID] = i
	}

	return nil
}

func (db *Memory) Get(videoID string) (*structures.ArchiveEntry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	idx, exists := db.index[videoID]
	if !exists {
		return nil, false
	}

	entry := db.entries[idx]
	return &entry, true
}

// GetAll returns all entries, newest first.
func (db *Memory) GetAll() []structures.ArchiveEntry {
	return db.filter(func(structures.ArchiveEntry) bool { return true })
}

func (db *Memory) ByPlaylist(playlist string) []structures.ArchiveEntry {
	return db.filter(func(e structures.ArchiveEntry) bool { return e.Playlist == playlist })
}

func (db *Memory) filter(keep func(structures.ArchiveEntry) bool) []structures.ArchiveEntry {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var result []structures.ArchiveEntry
	for _, e := range db.entries {
		if keep(e) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DownloadedAt.After(result[j].DownloadedAt)
	})
	return result
}

func (db *Memory) SaveAppState(key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.state[key] = value
	return nil
}

func (db *Memory) GetAppState(key string) (string, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	v, ok := db.state[key]
	return v, ok
}
