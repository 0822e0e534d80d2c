package ui

import (
	"sync"
	"time"
)

// KeyDebouncer keeps a held navigation key from flooding the cursor. The
// first presses of a burst need initialDelay between them, later ones only
// repeatDelay.
type KeyDebouncer struct {
	mu           sync.Mutex
	lastKeyTime  map[string]time.Time
	burst        map[string]int
	repeatDelay  time.Duration
	initialDelay time.Duration
	burstReset   time.Duration
	now          func() time.Time
}

// NewKeyDebouncer creates a new key debouncer.
func NewKeyDebouncer() *KeyDebouncer {
	return &KeyDebouncer{
		lastKeyTime:  make(map[string]time.Time),
		burst:        make(map[string]int),
		repeatDelay:  30 * time.Millisecond,
		initialDelay: 120 * time.Millisecond,
		burstReset:   400 * time.Millisecond,
		now:          time.Now,
	}
}

// ShouldProcess returns true if the key event should be processed.
func (kd *KeyDebouncer) ShouldProcess(key string) bool {
	kd.mu.Lock()
	defer kd.mu.Unlock()

	now := kd.now()
	last, seen := kd.lastKeyTime[key]
	if !seen || now.Sub(last) > kd.burstReset {
		kd.lastKeyTime[key] = now
		kd.burst[key] = 1
		return true
	}

	required := kd.repeatDelay
	if kd.burst[key] < 3 {
		required = kd.initialDelay
	}
	if now.Sub(last) < required {
		return false
	}

	kd.burst[key]++
	kd.lastKeyTime[key] = now
	return true
}

// ResetAll clears all debouncer state.
func (kd *KeyDebouncer) ResetAll() {
	kd.mu.Lock()
	defer kd.mu.Unlock()
	kd.lastKeyTime = make(map[string]time.Time)
	kd.burst = make(map[string]int)
}
