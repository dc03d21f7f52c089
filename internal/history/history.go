package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// History maps aircraft hex codes to their last alert time and gates repeat
// alerts on a cooldown. The map is guarded by a single mutex; persistence
// snapshots under the same lock.
type History struct {
	mu       sync.Mutex
	path     string
	cooldown time.Duration
	last     map[string]time.Time
}

// New returns an empty history persisted at path.
func New(path string, cooldown time.Duration) *History {
	return &History{
		path:     path,
		cooldown: cooldown,
		last:     make(map[string]time.Time),
	}
}

// Load reads the persisted history file. A missing or malformed file yields
// an empty history; the returned error is informational only and the history
// is always usable.
func Load(path string, cooldown time.Duration) (*History, error) {
	h := New(path, cooldown)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return h, fmt.Errorf("read history file: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return h, fmt.Errorf("parse history file: %w", err)
	}

	for hex, stamp := range raw {
		t, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			continue
		}
		h.last[hex] = t
	}
	return h, nil
}

// Eligible reports whether the aircraft may alert at the given time. An
// unseen hex is always eligible.
func (h *History) Eligible(hex string, now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	last, ok := h.last[hex]
	if !ok {
		return true
	}
	return now.Sub(last) >= h.cooldown
}

// Record sets the last alert time for the aircraft.
func (h *History) Record(hex string, now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[hex] = now
}

// Len returns the number of tracked aircraft.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.last)
}

// Persist writes the full map to the history file. The write goes to a
// temporary file in the same directory followed by a rename, so an existing
// file is never left with partial content.
func (h *History) Persist() error {
	h.mu.Lock()
	raw := make(map[string]string, len(h.last))
	for hex, t := range h.last {
		raw[hex] = t.Format(time.RFC3339)
	}
	h.mu.Unlock()

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(h.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(h.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create history temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write history temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close history temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), h.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}
