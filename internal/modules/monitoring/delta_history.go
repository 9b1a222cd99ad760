package monitoring

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// DeltaHistory is the position monitor's only cross-cycle state: the
// previous per-contract delta keyed by position ID. It is safe for
// concurrent callers and survives restarts through a msgpack state file.
type DeltaHistory struct {
	mu     sync.Mutex
	path   string // empty = in-memory only
	deltas map[string]float64
}

// NewDeltaHistory creates an empty history. path may be empty for an
// in-memory history (tests, one-shot runs).
func NewDeltaHistory(path string) *DeltaHistory {
	return &DeltaHistory{
		path:   path,
		deltas: make(map[string]float64),
	}
}

// Load restores persisted state. A missing state file is not an error.
func (h *DeltaHistory) Load() error {
	if h.path == "" {
		return nil
	}
	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read delta history %s: %w", h.path, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := msgpack.Unmarshal(data, &h.deltas); err != nil {
		return fmt.Errorf("failed to decode delta history %s: %w", h.path, err)
	}
	if h.deltas == nil {
		h.deltas = make(map[string]float64)
	}
	return nil
}

// Save persists the current state atomically (write temp file, rename).
func (h *DeltaHistory) Save() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	data, err := msgpack.Marshal(h.deltas)
	h.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode delta history: %w", err)
	}

	tmp := h.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write delta history: %w", err)
	}
	if err := os.Rename(tmp, h.path); err != nil {
		return fmt.Errorf("failed to replace delta history: %w", err)
	}
	return nil
}

// Previous returns the delta recorded for the position on the last cycle.
func (h *DeltaHistory) Previous(id string) (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.deltas[id]
	return v, ok
}

// Record stores the position's delta for the next cycle's comparison.
func (h *DeltaHistory) Record(id string, delta float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deltas[id] = delta
}

// Prune drops entries for positions no longer in the portfolio so closed
// contracts do not accumulate forever.
func (h *DeltaHistory) Prune(activeIDs map[string]struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.deltas {
		if _, ok := activeIDs[id]; !ok {
			delete(h.deltas, id)
		}
	}
}

// Len returns the number of tracked positions.
func (h *DeltaHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.deltas)
}
