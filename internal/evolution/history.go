package evolution

import (
	"context"
	"sync"
)

// History is the per-creature append-only evolution log. Entries are
// never mutated after being appended; the milestone guarantee depends on
// appends for one creature being serialized.
type History interface {
	Entries(ctx context.Context, creatureID string) ([]Entry, error)
	Append(ctx context.Context, entry Entry) error
}

// MemoryHistory keeps histories in process memory. Appends for the same
// creature serialize behind one mutex, which is enough for the
// single-writer-per-creature rule.
type MemoryHistory struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

// NewMemoryHistory builds an empty in-memory history log.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{entries: make(map[string][]Entry)}
}

// Entries returns a copy of the creature's log in append order.
func (h *MemoryHistory) Entries(_ context.Context, creatureID string) ([]Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stored := h.entries[creatureID]
	out := make([]Entry, len(stored))
	copy(out, stored)
	return out, nil
}

// Append adds one entry to the creature's log.
func (h *MemoryHistory) Append(_ context.Context, entry Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[entry.CreatureID] = append(h.entries[entry.CreatureID], entry)
	return nil
}
