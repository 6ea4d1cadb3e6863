package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"shopfloor/internal/core"
	"shopfloor/internal/source"
)

var _ source.TimeEntryStore = (*Store)(nil)

// Store keeps a snapshot in memory, in insertion order.
type Store struct {
	mu    sync.Mutex
	items []core.RawTimeEntry
}

func New(entries []core.RawTimeEntry) *Store {
	return &Store{items: append([]core.RawTimeEntry(nil), entries...)}
}

// NewFromFile seeds the store from a JSON array of time entries. An empty
// path gives an empty store.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(nil), nil
	}
	entries, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(entries), nil
}

// LoadFile reads a JSON array of raw time entries.
func LoadFile(path string) ([]core.RawTimeEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var entries []core.RawTimeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return entries, nil
}

// FetchTimeEntries returns a copy of the current snapshot.
func (s *Store) FetchTimeEntries(ctx context.Context) ([]core.RawTimeEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]core.RawTimeEntry, 0, len(s.items)), s.items...), nil
}

// AppendTimeEntries adds entries to the snapshot.
func (s *Store) AppendTimeEntries(_ context.Context, entries []core.TimeEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.items = append(s.items, e.Raw())
	}
	return len(entries), nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
