package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/codebook/internal/core/domain"
	"github.com/custodia-labs/codebook/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

type entry struct {
	blob    []byte
	version int64
}

// StateStore is an in-memory implementation of driven.StateStore.
// It enforces versions like the Postgres store, which makes it suitable for
// exercising conflict handling in tests.
type StateStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	saves   int
	failErr error
}

// NewStateStore creates a new in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{
		entries: make(map[string]entry),
	}
}

// Load returns the blob stored under key and its version.
func (s *StateStore) Load(_ context.Context, key string) ([]byte, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, 0, nil
	}
	return slices.Clone(e.blob), e.version, nil
}

// Save writes the blob when version matches the stored one.
func (s *StateStore) Save(_ context.Context, key string, blob []byte, version int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failErr; err != nil {
		s.failErr = nil
		return 0, err
	}
	current := s.entries[key]
	if current.version != version {
		return 0, fmt.Errorf("state %q at version %d, not %d: %w", key, current.version, version, domain.ErrConflict)
	}
	next := entry{blob: slices.Clone(blob), version: version + 1}
	s.entries[key] = next
	s.saves++
	return next.version, nil
}

// Close releases resources (no-op for memory store).
func (s *StateStore) Close() error {
	return nil
}

// FailNextSave makes the next Save return err.
func (s *StateStore) FailNextSave(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Saves returns the number of successful saves.
func (s *StateStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
