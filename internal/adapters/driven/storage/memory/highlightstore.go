// Package memory provides in-memory driven-port implementations, used for
// session-only runs and as fakes in tests.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/hilite-cli/internal/core/domain"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
)

// Ensure HighlightStore implements the interface.
var _ driven.HighlightStore = (*HighlightStore)(nil)

// HighlightStore is an in-memory implementation of driven.HighlightStore.
// Sets are cloned on the way in and out so callers never share backing
// slices with the store.
type HighlightStore struct {
	mu   sync.RWMutex
	sets map[string]*domain.HighlightSet

	// FailSaves makes every Save return an error. Tests use it to drive
	// the optimistic-apply rollback path.
	FailSaves bool

	// SaveErr overrides the error returned when FailSaves is set.
	SaveErr error
}

// NewHighlightStore creates a new in-memory highlight store.
func NewHighlightStore() *HighlightStore {
	return &HighlightStore{sets: make(map[string]*domain.HighlightSet)}
}

// Load fetches the set stored under key, or (nil, nil) when absent.
func (s *HighlightStore) Load(_ context.Context, key string) (*domain.HighlightSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[key]
	if !ok {
		return nil, nil
	}
	return set.Clone(), nil
}

// Save stores the whole set under key, replacing any previous value.
func (s *HighlightStore) Save(_ context.Context, key string, set *domain.HighlightSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves {
		if s.SaveErr != nil {
			return s.SaveErr
		}
		return domain.ErrPersistenceFailure
	}
	s.sets[key] = set.Clone()
	return nil
}

// Len returns the number of stored sets.
func (s *HighlightStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets)
}
