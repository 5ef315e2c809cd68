package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure SyncStateStore implements the interface.
var _ driven.SyncStateStore = (*SyncStateStore)(nil)

// SyncStateStore is an in-memory implementation of driven.SyncStateStore.
type SyncStateStore struct {
	mu     sync.RWMutex
	states map[string]domain.SyncState
}

// NewSyncStateStore creates a new in-memory sync state store.
func NewSyncStateStore() *SyncStateStore {
	return &SyncStateStore{
		states: make(map[string]domain.SyncState),
	}
}

// Save stores or replaces the sync state for a collection.
func (s *SyncStateStore) Save(_ context.Context, state domain.SyncState) error {
	if state.CollectionID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.CollectionID] = state
	return nil
}

// Get retrieves sync state for a collection.
func (s *SyncStateStore) Get(_ context.Context, collectionID string) (*domain.SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[collectionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &state, nil
}
