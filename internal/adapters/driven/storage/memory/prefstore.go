package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure PreferenceStore implements the interface.
var _ driven.PreferenceStore = (*PreferenceStore)(nil)

// PreferenceStore is an in-memory implementation of driven.PreferenceStore.
type PreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]domain.UserPreference
}

// NewPreferenceStore creates a new in-memory preference store.
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{
		prefs: make(map[string]domain.UserPreference),
	}
}

// Get returns the preference for a user.
func (s *PreferenceStore) Get(_ context.Context, userID string) (*domain.UserPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pref, ok := s.prefs[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &pref, nil
}

// Save stores a preference. Last write wins.
func (s *PreferenceStore) Save(_ context.Context, pref domain.UserPreference) error {
	if pref.UserID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[pref.UserID] = pref
	return nil
}
