package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Ensure ScopeService implements the interface.
var _ driving.ScopeService = (*ScopeService)(nil)

// ScopeService manages per-user collection preferences.
type ScopeService struct {
	store driven.PreferenceStore
	now   func() time.Time
}

// NewScopeService creates a new scope service.
func NewScopeService(store driven.PreferenceStore) *ScopeService {
	return &ScopeService{store: store, now: time.Now}
}

// GetScope returns the user's saved collection and whether one exists.
func (s *ScopeService) GetScope(ctx context.Context, userID string) (string, bool, error) {
	if userID == "" {
		return "", false, nil
	}
	pref, err := s.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get scope: %w", err)
	}
	return pref.CollectionID, pref.CollectionID != "", nil
}

// SetScope saves collectionID as the user's default. Last write wins.
func (s *ScopeService) SetScope(ctx context.Context, userID, collectionID string) error {
	userID = strings.TrimSpace(userID)
	collectionID = strings.TrimSpace(collectionID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if collectionID == "" {
		return fmt.Errorf("%w: collection id is required", domain.ErrInvalidInput)
	}

	if err := s.store.Save(ctx, domain.UserPreference{
		UserID:       userID,
		CollectionID: collectionID,
		UpdatedAt:    s.now(),
	}); err != nil {
		return fmt.Errorf("save scope: %w", err)
	}
	logger.Debug("Scope for %s set to %s", userID, collectionID)
	return nil
}
