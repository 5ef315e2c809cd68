package driven

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// PreferenceStore persists the collection each user searches by default.
type PreferenceStore interface {
	// Get returns the preference for a user, or domain.ErrNotFound.
	Get(ctx context.Context, userID string) (*domain.UserPreference, error)

	// Save stores a preference. Last write wins.
	Save(ctx context.Context, pref domain.UserPreference) error
}
