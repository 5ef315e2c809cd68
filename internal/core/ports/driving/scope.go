package driving

import "context"

// ScopeService manages the collection each user searches by default.
type ScopeService interface {
	// GetScope returns the user's collection and whether one is set.
	GetScope(ctx context.Context, userID string) (string, bool, error)

	// SetScope stores the user's collection. Last write wins.
	SetScope(ctx context.Context, userID, collectionID string) error
}
