package driven

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// SyncStateStore persists ingestion progress per collection.
type SyncStateStore interface {
	// Get retrieves sync state for a collection, or domain.ErrNotFound.
	Get(ctx context.Context, collectionID string) (*domain.SyncState, error)

	// Save stores sync state.
	Save(ctx context.Context, state domain.SyncState) error
}
