package driving

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// IngestService pulls a collection's history into the index.
type IngestService interface {
	// Sync runs one complete, idempotent ingestion pass.
	Sync(ctx context.Context, collectionID string) (*domain.SyncReport, error)

	// Watch runs Sync once, then again whenever the source reports changes,
	// until ctx is cancelled.
	Watch(ctx context.Context, collectionID string) error

	// Status returns the last recorded sync state for a collection.
	Status(ctx context.Context, collectionID string) (*domain.SyncState, error)
}
