package driving

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// DocumentService exposes read access to ingested documents.
type DocumentService interface {
	// ListByCollection returns live documents in a collection, newest first.
	ListByCollection(ctx context.Context, collectionID string) ([]domain.Document, error)

	// Get retrieves a document by ID, including tombstones.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Stats returns the number of live and tombstoned documents in a collection.
	Stats(ctx context.Context, collectionID string) (*CollectionStats, error)
}

// CollectionStats summarises a collection's documents.
type CollectionStats struct {
	CollectionID string
	Live         int
	Deleted      int
}
