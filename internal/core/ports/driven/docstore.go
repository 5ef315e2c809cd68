package driven

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// DocumentStore provides read access to canonical document records.
// Writes go through LexicalIndex so the store and index never diverge.
type DocumentStore interface {
	// Get retrieves a document by ID, including tombstoned documents.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns documents in a collection ordered by timestamp descending.
	// Tombstoned documents are included only when includeDeleted is true.
	List(ctx context.Context, collectionID string, includeDeleted bool) ([]domain.Document, error)

	// Count returns the number of live and tombstoned documents in a collection.
	Count(ctx context.Context, collectionID string) (live, deleted int, err error)
}
