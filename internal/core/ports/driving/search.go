package driving

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// RetrievalService turns free-text questions into scoped, ranked hits.
type RetrievalService interface {
	// Retrieve returns at most k hits from collectionID for query.
	// Empty or degenerate queries return an empty outcome without error.
	Retrieve(ctx context.Context, query, collectionID string, k int) (*domain.SearchOutcome, error)
}
