package driven

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// LexicalIndex owns the write path for documents and serves ranked search.
// Upsert and Tombstone update the canonical record and its indexed
// representation atomically: a concurrent reader never sees one without the other.
type LexicalIndex interface {
	// Upsert inserts or replaces a document keyed by ID. Stale indexed terms
	// for the ID are removed first. A tombstoned document becomes live again.
	Upsert(ctx context.Context, doc *domain.Document) error

	// Tombstone excludes a document from future searches without removing
	// its indexed terms. Returns domain.ErrNotFound for unknown IDs.
	Tombstone(ctx context.Context, id string) error

	// Search returns live documents in the query's collection that satisfy the
	// query's match mode, ranked by relevance descending then timestamp
	// descending. A query the engine's grammar rejects degrades to a substring
	// match tagged domain.RetrievalFallback instead of failing.
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchOutcome, error)
}
