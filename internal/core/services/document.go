package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService provides read access to ingested documents.
type DocumentService struct {
	docStore driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

// ListByCollection returns live documents in a collection, newest first.
func (s *DocumentService) ListByCollection(ctx context.Context, collectionID string) ([]domain.Document, error) {
	collectionID = strings.TrimSpace(collectionID)
	if collectionID == "" {
		return nil, fmt.Errorf("%w: collection is required", domain.ErrInvalidInput)
	}
	return s.docStore.List(ctx, collectionID, false)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	return s.docStore.Get(ctx, documentID)
}

// Stats returns live and tombstoned document counts for a collection.
func (s *DocumentService) Stats(ctx context.Context, collectionID string) (*driving.CollectionStats, error) {
	live, deleted, err := s.docStore.Count(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	return &driving.CollectionStats{CollectionID: collectionID, Live: live, Deleted: deleted}, nil
}
