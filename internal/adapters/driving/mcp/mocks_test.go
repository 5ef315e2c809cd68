package mcp

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	outcome        *domain.SearchOutcome
	err            error
	lastQuery      string
	lastCollection string
	lastK          int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query, collectionID string, k int) (*domain.SearchOutcome, error) {
	m.lastQuery, m.lastCollection, m.lastK = query, collectionID, k
	if m.err != nil {
		return nil, m.err
	}
	if m.outcome == nil {
		return domain.EmptyOutcome(), nil
	}
	return m.outcome, nil
}

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	result  *domain.AskResult
	err     error
	lastReq domain.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (*domain.AskResult, error) {
	m.lastReq = req
	return m.result, m.err
}

// mockScopeService is a mock implementation of driving.ScopeService.
type mockScopeService struct {
	scopes map[string]string
	err    error
}

func newMockScopeService() *mockScopeService {
	return &mockScopeService{scopes: make(map[string]string)}
}

func (m *mockScopeService) GetScope(_ context.Context, userID string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	c, ok := m.scopes[userID]
	return c, ok, nil
}

func (m *mockScopeService) SetScope(_ context.Context, userID, collectionID string) error {
	if m.err != nil {
		return m.err
	}
	if userID == "" || collectionID == "" {
		return domain.ErrInvalidInput
	}
	m.scopes[userID] = collectionID
	return nil
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockDocumentService) ListByCollection(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Stats(_ context.Context, collectionID string) (*driving.CollectionStats, error) {
	return &driving.CollectionStats{CollectionID: collectionID, Live: len(m.documents)}, m.err
}
