package httpapi

import (
	"context"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

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

type mockAskService struct {
	result  *domain.AskResult
	err     error
	lastReq domain.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (*domain.AskResult, error) {
	m.lastReq = req
	return m.result, m.err
}

type mockScopeService struct {
	scopes map[string]string
}

func (m *mockScopeService) GetScope(_ context.Context, userID string) (string, bool, error) {
	c, ok := m.scopes[userID]
	return c, ok, nil
}

func (m *mockScopeService) SetScope(_ context.Context, userID, collectionID string) error {
	if userID == "" || collectionID == "" {
		return domain.ErrInvalidInput
	}
	m.scopes[userID] = collectionID
	return nil
}

type mockDocumentService struct {
	stats *driving.CollectionStats
	err   error
}

func (m *mockDocumentService) ListByCollection(_ context.Context, _ string) ([]domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Stats(_ context.Context, _ string) (*driving.CollectionStats, error) {
	return m.stats, m.err
}

type mockIngestService struct {
	state *domain.SyncState
}

func (m *mockIngestService) Sync(_ context.Context, _ string) (*domain.SyncReport, error) {
	return &domain.SyncReport{}, nil
}

func (m *mockIngestService) Watch(_ context.Context, _ string) error {
	return nil
}

func (m *mockIngestService) Status(_ context.Context, _ string) (*domain.SyncState, error) {
	if m.state == nil {
		return nil, domain.ErrNotFound
	}
	return m.state, nil
}

var _ driving.IngestService = (*mockIngestService)(nil)

var syncedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
