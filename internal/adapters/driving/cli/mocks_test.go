package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

type mockRetrievalService struct {
	lastQuery      string
	lastCollection string
	lastK          int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query, collectionID string, k int) (*domain.SearchOutcome, error) {
	m.lastQuery, m.lastCollection, m.lastK = query, collectionID, k
	if query == "nothing" {
		return domain.EmptyOutcome(), nil
	}
	return &domain.SearchOutcome{
		Mode: domain.RetrievalRanked,
		Hits: []domain.SearchHit{{
			ID:          collectionID + "-1700000000.000100",
			Text:        "deploy finished without errors",
			CitationURI: "https://example.test/archives/" + collectionID + "/p1700000000000100",
			Timestamp:   "1700000000.000100",
			Score:       3.25,
		}},
	}, nil
}

type mockAskService struct {
	result  *domain.AskResult
	lastReq domain.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (*domain.AskResult, error) {
	m.lastReq = req
	return m.result, nil
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

type mockSettingsService struct {
	settings domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.LLMProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return domain.ErrUnsupportedType
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return domain.ErrInvalidInput
	}
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.settings.Validate()
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

type mockValidator struct {
	err    error
	called bool
}

func (m *mockValidator) ValidateLLM(_ context.Context, _ *domain.LLMSettings) error {
	m.called = true
	return m.err
}

type mockDocumentService struct {
	docs []domain.Document
}

func (m *mockDocumentService) ListByCollection(_ context.Context, collectionID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range m.docs {
		if d.CollectionID == collectionID && !d.Deleted {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Stats(_ context.Context, collectionID string) (*driving.CollectionStats, error) {
	stats := &driving.CollectionStats{CollectionID: collectionID}
	for _, d := range m.docs {
		if d.CollectionID != collectionID {
			continue
		}
		if d.Deleted {
			stats.Deleted++
		} else {
			stats.Live++
		}
	}
	return stats, nil
}

type mockIngestService struct {
	dir    string
	synced []string
	states map[string]*domain.SyncState
}

func (m *mockIngestService) Sync(_ context.Context, collectionID string) (*domain.SyncReport, error) {
	if m.dir == "" {
		return nil, domain.ErrSourceUnavailable
	}
	m.synced = append(m.synced, collectionID)
	m.states[collectionID] = &domain.SyncState{
		CollectionID: collectionID,
		RunID:        "run-1",
		LastSync:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Documents:    3,
	}
	return &domain.SyncReport{
		CollectionID: collectionID,
		RunID:        "run-1",
		Pages:        2,
		Upserted:     2,
		Tombstoned:   1,
		Errors:       1,
		Duration:     1500 * time.Millisecond,
	}, nil
}

func (m *mockIngestService) Watch(ctx context.Context, collectionID string) error {
	if _, err := m.Sync(ctx, collectionID); err != nil {
		return err
	}
	return nil
}

func (m *mockIngestService) Status(_ context.Context, collectionID string) (*domain.SyncState, error) {
	state, ok := m.states[collectionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return state, nil
}

type testServices struct {
	retrieval *mockRetrievalService
	ask       *mockAskService
	scope     *mockScopeService
	settings  *mockSettingsService
	validator *mockValidator
	documents *mockDocumentService
	ingest    *mockIngestService
}

var services *testServices

// setupTestServices installs mocks for every service and resets flags.
// The returned function restores an unconfigured CLI.
func setupTestServices() func() {
	services = &testServices{
		retrieval: &mockRetrievalService{},
		ask:       &mockAskService{result: &domain.AskResult{}},
		scope:     &mockScopeService{scopes: map[string]string{}},
		settings:  &mockSettingsService{settings: domain.DefaultAppSettings()},
		validator: &mockValidator{},
		documents: &mockDocumentService{},
		ingest:    &mockIngestService{states: map[string]*domain.SyncState{}},
	}
	SetServices(&Services{
		Retrieval: services.retrieval,
		Ask:       services.ask,
		Scope:     services.scope,
		Settings:  services.settings,
		Document:  services.documents,
		Validator: services.validator,
		NewIngest: func(dir string) (driving.IngestService, error) {
			services.ingest.dir = dir
			return services.ingest, nil
		},
		DefaultK: 5,
	})
	resetFlags()

	return func() {
		SetServices(&Services{})
		defaultK = 5
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

func resetFlags() {
	searchCollection, searchUser, searchLimit, searchJSON = "", "", 0, false
	askCollection, askUser, askLimit = "", "", 0
	scopeUser = ""
	tuiCollection, tuiUser = "", ""
	ingestSource, ingestWatch = "", false
	llmProviderFlag, llmModelFlag, llmAPIKeyFlag, llmSkipCheck = "", "", "", false
	verbose = false
}
