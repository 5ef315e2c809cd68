package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

type testServer struct {
	retrieval *mockRetrievalService
	ask       *mockAskService
	scope     *mockScopeService
	handler   http.Handler
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		retrieval: &mockRetrievalService{},
		ask:       &mockAskService{},
		scope:     &mockScopeService{scopes: map[string]string{}},
	}
	srv, err := NewServer(Ports{
		Retrieval: ts.retrieval,
		Ask:       ts.ask,
		Scope:     ts.scope,
		Document: &mockDocumentService{stats: &driving.CollectionStats{
			CollectionID: "C1", Live: 3, Deleted: 1,
		}},
		Ingest: &mockIngestService{state: &domain.SyncState{
			CollectionID: "C1", RunID: "run-1", LastSync: syncedAt, Documents: 4,
		}},
	}, WithDefaultK(7))
	require.NoError(t, err)
	ts.handler = srv.Router()
	return ts
}

func (ts *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestNewServer_RequiresRetrieval(t *testing.T) {
	_, err := NewServer(Ports{})
	assert.ErrorIs(t, err, ErrMissingRetrievalService)
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)
	rec := ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	rec := ts.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearch_ExplicitCollection(t *testing.T) {
	ts := setupTestServer(t)
	ts.retrieval.outcome = &domain.SearchOutcome{
		Mode: domain.RetrievalRanked,
		Hits: []domain.SearchHit{{ID: "C1-1.0", Text: "deploy went fine", Timestamp: "1.0", Score: 2.5}},
	}

	rec := ts.do(t, http.MethodGet, "/api/search?q=deploy&collection=C1&limit=3", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[searchResponse](t, rec)
	assert.Equal(t, "C1", resp.Collection)
	assert.Equal(t, "ranked", resp.Mode)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "C1-1.0", resp.Hits[0].ID)
	assert.Equal(t, "deploy", ts.retrieval.lastQuery)
	assert.Equal(t, 3, ts.retrieval.lastK)
}

func TestSearch_DefaultLimitAndSavedScope(t *testing.T) {
	ts := setupTestServer(t)
	ts.scope.scopes["U1"] = "C9"

	rec := ts.do(t, http.MethodGet, "/api/search?q=x&user=U1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "C9", ts.retrieval.lastCollection)
	assert.Equal(t, 7, ts.retrieval.lastK)
}

func TestSearch_NoScope(t *testing.T) {
	ts := setupTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/search?q=x&user=U1", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no_scope", decode[errorResponse](t, rec).Code)
}

func TestSearch_BadLimit(t *testing.T) {
	ts := setupTestServer(t)
	for _, limit := range []string{"abc", "-1"} {
		rec := ts.do(t, http.MethodGet, "/api/search?q=x&collection=C1&limit="+limit, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}
}

func TestSearch_InternalErrorHidesDetail(t *testing.T) {
	ts := setupTestServer(t)
	ts.retrieval.err = errors.New("disk on fire")

	rec := ts.do(t, http.MethodGet, "/api/search?q=x&collection=C1", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Equal(t, domain.UserFacingMessage, resp.Error)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestAsk_Answered(t *testing.T) {
	ts := setupTestServer(t)
	ts.ask.result = &domain.AskResult{
		CollectionID: "C1",
		Answer:       "It shipped on Monday.",
		Mode:         domain.RetrievalRanked,
		Hits:         []domain.SearchHit{{ID: "C1-1.0", Timestamp: "1.0"}},
	}

	rec := ts.do(t, http.MethodPost, "/api/ask", `{"question":"when?","collection":"C1","user":"U1","limit":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[askResponse](t, rec)
	assert.Equal(t, "It shipped on Monday.", resp.Answer)
	assert.Len(t, resp.Sources, 1)
	assert.Empty(t, resp.Error)
	assert.Equal(t, domain.AskRequest{UserID: "U1", CollectionID: "C1", Query: "when?", K: 2}, ts.ask.lastReq)
}

func TestAsk_Failed(t *testing.T) {
	ts := setupTestServer(t)
	ts.ask.result = &domain.AskResult{
		CollectionID: "C1",
		Hits:         []domain.SearchHit{{ID: "C1-1.0"}},
		UserMessage:  domain.UserFacingMessage,
		Err:          errors.New("upstream 503"),
	}

	rec := ts.do(t, http.MethodPost, "/api/ask", `{"question":"when?","collection":"C1"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode[askResponse](t, rec)
	assert.Equal(t, domain.UserFacingMessage, resp.Error)
	assert.Len(t, resp.Sources, 1)
	assert.NotContains(t, rec.Body.String(), "upstream 503")
}

func TestAsk_NeedsScope(t *testing.T) {
	ts := setupTestServer(t)
	ts.ask.result = &domain.AskResult{NeedsScope: true}

	rec := ts.do(t, http.MethodPost, "/api/ask", `{"question":"when?"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no_scope", decode[errorResponse](t, rec).Code)
}

func TestAsk_InvalidBody(t *testing.T) {
	ts := setupTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/ask", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/ask", `{"question":"q","limit":-2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScope_SetThenGet(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/scope", `{"user":"U1","collection":"C2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/scope?user=U1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[scopeResponse](t, rec)
	assert.True(t, resp.Set)
	assert.Equal(t, "C2", resp.Collection)
}

func TestScope_Errors(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/scope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/scope", `{"user":"U1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/scope?user=nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[scopeResponse](t, rec).Set)
}

func TestCollectionStatsAndStatus(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/collections/C1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[statsResponse](t, rec)
	assert.Equal(t, 3, stats.Live)
	assert.Equal(t, 1, stats.Deleted)

	rec = ts.do(t, http.MethodGet, "/api/collections/C1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[statusResponse](t, rec)
	assert.Equal(t, "run-1", status.RunID)
	assert.Equal(t, "2024-03-01T12:00:00Z", status.LastSync)
}

func TestOptionalRoutesAbsent(t *testing.T) {
	srv, err := NewServer(Ports{Retrieval: &mockRetrievalService{}})
	require.NoError(t, err)
	h := srv.Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader("{}")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMCPMount(t *testing.T) {
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv, err := NewServer(Ports{Retrieval: &mockRetrievalService{}}, WithMCP(mcp))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
