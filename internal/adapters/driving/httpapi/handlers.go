package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type hitResponse struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	CitationURI string  `json:"citation_uri,omitempty"`
	AuthorID    string  `json:"author_id,omitempty"`
	Timestamp   string  `json:"timestamp"`
	Score       float64 `json:"score"`
}

type searchResponse struct {
	Collection string        `json:"collection"`
	Mode       string        `json:"mode"`
	Hits       []hitResponse `json:"hits"`
}

type askRequest struct {
	Question   string `json:"question"`
	Collection string `json:"collection"`
	User       string `json:"user"`
	Limit      int    `json:"limit"`
}

type askResponse struct {
	Answer     string        `json:"answer"`
	Collection string        `json:"collection"`
	Mode       string        `json:"mode"`
	Sources    []hitResponse `json:"sources"`
	Error      string        `json:"error,omitempty"`
}

type scopeRequest struct {
	User       string `json:"user"`
	Collection string `json:"collection"`
}

type scopeResponse struct {
	User       string `json:"user"`
	Collection string `json:"collection,omitempty"`
	Set        bool   `json:"set"`
}

type statusResponse struct {
	Collection string `json:"collection"`
	RunID      string `json:"run_id"`
	Cursor     string `json:"cursor,omitempty"`
	LastSync   string `json:"last_sync"`
	Documents  int    `json:"documents"`
	Errors     int    `json:"errors"`
}

type statsResponse struct {
	Collection string `json:"collection"`
	Live       int    `json:"live"`
	Deleted    int    `json:"deleted"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := s.parseLimit(w, q.Get("limit"))
	if !ok {
		return
	}

	collection, err := s.resolveCollection(r, q.Get("collection"), q.Get("user"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	outcome, err := s.ports.Retrieval.Retrieve(r.Context(), q.Get("q"), collection, limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Collection: collection,
		Mode:       string(outcome.Mode),
		Hits:       hitResponses(outcome.Hits),
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must not be negative")
		return
	}

	result, err := s.ports.Ask.Ask(r.Context(), domain.AskRequest{
		UserID:       req.User,
		CollectionID: req.Collection,
		Query:        req.Question,
		K:            req.Limit,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if result.NeedsScope {
		s.writeDomainError(w, domain.ErrNoScope)
		return
	}

	resp := askResponse{
		Answer:     result.Answer,
		Collection: result.CollectionID,
		Mode:       string(result.Mode),
		Sources:    hitResponses(result.Hits),
	}
	if result.Failed() {
		s.log.Error().Err(result.Err).Str("collection", result.CollectionID).Msg("answer generation failed")
		resp.Error = result.UserMessage
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetScope(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user is required")
		return
	}
	collection, ok, err := s.ports.Scope.GetScope(r.Context(), user)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scopeResponse{User: user, Collection: collection, Set: ok})
}

func (s *Server) handleSetScope(w http.ResponseWriter, r *http.Request) {
	var req scopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if err := s.ports.Scope.SetScope(r.Context(), req.User, req.Collection); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scopeResponse{
		User:       strings.TrimSpace(req.User),
		Collection: strings.TrimSpace(req.Collection),
		Set:        true,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ports.Document.Stats(r.Context(), chi.URLParam(r, "collectionID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Collection: stats.CollectionID, Live: stats.Live, Deleted: stats.Deleted})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, err := s.ports.Ingest.Status(r.Context(), chi.URLParam(r, "collectionID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Collection: state.CollectionID,
		RunID:      state.RunID,
		Cursor:     state.Cursor,
		LastSync:   state.LastSync.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Documents:  state.Documents,
		Errors:     state.Errors,
	})
}

// resolveCollection returns the explicit collection, else the user's saved scope.
func (s *Server) resolveCollection(r *http.Request, collection, user string) (string, error) {
	if c := strings.TrimSpace(collection); c != "" {
		return c, nil
	}
	if s.ports.Scope != nil && user != "" {
		saved, ok, err := s.ports.Scope.GetScope(r.Context(), user)
		if err != nil {
			return "", err
		}
		if ok {
			return saved, nil
		}
	}
	return "", domain.ErrNoScope
}

func (s *Server) parseLimit(w http.ResponseWriter, raw string) (int, bool) {
	if raw == "" {
		return s.defaultK, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}

// writeDomainError maps domain errors onto HTTP statuses. Unexpected errors
// are logged and reported with the generic user-facing message.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoScope):
		writeError(w, http.StatusBadRequest, "no_scope", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", domain.UserFacingMessage)
	}
}

func hitResponses(hits []domain.SearchHit) []hitResponse {
	out := make([]hitResponse, len(hits))
	for i, h := range hits {
		out[i] = hitResponse{
			ID:          h.ID,
			Text:        h.Text,
			CitationURI: h.CitationURI,
			AuthorID:    h.AuthorID,
			Timestamp:   h.Timestamp,
			Score:       h.Score,
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
