package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
	"github.com/custodia-labs/archivist/internal/metrics"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// AskService answers questions end to end: scope, retrieve, generate.
type AskService struct {
	scope     driving.ScopeService
	retrieval driving.RetrievalService
	answers   driving.AnswerService
	defaultK  int
}

// NewAskService creates a new ask service.
// answers may be nil when no completion service is configured.
func NewAskService(
	scope driving.ScopeService,
	retrieval driving.RetrievalService,
	answers driving.AnswerService,
	defaultK int,
) *AskService {
	if defaultK < 1 {
		defaultK = domain.DefaultAppSettings().Search.DefaultK
	}
	return &AskService{
		scope:     scope,
		retrieval: retrieval,
		answers:   answers,
		defaultK:  defaultK,
	}
}

// Ask resolves the collection, retrieves passages and generates an answer.
// An explicit collection wins over the user's saved scope. Completion
// failures are reported on the result with a user-facing message.
func (s *AskService) Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResult, error) {
	logger.Section("Ask")

	collectionID := strings.TrimSpace(req.CollectionID)
	if collectionID == "" && s.scope != nil {
		saved, ok, err := s.scope.GetScope(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		if ok {
			collectionID = saved
		}
	}
	if collectionID == "" {
		logger.Debug("No scope for user %q", req.UserID)
		metrics.AskTotal.WithLabelValues("no_scope").Inc()
		return &domain.AskResult{NeedsScope: true, Hits: []domain.SearchHit{}, Mode: domain.RetrievalEmpty}, nil
	}

	k := req.K
	if k <= 0 {
		k = s.defaultK
	}

	result := &domain.AskResult{CollectionID: collectionID}

	if strings.TrimSpace(req.Query) == "" {
		metrics.AskTotal.WithLabelValues("empty").Inc()
		result.Hits = []domain.SearchHit{}
		result.Mode = domain.RetrievalEmpty
		return result, nil
	}

	outcome, err := s.retrieval.Retrieve(ctx, req.Query, collectionID, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	result.Hits = outcome.Hits
	result.Mode = outcome.Mode

	if s.answers == nil {
		s.fail(result, domain.ErrCompletionUnavailable)
		return result, nil
	}

	answer, err := s.answers.GenerateAnswer(ctx, req.Query, outcome.Hits)
	if err != nil {
		s.fail(result, err)
		return result, nil
	}

	result.Answer = answer
	metrics.AskTotal.WithLabelValues("answered").Inc()
	logger.Info("Answered in %s from %d hits", collectionID, len(result.Hits))
	return result, nil
}

func (s *AskService) fail(result *domain.AskResult, err error) {
	logger.Error(err, "answer generation failed for collection %s", result.CollectionID)
	metrics.AskTotal.WithLabelValues("failed").Inc()
	result.Err = err
	result.UserMessage = domain.UserFacingMessage
}
