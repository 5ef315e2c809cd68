package driving

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// AnswerService synthesises a cited answer from ranked hits.
type AnswerService interface {
	// GenerateAnswer returns the trimmed completion for query grounded on hits.
	GenerateAnswer(ctx context.Context, query string, hits []domain.SearchHit) (string, error)
}

// AskService answers a user's question end to end.
type AskService interface {
	// Ask resolves scope, retrieves passages and generates an answer.
	// Completion failures are reported in the result, not as an error.
	Ask(ctx context.Context, req domain.AskRequest) (*domain.AskResult, error)
}
