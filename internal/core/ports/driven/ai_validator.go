package driven

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// LLMConfigValidator validates completion provider configurations by testing
// connectivity to the underlying service.
type LLMConfigValidator interface {
	// ValidateLLM pings the configured provider.
	// Returns nil if configuration is valid or not configured.
	ValidateLLM(ctx context.Context, config *domain.LLMSettings) error
}
