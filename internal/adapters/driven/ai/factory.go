// Package ai provides factory functions for creating completion service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/archivist/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/archivist/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/archivist/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/archivist/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateLLMService creates a completion service and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.CompletionService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'archivist settings llm' to fix",
			domain.ErrCompletionUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'archivist settings llm' to fix",
			domain.ErrCompletionUnavailable, err)
	}
	return svc, nil
}

// ValidateLLMConfig validates a configuration by creating a service and pinging it.
// Intended for the settings command to check credentials as they are entered.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(pingCtx)
}

// CreateLLMService creates the completion service selected by settings.
// Returns nil if the provider is not configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.CompletionService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	timeout := time.Duration(settings.TimeoutSeconds) * time.Second

	switch settings.Provider {
	case domain.LLMProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.EffectiveModel(),
			Timeout: timeout,
		}), nil

	case domain.LLMProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.EffectiveModel(),
			Timeout: timeout,
		})

	case domain.LLMProviderGroq:
		return openaillm.NewGroqService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.EffectiveModel(),
			Timeout: timeout,
		})

	case domain.LLMProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.EffectiveModel(),
			Timeout: timeout,
		})

	case domain.LLMProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey:   settings.APIKey,
			Endpoint: settings.BaseURL,
			Model:    settings.EffectiveModel(),
			Timeout:  timeout,
		})

	default:
		return nil, fmt.Errorf("%w: llm provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}
