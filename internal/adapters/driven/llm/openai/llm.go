// Package openai provides a completion service adapter for OpenAI and
// OpenAI-compatible APIs such as Groq.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.CompletionService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 60 * time.Second

	temperature = 0.2
)

// LLMConfig holds configuration for the OpenAI completion service.
type LLMConfig struct {
	// Provider labels errors. Defaults to "openai".
	Provider string

	// APIKey is the API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Set to GroqBaseURL for Groq.
	BaseURL string

	// Model is the model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// LLMService runs chat completions against an OpenAI-compatible API.
type LLMService struct {
	client   *goopenai.Client
	provider string
	model    string
}

// NewLLMService creates a new OpenAI completion service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.Provider == "" {
		cfg.Provider = string(domain.LLMProviderOpenAI)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", cfg.Provider)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &LLMService{
		client:   goopenai.NewClientWithConfig(clientCfg),
		provider: cfg.Provider,
		model:    cfg.Model,
	}, nil
}

// NewGroqService creates a completion service for Groq's OpenAI-compatible API.
func NewGroqService(cfg LLMConfig) (*LLMService, error) {
	cfg.Provider = string(domain.LLMProviderGroq)
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = domain.LLMProviderGroq.DefaultModel()
	}
	return NewLLMService(cfg)
}

// Complete runs a single chat completion with a system and a user message.
func (s *LLMService) Complete(ctx context.Context, systemInstruction, userInstruction string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: s.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: goopenai.ChatMessageRoleUser, Content: userInstruction},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", s.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewServiceError(s.provider, 0, errors.New("no response choices returned"))
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps client errors onto transient or permanent service errors.
func (s *LLMService) classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewServiceError(s.provider, apiErr.HTTPStatusCode, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return domain.NewServiceError(s.provider, reqErr.HTTPStatusCode, err)
	}
	return domain.NewServiceError(s.provider, 0, err)
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
// This is a lightweight check that does not run inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%s: ping failed: %w", s.provider, s.classify(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
