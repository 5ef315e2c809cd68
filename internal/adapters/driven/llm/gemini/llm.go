// Package gemini provides a completion service adapter for Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.CompletionService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel   = "gemini-1.5-flash"
	DefaultTimeout = 60 * time.Second

	provider    = "gemini"
	temperature = 0.2
)

// Config holds configuration for the Gemini completion service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Endpoint overrides the API endpoint.
	Endpoint string

	// Model is the model to use (default: gemini-1.5-flash).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// model is the subset of *genai.GenerativeModel the service uses.
type model interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
	Info(ctx context.Context) (*genai.ModelInfo, error)
}

// LLMService runs completions against the Gemini API.
type LLMService struct {
	client   *genai.Client
	model    string
	timeout  time.Duration
	newModel func(systemInstruction string) model
}

// NewLLMService creates a new Gemini completion service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	s := &LLMService{client: client, model: cfg.Model, timeout: cfg.Timeout}
	s.newModel = s.generativeModel
	return s, nil
}

// generativeModel builds a model handle per call so concurrent completions
// never share a system instruction.
func (s *LLMService) generativeModel(systemInstruction string) model {
	m := s.client.GenerativeModel(s.model)
	m.SetTemperature(temperature)
	if systemInstruction != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
	}
	return m
}

// Complete generates content for the user instruction under the system instruction.
func (s *LLMService) Complete(ctx context.Context, systemInstruction, userInstruction string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.newModel(systemInstruction).GenerateContent(ctx, genai.Text(userInstruction))
	if err != nil {
		return "", classify(err)
	}

	text := responseText(resp)
	if text == "" {
		return "", domain.NewServiceError(provider, 0, errors.New("no text content returned"))
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

// classify maps Gemini API errors onto transient or permanent service errors.
func classify(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return domain.NewServiceError(provider, http.StatusBadRequest, err)
	}

	apiErr, ok := apierror.FromError(err)
	if !ok {
		return domain.NewServiceError(provider, 0, err)
	}
	if code := apiErr.HTTPCode(); code > 0 {
		return domain.NewServiceError(provider, code, err)
	}
	if st := apiErr.GRPCStatus(); st != nil {
		return domain.NewServiceError(provider, grpcToHTTP(st.Code()), err)
	}
	return domain.NewServiceError(provider, 0, err)
}

func grpcToHTTP(code codes.Code) int {
	switch code {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return 0
	}
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the key by fetching model metadata.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.newModel("").Info(ctx); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", classify(err))
	}
	return nil
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
