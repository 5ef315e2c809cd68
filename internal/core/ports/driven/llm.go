package driven

import "context"

// CompletionService is a provider-agnostic text completion boundary.
//
// Implementations classify failures with domain.ServiceError so callers can
// tell transient failures (timeouts, rate limits, 5xx) from permanent ones
// (bad credentials, malformed requests).
//
// Implementations include:
//   - OpenAI and Groq (OpenAI-compatible)
//   - Anthropic
//   - Google Gemini
//   - Ollama (local models)
type CompletionService interface {
	// Complete runs a single synchronous completion.
	Complete(ctx context.Context, systemInstruction, userInstruction string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
