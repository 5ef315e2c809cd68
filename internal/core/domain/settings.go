package domain

import "fmt"

const unknownDescription = "Unknown"

// LLMProvider identifies a text completion provider.
type LLMProvider string

// Available completion providers.
const (
	// LLMProviderOpenAI is the OpenAI cloud API.
	LLMProviderOpenAI LLMProvider = "openai"

	// LLMProviderGroq is Groq's OpenAI-compatible API.
	LLMProviderGroq LLMProvider = "groq"

	// LLMProviderAnthropic is the Anthropic cloud API.
	LLMProviderAnthropic LLMProvider = "anthropic"

	// LLMProviderGemini is the Google Gemini API.
	LLMProviderGemini LLMProvider = "gemini"

	// LLMProviderOllama is a local Ollama instance.
	LLMProviderOllama LLMProvider = "ollama"
)

// AllLLMProviders returns the supported providers, local first.
func AllLLMProviders() []LLMProvider {
	return []LLMProvider{
		LLMProviderOllama,
		LLMProviderOpenAI,
		LLMProviderGroq,
		LLMProviderAnthropic,
		LLMProviderGemini,
	}
}

// IsValid returns true if the provider is recognised.
func (p LLMProvider) IsValid() bool {
	switch p {
	case LLMProviderOpenAI, LLMProviderGroq, LLMProviderAnthropic, LLMProviderGemini, LLMProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p LLMProvider) RequiresAPIKey() bool {
	return p.IsValid() && p != LLMProviderOllama
}

// DefaultModel returns the model used when none is configured.
func (p LLMProvider) DefaultModel() string {
	switch p {
	case LLMProviderOpenAI:
		return "gpt-4o-mini"
	case LLMProviderGroq:
		return "llama-3.1-70b-versatile"
	case LLMProviderAnthropic:
		return "claude-3-5-sonnet-latest"
	case LLMProviderGemini:
		return "gemini-1.5-flash"
	case LLMProviderOllama:
		return "llama3.2"
	default:
		return ""
	}
}

// String returns the string representation.
func (p LLMProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p LLMProvider) Description() string {
	switch p {
	case LLMProviderOpenAI:
		return "OpenAI (cloud)"
	case LLMProviderGroq:
		return "Groq (cloud, OpenAI-compatible)"
	case LLMProviderAnthropic:
		return "Anthropic (cloud)"
	case LLMProviderGemini:
		return "Google Gemini (cloud)"
	case LLMProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// LLMSettings configures the completion service.
type LLMSettings struct {
	// Provider selects the completion backend.
	Provider LLMProvider

	// Model is the model name. Empty means the provider default.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey authenticates against cloud providers.
	APIKey string

	// TimeoutSeconds bounds each completion request.
	TimeoutSeconds int
}

// IsConfigured returns true if a provider is selected and has credentials.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// EffectiveModel returns Model, or the provider default when unset.
func (l LLMSettings) EffectiveModel() string {
	if l.Model != "" {
		return l.Model
	}
	return l.Provider.DefaultModel()
}

// AnswerSettings bounds prompt size and the retry policy.
type AnswerSettings struct {
	// MaxContextChars bounds the context block embedded in the prompt.
	MaxContextChars int

	// MaxAttempts caps completion attempts, including the first.
	MaxAttempts int

	// MaxWaitSeconds caps the wait between attempts.
	MaxWaitSeconds int
}

// SearchSettings configures retrieval.
type SearchSettings struct {
	// DefaultK is the number of passages retrieved when none is requested.
	DefaultK int
}

// IngestSettings configures the ingestion source.
type IngestSettings struct {
	// ExportDir is the root of the archive export.
	ExportDir string

	// RequestsPerSecond paces page fetches.
	RequestsPerSecond float64

	// LinkBaseURL builds citation links for messages without one.
	LinkBaseURL string

	// GitHubToken authenticates the github source. Read from the
	// environment only and never persisted.
	GitHubToken string
}

// AppSettings is the aggregate application configuration.
type AppSettings struct {
	LLM    LLMSettings
	Answer AnswerSettings
	Search SearchSettings
	Ingest IngestSettings
}

// Minimum context budget. Anything smaller cannot hold the elision marker and
// a meaningful excerpt.
const MinContextChars = 64

// DefaultAppSettings returns the settings used before any configuration.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider:       LLMProviderOpenAI,
			TimeoutSeconds: 60,
		},
		Answer: AnswerSettings{
			MaxContextChars: 8000,
			MaxAttempts:     3,
			MaxWaitSeconds:  8,
		},
		Search: SearchSettings{
			DefaultK: 5,
		},
		Ingest: IngestSettings{
			RequestsPerSecond: 2,
		},
	}
}

// Validate checks settings are usable.
func (s AppSettings) Validate() error {
	if s.LLM.Provider != "" && !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: llm provider %q", ErrUnsupportedType, s.LLM.Provider)
	}
	if s.Answer.MaxContextChars < MinContextChars {
		return invalid(fmt.Sprintf("answer.max_context_chars must be at least %d", MinContextChars))
	}
	if s.Answer.MaxAttempts < 1 {
		return invalid("answer.max_attempts must be at least 1")
	}
	if s.Search.DefaultK < 1 {
		return invalid("search.default_k must be at least 1")
	}
	if s.Ingest.RequestsPerSecond < 0 {
		return invalid("ingest.requests_per_second must not be negative")
	}
	return nil
}

// SettingsOverrides are values supplied by the environment.
// Empty fields leave the stored setting untouched.
type SettingsOverrides struct {
	Provider        string
	Model           string
	BaseURL         string
	APIKey          string
	ProviderAPIKeys map[LLMProvider]string
	ExportDir       string
	LinkBaseURL     string
	GitHubToken     string
}
