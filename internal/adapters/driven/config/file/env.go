package file

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure EnvReader implements the interface.
var _ driven.EnvironmentReader = (*EnvReader)(nil)

// EnvPrefix namespaces application variables, e.g. RAG_LLM_PROVIDER.
const EnvPrefix = "RAG"

// appEnv holds the RAG_-prefixed variables.
type appEnv struct {
	LLMProvider string `envconfig:"LLM_PROVIDER"`
	LLMModel    string `envconfig:"LLM_MODEL"`
	LLMBaseURL  string `envconfig:"LLM_BASE_URL"`
	LLMAPIKey   string `envconfig:"LLM_API_KEY"`
	ExportDir   string `envconfig:"EXPORT_DIR"`
	LinkBaseURL string `envconfig:"LINK_BASE_URL"`
}

// providerEnv holds the conventional per-provider key variables.
//
//nolint:gosec // G101: These are variable names, not credentials.
type providerEnv struct {
	OpenAI    string `envconfig:"OPENAI_API_KEY"`
	Groq      string `envconfig:"GROQ_API_KEY"`
	Anthropic string `envconfig:"ANTHROPIC_API_KEY"`
	Gemini    string `envconfig:"GEMINI_API_KEY"`
	GitHub    string `envconfig:"GITHUB_TOKEN"`
}

// EnvReader reads settings overrides from the process environment.
type EnvReader struct{}

// NewEnvReader creates an environment reader. Variables from the given .env
// files are loaded first without replacing variables already set; missing
// files are ignored.
func NewEnvReader(dotenvFiles ...string) (*EnvReader, error) {
	for _, path := range dotenvFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return &EnvReader{}, nil
}

// Overrides returns the settings present in the environment.
func (r *EnvReader) Overrides() (domain.SettingsOverrides, error) {
	var app appEnv
	if err := envconfig.Process(EnvPrefix, &app); err != nil {
		return domain.SettingsOverrides{}, fmt.Errorf("process %s environment: %w", EnvPrefix, err)
	}
	var keys providerEnv
	if err := envconfig.Process("", &keys); err != nil {
		return domain.SettingsOverrides{}, fmt.Errorf("process provider keys: %w", err)
	}

	provKeys := make(map[domain.LLMProvider]string)
	for p, v := range map[domain.LLMProvider]string{
		domain.LLMProviderOpenAI:    keys.OpenAI,
		domain.LLMProviderGroq:      keys.Groq,
		domain.LLMProviderAnthropic: keys.Anthropic,
		domain.LLMProviderGemini:    keys.Gemini,
	} {
		if v != "" {
			provKeys[p] = v
		}
	}

	return domain.SettingsOverrides{
		Provider:        app.LLMProvider,
		Model:           app.LLMModel,
		BaseURL:         app.LLMBaseURL,
		APIKey:          app.LLMAPIKey,
		ProviderAPIKeys: provKeys,
		ExportDir:       app.ExportDir,
		LinkBaseURL:     app.LinkBaseURL,
		GitHubToken:     keys.GitHub,
	}, nil
}
