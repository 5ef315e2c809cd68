package services

import (
	"fmt"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMTimeout        = "llm.timeout_seconds"
	keyAnswerMaxChars    = "answer.max_context_chars"
	keyAnswerMaxAttempts = "answer.max_attempts"
	keyAnswerMaxWait     = "answer.max_wait_seconds"
	keySearchDefaultK    = "search.default_k"
	keyIngestExportDir   = "ingest.export_dir"
	keyIngestRPS         = "ingest.requests_per_second"
	keyIngestLinkBase    = "ingest.link_base_url"
)

// SettingsService manages application settings.
// Values resolve in order: defaults, the config file, then the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	env         driven.EnvironmentReader
}

// NewSettingsService creates a new settings service.
// env may be nil, in which case no environment overrides apply.
func NewSettingsService(configStore driven.ConfigStore, env driven.EnvironmentReader) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		env:         env,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:       s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:          s.configStore.GetString(keyLLMModel),
			BaseURL:        s.configStore.GetString(keyLLMBaseURL), // Empty is valid for cloud providers
			APIKey:         s.configStore.GetString(keyLLMAPIKey),
			TimeoutSeconds: s.getInt(keyLLMTimeout, defaults.LLM.TimeoutSeconds),
		},
		Answer: domain.AnswerSettings{
			MaxContextChars: s.getInt(keyAnswerMaxChars, defaults.Answer.MaxContextChars),
			MaxAttempts:     s.getInt(keyAnswerMaxAttempts, defaults.Answer.MaxAttempts),
			MaxWaitSeconds:  s.getInt(keyAnswerMaxWait, defaults.Answer.MaxWaitSeconds),
		},
		Search: domain.SearchSettings{
			DefaultK: s.getInt(keySearchDefaultK, defaults.Search.DefaultK),
		},
		Ingest: domain.IngestSettings{
			ExportDir:         s.configStore.GetString(keyIngestExportDir),
			RequestsPerSecond: s.getFloat(keyIngestRPS, defaults.Ingest.RequestsPerSecond),
			LinkBaseURL:       s.configStore.GetString(keyIngestLinkBase),
		},
	}

	if err := s.applyEnvironment(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *SettingsService) applyEnvironment(settings *domain.AppSettings) error {
	if s.env == nil {
		return nil
	}
	o, err := s.env.Overrides()
	if err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	if o.Provider != "" {
		p := domain.LLMProvider(o.Provider)
		if !p.IsValid() {
			return fmt.Errorf("%w: llm provider %q", domain.ErrUnsupportedType, o.Provider)
		}
		if p != settings.LLM.Provider {
			// Stored credentials belong to the stored provider.
			settings.LLM.APIKey = ""
			settings.LLM.Model = ""
			settings.LLM.BaseURL = ""
		}
		settings.LLM.Provider = p
	}
	if o.Model != "" {
		settings.LLM.Model = o.Model
	}
	if o.BaseURL != "" {
		settings.LLM.BaseURL = o.BaseURL
	}
	if o.APIKey != "" {
		settings.LLM.APIKey = o.APIKey
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = o.ProviderAPIKeys[settings.LLM.Provider]
	}
	if o.ExportDir != "" {
		settings.Ingest.ExportDir = o.ExportDir
	}
	if o.LinkBaseURL != "" {
		settings.Ingest.LinkBaseURL = o.LinkBaseURL
	}
	if o.GitHubToken != "" {
		settings.Ingest.GitHubToken = o.GitHubToken
	}
	return nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTimeout, settings.LLM.TimeoutSeconds},
		{keyAnswerMaxChars, settings.Answer.MaxContextChars},
		{keyAnswerMaxAttempts, settings.Answer.MaxAttempts},
		{keyAnswerMaxWait, settings.Answer.MaxWaitSeconds},
		{keySearchDefaultK, settings.Search.DefaultK},
		{keyIngestExportDir, settings.Ingest.ExportDir},
		{keyIngestRPS, settings.Ingest.RequestsPerSecond},
		{keyIngestLinkBase, settings.Ingest.LinkBaseURL},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	logger.Debug("Settings saved to %s", s.configStore.Path())
	return nil
}

// SetLLMProvider configures the completion provider.
func (s *SettingsService) SetLLMProvider(provider domain.LLMProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: llm provider %q", domain.ErrUnsupportedType, provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	settings.LLM.APIKey = apiKey

	// Local providers need a base URL; cloud providers use their default endpoint.
	if provider == domain.LLMProviderOllama {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	return s.Save(settings)
}

// Validate checks current settings, including that the completion provider
// is usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: llm provider %q is not configured", domain.ErrCompletionUnavailable, settings.LLM.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.LLMProvider) domain.LLMProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.LLMProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
