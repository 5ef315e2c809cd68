package driving

import "github.com/custodia-labs/archivist/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings: defaults, then stored values, then environment.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the completion provider.
	SetLLMProvider(provider domain.LLMProvider, model, apiKey string) error

	// Validate checks current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
