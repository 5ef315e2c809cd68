package driven

import "github.com/custodia-labs/archivist/internal/core/domain"

// EnvironmentReader reads settings overrides from the process environment.
type EnvironmentReader interface {
	// Overrides returns the values set in the environment.
	Overrides() (domain.SettingsOverrides, error)
}
