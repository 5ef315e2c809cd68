package driven

// ConfigStore holds persisted settings under dot-separated keys such as
// "llm.provider". Typed getters return the zero value for missing keys
// and for values of another type.
type ConfigStore interface {
	// Get returns the raw value and whether the key exists.
	Get(key string) (any, bool)

	GetString(key string) string

	GetInt(key string) int

	// GetFloat widens integers, since hand-edited files may hold them.
	GetFloat(key string) float64

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save writes the current values to storage.
	Save() error

	// Load replaces the current values with those in storage.
	Load() error

	// Path locates the backing file, for display.
	Path() string
}
