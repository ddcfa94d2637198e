package driving

import "github.com/DIVT313/forensic-agent/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Set validates and stores a single key.
	Set(key, value string) error

	// Values returns every effective key with its value, defaults included.
	Values() (map[string]string, error)

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ConfigPath returns where settings are persisted.
	ConfigPath() string
}
