package driving

import "github.com/custodia-labs/sercha-sections/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings, filling unset values with defaults.
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// Validate checks the stored settings can build a working pipeline.
	Validate() error
}
