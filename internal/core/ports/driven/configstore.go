package driven

import "github.com/minerva-edu/tutor-cli/internal/core/domain"

// ConfigStore loads and saves application settings.
type ConfigStore interface {
	// Load reads settings, returning defaults if none are saved yet.
	Load() (domain.AppSettings, error)

	// Save writes settings.
	Save(settings domain.AppSettings) error

	// Path returns the location settings are stored at, for display.
	Path() string
}
