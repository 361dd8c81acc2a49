package driving

import "github.com/minerva-edu/tutor-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (domain.AppSettings, error)

	// Save persists application settings.
	Save(settings domain.AppSettings) error

	// SetStorageBackend selects the course store backend.
	SetStorageBackend(backend domain.StorageBackend, postgresDSN string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the text-generation provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks that current settings can open a store and reach the
	// configured providers' prerequisites.
	Validate() error

	// Path returns where settings are stored, for display.
	Path() string
}
