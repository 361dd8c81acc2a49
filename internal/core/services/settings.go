package services

import (
	"fmt"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService manages application settings on top of the config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (domain.AppSettings, error) {
	settings, err := s.configStore.Load()
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("load settings: %w", err)
	}
	if settings.Storage.Backend == "" {
		settings.Storage.Backend = domain.StorageBackendSQLite
	}
	if settings.Storage.CandidateLimit <= 0 {
		settings.Storage.CandidateLimit = domain.DefaultCandidateLimit
	}
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings domain.AppSettings) error {
	if err := s.configStore.Save(settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetStorageBackend selects the course store backend.
func (s *SettingsService) SetStorageBackend(backend domain.StorageBackend, postgresDSN string) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, backend)
	}
	if backend == domain.StorageBackendPostgres && postgresDSN == "" {
		return fmt.Errorf("%w: postgres backend requires a connection string", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Storage.Backend = backend
	if postgresDSN != "" {
		settings.Storage.PostgresDSN = postgresDSN
	}
	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider. An empty model
// selects the provider default.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: provider %s requires an API key", domain.ErrInvalidInput, provider)
	}
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}
	if model == "" {
		return fmt.Errorf("%w: provider %s has no default embedding model, specify one", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	settings.Embedding.APIKey = apiKey
	return s.Save(settings)
}

// SetLLMProvider configures the text-generation provider. An empty model
// selects the provider default.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: provider %s requires an API key", domain.ErrInvalidInput, provider)
	}
	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.LLM.Provider = provider
	settings.LLM.Model = model
	settings.LLM.APIKey = apiKey
	return s.Save(settings)
}

// Validate checks that current settings can open a store and that configured
// providers have their prerequisites.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if !settings.Storage.IsConfigured() {
		return fmt.Errorf("%w: storage backend %q is not configured", domain.ErrStoreUnavailable, settings.Storage.Backend)
	}
	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is missing configuration", domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: llm provider %q is missing configuration", domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	return nil
}

// Path returns where settings are stored.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}
