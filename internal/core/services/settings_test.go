package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
)

// memConfigStore is an in-memory config store for tests.
type memConfigStore struct {
	settings domain.AppSettings
	saved    bool
}

func (m *memConfigStore) Load() (domain.AppSettings, error) {
	if !m.saved {
		return domain.DefaultAppSettings(), nil
	}
	return m.settings, nil
}

func (m *memConfigStore) Save(settings domain.AppSettings) error {
	m.settings = settings
	m.saved = true
	return nil
}

func (m *memConfigStore) Path() string { return "/tmp/config.toml" }

func TestSettings_GetDefaults(t *testing.T) {
	svc := NewSettingsService(&memConfigStore{})

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StorageBackendSQLite, settings.Storage.Backend)
	assert.Equal(t, domain.DefaultCandidateLimit, settings.Storage.CandidateLimit)
}

func TestSettings_SetStorageBackend(t *testing.T) {
	store := &memConfigStore{}
	svc := NewSettingsService(store)

	require.NoError(t, svc.SetStorageBackend(domain.StorageBackendPostgres, "postgres://db/course"))
	assert.Equal(t, domain.StorageBackendPostgres, store.settings.Storage.Backend)
	assert.Equal(t, "postgres://db/course", store.settings.Storage.PostgresDSN)

	t.Run("postgres requires dsn", func(t *testing.T) {
		fresh := NewSettingsService(&memConfigStore{})
		err := fresh.SetStorageBackend(domain.StorageBackendPostgres, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown backend rejected", func(t *testing.T) {
		err := svc.SetStorageBackend("redis", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSettings_SetEmbeddingProvider(t *testing.T) {
	store := &memConfigStore{}
	svc := NewSettingsService(store)

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
	assert.Equal(t, "nomic-embed-text", store.settings.Embedding.Model)

	t.Run("cloud provider requires key", func(t *testing.T) {
		err := svc.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("anthropic has no embedding default", func(t *testing.T) {
		err := svc.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "sk-key")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSettings_SetLLMProvider(t *testing.T) {
	store := &memConfigStore{}
	svc := NewSettingsService(store)

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderAnthropic, "", "sk-ant"))
	assert.Equal(t, "claude-3-5-sonnet-latest", store.settings.LLM.Model)

	err := svc.SetLLMProvider(domain.AIProviderOpenAI, "gpt-4o", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettings_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		svc := NewSettingsService(&memConfigStore{})
		assert.NoError(t, svc.Validate())
	})

	t.Run("postgres without dsn is invalid", func(t *testing.T) {
		store := &memConfigStore{saved: true}
		store.settings = domain.DefaultAppSettings()
		store.settings.Storage.Backend = domain.StorageBackendPostgres
		svc := NewSettingsService(store)

		assert.ErrorIs(t, svc.Validate(), domain.ErrStoreUnavailable)
	})

	t.Run("cloud embedding without key is invalid", func(t *testing.T) {
		store := &memConfigStore{saved: true}
		store.settings = domain.DefaultAppSettings()
		store.settings.Embedding.Provider = domain.AIProviderOpenAI
		svc := NewSettingsService(store)

		assert.ErrorIs(t, svc.Validate(), domain.ErrEmbeddingUnavailable)
	})
}
