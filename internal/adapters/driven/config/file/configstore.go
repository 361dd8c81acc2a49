// Package file provides the TOML-backed settings store.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// configFileName is the settings file created under the config directory.
const configFileName = "config.toml"

// tomlSettings is the on-disk layout of AppSettings.
type tomlSettings struct {
	Storage struct {
		Backend        string `toml:"backend"`
		DataDir        string `toml:"data_dir,omitempty"`
		PostgresDSN    string `toml:"postgres_dsn,omitempty"`
		CandidateLimit int    `toml:"candidate_limit,omitempty"`
	} `toml:"storage"`
	Embedding struct {
		Provider          string  `toml:"provider,omitempty"`
		Model             string  `toml:"model,omitempty"`
		BaseURL           string  `toml:"base_url,omitempty"`
		APIKey            string  `toml:"api_key,omitempty"`
		RequestsPerSecond float64 `toml:"requests_per_second,omitempty"`
	} `toml:"embedding"`
	LLM struct {
		Provider string `toml:"provider,omitempty"`
		Model    string `toml:"model,omitempty"`
		BaseURL  string `toml:"base_url,omitempty"`
		APIKey   string `toml:"api_key,omitempty"`
	} `toml:"llm"`
}

// ConfigStore persists application settings as TOML in the tutor config
// directory.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
}

// NewConfigStore creates a TOML-based config store.
// If configDir is empty, defaults to ~/.tutor.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".tutor")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, configFileName),
	}, nil
}

// Load reads settings, returning defaults if no file exists yet.
func (s *ConfigStore) Load() (domain.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return domain.DefaultAppSettings(), nil
	}
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("reading config: %w", err)
	}

	var raw tomlSettings
	if err := toml.Unmarshal(data, &raw); err != nil {
		return domain.AppSettings{}, fmt.Errorf("parsing config: %w", err)
	}

	settings := domain.AppSettings{
		Storage: domain.StorageSettings{
			Backend:        domain.StorageBackend(raw.Storage.Backend),
			DataDir:        raw.Storage.DataDir,
			PostgresDSN:    raw.Storage.PostgresDSN,
			CandidateLimit: raw.Storage.CandidateLimit,
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          domain.AIProvider(raw.Embedding.Provider),
			Model:             raw.Embedding.Model,
			BaseURL:           raw.Embedding.BaseURL,
			APIKey:            raw.Embedding.APIKey,
			RequestsPerSecond: raw.Embedding.RequestsPerSecond,
		},
		LLM: domain.LLMSettings{
			Provider: domain.AIProvider(raw.LLM.Provider),
			Model:    raw.LLM.Model,
			BaseURL:  raw.LLM.BaseURL,
			APIKey:   raw.LLM.APIKey,
		},
	}
	if settings.Storage.Backend == "" {
		settings.Storage.Backend = domain.StorageBackendSQLite
	}
	if settings.Storage.CandidateLimit <= 0 {
		settings.Storage.CandidateLimit = domain.DefaultCandidateLimit
	}
	return settings, nil
}

// Save writes settings atomically: full marshal to a temp file, then rename.
func (s *ConfigStore) Save(settings domain.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw tomlSettings
	raw.Storage.Backend = settings.Storage.Backend.String()
	raw.Storage.DataDir = settings.Storage.DataDir
	raw.Storage.PostgresDSN = settings.Storage.PostgresDSN
	raw.Storage.CandidateLimit = settings.Storage.CandidateLimit
	raw.Embedding.Provider = settings.Embedding.Provider.String()
	raw.Embedding.Model = settings.Embedding.Model
	raw.Embedding.BaseURL = settings.Embedding.BaseURL
	raw.Embedding.APIKey = settings.Embedding.APIKey
	raw.Embedding.RequestsPerSecond = settings.Embedding.RequestsPerSecond
	raw.LLM.Provider = settings.LLM.Provider.String()
	raw.LLM.Model = settings.LLM.Model
	raw.LLM.BaseURL = settings.LLM.BaseURL
	raw.LLM.APIKey = settings.LLM.APIKey

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmpPath, s.filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// Path returns the config file location.
func (s *ConfigStore) Path() string {
	return s.filePath
}
