// Command tutor manages a course knowledge base and answers questions
// grounded in it. This package wires the adapters to the core services and
// hands control to the CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/minerva-edu/tutor-cli/internal/adapters/driven/ai"
	"github.com/minerva-edu/tutor-cli/internal/adapters/driven/config/file"
	"github.com/minerva-edu/tutor-cli/internal/adapters/driven/storage/postgres"
	"github.com/minerva-edu/tutor-cli/internal/adapters/driven/storage/sqlite"
	"github.com/minerva-edu/tutor-cli/internal/adapters/driving/cli"
	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
	"github.com/minerva-edu/tutor-cli/internal/core/services"
	"github.com/minerva-edu/tutor-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// courseStore is satisfied by both storage backends, which persist the
// question log next to the chunks.
type courseStore interface {
	driven.CourseStore
	driven.QuestionStore
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	store, err := openStore(settings.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("Failed to close store: %v", closeErr)
		}
	}()

	// AI providers are optional at startup. Commands that need them fail
	// with a pointer to 'tutor config' instead.
	embedder, err := ai.CreateEmbeddingService(settings.Embedding)
	if err != nil {
		logger.Warn("Embedding provider unavailable: %v", err)
	}
	if embedder != nil {
		defer embedder.Close()
	}

	llm, err := ai.CreateLLMService(settings.LLM)
	if err != nil {
		logger.Warn("LLM provider unavailable: %v", err)
	}
	if llm != nil {
		defer llm.Close()
	}

	knowledgeService := services.NewKnowledgeService(store, embedder, nil)
	askService := services.NewAskService(knowledgeService, llm, store)
	transferService := services.NewTransferService(store, knowledgeService)

	cli.SetKnowledgeService(knowledgeService)
	cli.SetAskService(askService)
	cli.SetTransferService(transferService)
	cli.SetSettingsService(settingsService)
	cli.SetQuestionStore(store)
	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.ExecuteContext(ctx)
}

// openStore opens the configured storage backend.
func openStore(settings domain.StorageSettings) (courseStore, error) {
	switch settings.Backend {
	case domain.StorageBackendPostgres:
		store, err := postgres.NewStore(settings.PostgresDSN, settings.CandidateLimit)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil

	case domain.StorageBackendSQLite, "":
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}
