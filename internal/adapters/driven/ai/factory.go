// Package ai provides factory functions for creating AI service adapters
// from application settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/minerva-edu/tutor-cli/internal/adapters/driven/embedding"
	ollamaembed "github.com/minerva-edu/tutor-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/minerva-edu/tutor-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/minerva-edu/tutor-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/minerva-edu/tutor-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/minerva-edu/tutor-cli/internal/adapters/driven/llm/openai"
	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service selected by settings.
// Returns nil without error when no provider is configured.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	var svc driven.EmbeddingService
	switch settings.Provider {
	case domain.AIProviderOllama:
		dims := domain.EmbeddingDimensions()[settings.Model]
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		})
	case domain.AIProviderOpenAI:
		var err error
		svc, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: provider %q does not offer embeddings",
			domain.ErrEmbeddingUnavailable, settings.Provider)
	}

	return embedding.NewRateLimited(svc, settings.RequestsPerSecond), nil
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity. Returns nil without error when no provider is
// configured.
func CreateAndValidateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%v). Run 'tutor config' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateLLMService creates the text-generation service selected by settings.
// Returns nil without error when no provider is configured.
func CreateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil
	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrLLMUnavailable, settings.Provider)
	}
}

// CreateAndValidateLLMService creates an LLM service and validates
// connectivity. Returns nil without error when no provider is configured.
func CreateAndValidateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%v). Run 'tutor config' to fix",
			domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}
