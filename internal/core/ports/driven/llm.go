package driven

import "context"

// LLMService generates text from a prompt.
type LLMService interface {
	// Complete generates a response to userPrompt under the behaviour set by
	// systemPrompt.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the model identifier.
	ModelName() string

	// Ping verifies the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the service.
	Close() error
}
