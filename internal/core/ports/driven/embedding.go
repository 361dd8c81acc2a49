package driven

import "context"

// EmbeddingService generates vector embeddings for text.
type EmbeddingService interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for multiple texts.
	// The result has one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimensions this service produces.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Ping verifies the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the service.
	Close() error
}
