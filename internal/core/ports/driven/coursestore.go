package driven

import (
	"context"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
)

// ChunkMatch is a chunk returned from a similarity search, paired with its
// distance score. Lower scores are more similar.
type ChunkMatch struct {
	// Chunk is the matched chunk with its source key and text.
	Chunk domain.Chunk

	// Score is the cosine distance (1 - similarity) to the query vector.
	Score float64
}

// CourseStore persists content items and their chunk embeddings, and answers
// similarity queries over the chunks. Implementations must keep the two in
// step: replacing an item replaces all of its chunks atomically from the
// caller's point of view.
type CourseStore interface {
	// UpsertContent stores item and its chunks, replacing any previous
	// version stored under the same key. Chunks must carry embeddings.
	UpsertContent(ctx context.Context, item domain.ContentItem, chunks []domain.Chunk) error

	// DeleteContent removes the item stored under key and all of its chunks.
	// Returns domain.ErrNotFound if no item exists under key.
	DeleteContent(ctx context.Context, key domain.ContentKey) error

	// GetContent returns the item stored under key, body included.
	// Returns domain.ErrNotFound if no item exists under key.
	GetContent(ctx context.Context, key domain.ContentKey) (domain.ContentItem, error)

	// ChunksFor returns the chunks of the item stored under key, ordered by
	// chunk index, embeddings included.
	ChunksFor(ctx context.Context, key domain.ContentKey) ([]domain.Chunk, error)

	// SearchChunks returns the k chunks closest to queryEmbedding, ordered
	// by ascending score.
	SearchChunks(ctx context.Context, queryEmbedding []float32, k int) ([]ChunkMatch, error)

	// ListContent returns all stored items without bodies, for building the
	// chapter index and for export.
	ListContent(ctx context.Context) ([]domain.ContentItem, error)

	// Clear removes all items and chunks.
	Clear(ctx context.Context) error

	// Stats returns item and chunk counts.
	Stats(ctx context.Context) (domain.Stats, error)

	// Close releases store resources.
	Close() error
}
