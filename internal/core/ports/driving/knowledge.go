package driving

import (
	"context"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
)

// KnowledgeService manages the course knowledge base: ingesting content,
// searching it, and browsing its structure.
type KnowledgeService interface {
	// AddOrUpdate chunks, embeds and stores a content item, replacing any
	// previous version stored under the same key.
	AddOrUpdate(ctx context.Context, item domain.ContentItem) error

	// Delete removes the item stored under key and all derived chunks.
	// Returns domain.ErrNotFound if no item exists under key.
	Delete(ctx context.Context, key domain.ContentKey) error

	// Search returns up to limit results relevant to query, best first.
	// Provider or store failures yield an empty result, not an error.
	Search(ctx context.Context, query string, limit int) []domain.SearchResult

	// ListChapters returns the chapter/lesson structure of the stored corpus.
	ListChapters(ctx context.Context) (domain.ChapterIndex, error)

	// GetFullContent returns the original body of the item stored under key.
	GetFullContent(ctx context.Context, key domain.ContentKey) (string, error)

	// GetLessonContent returns every content item stored under
	// (chapter, lesson), ordered by title.
	GetLessonContent(ctx context.Context, chapter, lesson string) ([]domain.LessonContent, error)

	// Clear removes everything from the knowledge base.
	Clear(ctx context.Context) error

	// Stats returns content and chunk counts.
	Stats(ctx context.Context) (domain.Stats, error)
}
