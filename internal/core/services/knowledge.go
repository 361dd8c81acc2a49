package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driving"
	"github.com/minerva-edu/tutor-cli/internal/logger"
	"github.com/minerva-edu/tutor-cli/internal/splitter"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// Ingestion retry policy for transient embedding failures.
const (
	embedMaxAttempts = 3
	embedBackoffBase = 500 * time.Millisecond
)

// KnowledgeService manages the course knowledge base. Writes to the same
// content key are serialised so a delete-then-reinsert update is never
// interleaved with another writer of that key.
type KnowledgeService struct {
	store     driven.CourseStore
	embedder  driven.EmbeddingService
	splitter  *splitter.Splitter
	keyLocks  sync.Map // domain.ContentKey -> *sync.Mutex
	sleepFunc func(time.Duration)
}

// NewKnowledgeService creates a knowledge service. The embedder may be nil,
// in which case ingestion fails with domain.ErrEmbeddingUnavailable and
// search returns no results.
func NewKnowledgeService(store driven.CourseStore, embedder driven.EmbeddingService, split *splitter.Splitter) *KnowledgeService {
	if split == nil {
		split = splitter.New()
	}
	return &KnowledgeService{
		store:     store,
		embedder:  embedder,
		splitter:  split,
		sleepFunc: time.Sleep,
	}
}

// AddOrUpdate chunks, embeds and stores a content item, replacing any
// previous version stored under the same key.
func (s *KnowledgeService) AddOrUpdate(ctx context.Context, item domain.ContentItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if item.DocType == "" {
		item.DocType = domain.DocTypeText
	}
	if s.embedder == nil {
		return fmt.Errorf("cannot ingest %q: %w", item.Key, domain.ErrEmbeddingUnavailable)
	}

	unlock := s.lockKey(item.Key)
	defer unlock()

	logger.Section("Ingest Content")
	logger.Debug("Key: %s, type: %s, body: %d chars", item.Key, item.DocType, len([]rune(item.Body)))

	texts := s.splitter.Split(item.Body)
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:    domain.ChunkID(item.Key, i, text),
			Key:   item.Key,
			Index: i,
			Text:  text,
		}
	}
	logger.Debug("Split into %d chunks", len(chunks))

	embeddings, err := s.embedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks for %q: %w", item.Key, err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	now := time.Now().UTC()
	item.UpdatedAt = now
	if existing, err := s.store.GetContent(ctx, item.Key); err == nil {
		item.CreatedAt = existing.CreatedAt
	} else {
		item.CreatedAt = now
	}

	if err := s.store.UpsertContent(ctx, item, chunks); err != nil {
		return fmt.Errorf("store %q: %w", item.Key, err)
	}
	logger.Info("Stored %q (%d chunks)", item.Key.String(), len(chunks))
	return nil
}

// Delete removes the item stored under key and all derived chunks.
func (s *KnowledgeService) Delete(ctx context.Context, key domain.ContentKey) error {
	if err := key.Validate(); err != nil {
		return err
	}

	unlock := s.lockKey(key)
	defer unlock()

	if err := s.store.DeleteContent(ctx, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	logger.Info("Deleted %q", key.String())
	return nil
}

// Search embeds the query and returns up to limit results ordered by
// ascending distance. Any provider or store failure is logged and swallowed;
// retrieval degrades to an empty result set rather than surfacing errors to
// the conversational caller.
func (s *KnowledgeService) Search(ctx context.Context, query string, limit int) []domain.SearchResult {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}
	}
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	if s.embedder == nil {
		logger.Warn("No embedding service configured, returning no results")
		return []domain.SearchResult{}
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return []domain.SearchResult{}
	}

	matches, err := s.store.SearchChunks(ctx, queryEmbedding, limit)
	if err != nil {
		logger.Warn("Chunk search failed: %v", err)
		return []domain.SearchResult{}
	}
	logger.Debug("Store returned %d matches", len(matches))

	// Hydrate parent metadata; one lookup per distinct key.
	parents := make(map[domain.ContentKey]domain.ContentItem)
	results := make([]domain.SearchResult, 0, len(matches))
	for _, match := range matches {
		parent, ok := parents[match.Chunk.Key]
		if !ok {
			parent, err = s.store.GetContent(ctx, match.Chunk.Key)
			if err != nil {
				logger.Warn("Skipping orphan chunk %s: %v", match.Chunk.ID, err)
				continue
			}
			parents[match.Chunk.Key] = parent
		}
		results = append(results, domain.SearchResult{
			Content:     match.Chunk.Text,
			Title:       parent.Key.Title,
			ResourceURL: parent.ResourceURL,
			VideoURL:    parent.VideoURL,
			Score:       match.Score,
		})
	}
	return results
}

// ListChapters rebuilds the chapter/lesson index by scanning stored items.
func (s *KnowledgeService) ListChapters(ctx context.Context) (domain.ChapterIndex, error) {
	items, err := s.store.ListContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	index := make(domain.ChapterIndex)
	for _, item := range items {
		chapter, ok := index[item.Key.Chapter]
		if !ok {
			chapter = domain.ChapterInfo{
				Order:   item.ChapterOrder,
				Lessons: make(map[string]domain.LessonInfo),
			}
		}
		if item.ChapterOrder < chapter.Order {
			chapter.Order = item.ChapterOrder
		}

		lesson, ok := chapter.Lessons[item.Key.Lesson]
		if !ok {
			lesson = domain.LessonInfo{Order: item.LessonOrder}
		}
		if item.LessonOrder < lesson.Order {
			lesson.Order = item.LessonOrder
		}
		docType := item.DocType
		if docType == "" {
			docType = domain.DocTypeText
		}
		if !containsDocType(lesson.DocTypes, docType) {
			lesson.DocTypes = append(lesson.DocTypes, docType)
			sort.Slice(lesson.DocTypes, func(i, j int) bool {
				return lesson.DocTypes[i] < lesson.DocTypes[j]
			})
		}
		chapter.Lessons[item.Key.Lesson] = lesson
		index[item.Key.Chapter] = chapter
	}
	return index, nil
}

// GetFullContent returns the original body stored under key. Bodies are
// persisted verbatim at ingestion; chunks carry overlapping text for
// retrieval context and are never stitched back together.
func (s *KnowledgeService) GetFullContent(ctx context.Context, key domain.ContentKey) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}

	item, err := s.store.GetContent(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("content %q: %w", key, domain.ErrNotFound)
		}
		return "", fmt.Errorf("load content %q: %w", key, err)
	}
	return item.Body, nil
}

// GetLessonContent returns every content item stored under
// (chapter, lesson), ordered by title.
func (s *KnowledgeService) GetLessonContent(ctx context.Context, chapter, lesson string) ([]domain.LessonContent, error) {
	if strings.TrimSpace(chapter) == "" {
		return nil, fmt.Errorf("%w: chapter is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(lesson) == "" {
		return nil, fmt.Errorf("%w: lesson is required", domain.ErrInvalidInput)
	}

	items, err := s.store.ListContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	contents := make([]domain.LessonContent, 0, 4)
	for _, item := range items {
		if item.Key.Chapter != chapter || item.Key.Lesson != lesson {
			continue
		}
		body, err := s.GetFullContent(ctx, item.Key)
		if err != nil {
			return nil, err
		}
		docType := item.DocType
		if docType == "" {
			docType = domain.DocTypeText
		}
		contents = append(contents, domain.LessonContent{
			Title:   item.Key.Title,
			DocType: docType,
			Body:    body,
		})
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("lesson %s/%s: %w", chapter, lesson, domain.ErrNotFound)
	}

	sort.Slice(contents, func(i, j int) bool { return contents[i].Title < contents[j].Title })
	return contents, nil
}

// Clear removes everything from the knowledge base.
func (s *KnowledgeService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	logger.Info("Knowledge base cleared")
	return nil
}

// Stats returns content and chunk counts.
func (s *KnowledgeService) Stats(ctx context.Context) (domain.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("read stats: %w", err)
	}
	return stats, nil
}

// embedAll embeds texts in one batch, retrying transient failures with
// exponential backoff. Ingestion is the loud path: errors propagate.
func (s *KnowledgeService) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for attempt := 1; attempt <= embedMaxAttempts; attempt++ {
		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err == nil {
			if len(embeddings) != len(texts) {
				return nil, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(embeddings), len(texts))
			}
			return embeddings, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < embedMaxAttempts {
			backoff := embedBackoffBase * time.Duration(1<<(attempt-1))
			logger.Warn("Embedding attempt %d/%d failed: %v (retrying in %s)", attempt, embedMaxAttempts, err, backoff)
			s.sleepFunc(backoff)
		}
	}
	return nil, lastErr
}

// lockKey acquires the per-key write lock and returns its release func.
func (s *KnowledgeService) lockKey(key domain.ContentKey) func() {
	lock, _ := s.keyLocks.LoadOrStore(key, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func containsDocType(types []domain.DocType, t domain.DocType) bool {
	for _, existing := range types {
		if existing == t {
			return true
		}
	}
	return false
}
