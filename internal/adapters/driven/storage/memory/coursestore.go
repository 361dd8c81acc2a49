// Package memory provides an in-memory course store. It backs tests and
// throwaway sessions; nothing survives process exit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
	"github.com/minerva-edu/tutor-cli/internal/vectormath"
)

// Ensure CourseStore implements the interface.
var _ driven.CourseStore = (*CourseStore)(nil)

// CourseStore keeps items and chunks in maps guarded by one mutex.
type CourseStore struct {
	mu     sync.RWMutex
	items  map[domain.ContentKey]domain.ContentItem
	chunks map[domain.ContentKey][]domain.Chunk
}

// NewCourseStore creates an empty in-memory store.
func NewCourseStore() *CourseStore {
	return &CourseStore{
		items:  make(map[domain.ContentKey]domain.ContentItem),
		chunks: make(map[domain.ContentKey][]domain.Chunk),
	}
}

// UpsertContent stores item and its chunks, replacing any previous version.
func (s *CourseStore) UpsertContent(_ context.Context, item domain.ContentItem, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]domain.Chunk, len(chunks))
	copy(copied, chunks)
	s.items[item.Key] = item
	s.chunks[item.Key] = copied
	return nil
}

// DeleteContent removes the item under key and all of its chunks.
func (s *CourseStore) DeleteContent(_ context.Context, key domain.ContentKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return fmt.Errorf("content %q: %w", key, domain.ErrNotFound)
	}
	delete(s.items, key)
	delete(s.chunks, key)
	return nil
}

// GetContent returns the item stored under key.
func (s *CourseStore) GetContent(_ context.Context, key domain.ContentKey) (domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[key]
	if !ok {
		return domain.ContentItem{}, fmt.Errorf("content %q: %w", key, domain.ErrNotFound)
	}
	return item, nil
}

// ChunksFor returns the chunks of the item under key, ordered by index.
func (s *CourseStore) ChunksFor(_ context.Context, key domain.ContentKey) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.chunks[key]
	out := make([]domain.Chunk, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// SearchChunks scans all chunks and returns the k closest by cosine distance.
func (s *CourseStore) SearchChunks(_ context.Context, queryEmbedding []float32, k int) ([]driven.ChunkMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []driven.ChunkMatch
	for _, chunks := range s.chunks {
		for _, chunk := range chunks {
			if len(chunk.Embedding) == 0 {
				continue
			}
			similarity, err := vectormath.CosineSimilarity(queryEmbedding, chunk.Embedding)
			if err != nil {
				continue
			}
			matches = append(matches, driven.ChunkMatch{Chunk: chunk, Score: 1 - similarity})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score < matches[j].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// ListContent returns all stored items without bodies.
func (s *CourseStore) ListContent(_ context.Context) ([]domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.ContentItem, 0, len(s.items))
	for _, item := range s.items {
		item.Body = ""
		items = append(items, item)
	}
	return items, nil
}

// Clear removes all items and chunks.
func (s *CourseStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[domain.ContentKey]domain.ContentItem)
	s.chunks = make(map[domain.ContentKey][]domain.Chunk)
	return nil
}

// Stats returns item and chunk counts.
func (s *CourseStore) Stats(_ context.Context) (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.Stats{ContentCount: len(s.items)}
	for _, chunks := range s.chunks {
		stats.ChunkCount += len(chunks)
	}
	return stats, nil
}

// Close is a no-op for the in-memory store.
func (s *CourseStore) Close() error {
	return nil
}
