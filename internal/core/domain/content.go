package domain

import (
	"crypto/md5" //nolint:gosec // Not used for security, only for stable chunk ids.
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// DocType classifies course content.
type DocType string

// Available document types.
const (
	// DocTypeText is written lesson material.
	DocTypeText DocType = "text"

	// DocTypeVideo is a video transcript with an associated video URL.
	DocTypeVideo DocType = "video"
)

// IsValid returns true if the document type is recognised.
func (t DocType) IsValid() bool {
	switch t {
	case DocTypeText, DocTypeVideo:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t DocType) String() string {
	return string(t)
}

// ContentKey is the natural key identifying a content item.
// Two items sharing a chapter string belong to the same chapter group;
// there is no separate chapter entity.
type ContentKey struct {
	// Chapter is the chapter name.
	Chapter string

	// Lesson is the lesson name within the chapter.
	Lesson string

	// Title is the content item title within the lesson.
	Title string
}

// String returns a stable textual form of the key, used for locking and logging.
func (k ContentKey) String() string {
	return k.Chapter + "/" + k.Lesson + "/" + k.Title
}

// Validate checks that all key components are present.
func (k ContentKey) Validate() error {
	if strings.TrimSpace(k.Chapter) == "" {
		return fmt.Errorf("%w: chapter is required", ErrInvalidInput)
	}
	if strings.TrimSpace(k.Lesson) == "" {
		return fmt.Errorf("%w: lesson is required", ErrInvalidInput)
	}
	if strings.TrimSpace(k.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return nil
}

// ContentItem is the unit of authored course material.
// Items are never mutated in place: an update is a delete followed by a
// reinsert under the same natural key.
type ContentItem struct {
	// Key is the natural key (chapter, lesson, title).
	Key ContentKey

	// ChapterOrder is the display sort key for the chapter group.
	ChapterOrder int

	// LessonOrder is the display sort key for the lesson within the chapter.
	LessonOrder int

	// DocType is the content classification (text or video).
	DocType DocType

	// Body is the full text content before chunking.
	Body string

	// ResourceURL is an optional link to the course-platform page.
	ResourceURL string

	// VideoURL is the video location; only meaningful for DocTypeVideo.
	VideoURL string

	// CreatedAt is when the item was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the item was last reinserted.
	UpdatedAt time.Time
}

// Validate checks the item is ingestible: complete key, known doc type
// and a non-empty body. Called before any store mutation.
func (c *ContentItem) Validate() error {
	if err := c.Key.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Body) == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidInput)
	}
	if c.DocType != "" && !c.DocType.IsValid() {
		return fmt.Errorf("%w: unknown doc type %q", ErrInvalidInput, c.DocType)
	}
	return nil
}

// Chunk is a bounded slice of a content item's body, the unit of embedding
// and retrieval. Consecutive chunks of a parent share overlapping text; the
// original body lives on the ContentItem, not in the chunks.
type Chunk struct {
	// ID is the deterministic chunk identifier.
	ID string

	// Key is the parent content item's natural key.
	Key ContentKey

	// Index is the 0-based position within the parent.
	Index int

	// Text is the chunk content.
	Text string

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// chunkIDPrefixLen bounds how much chunk text feeds the id hash.
const chunkIDPrefixLen = 50

// ChunkID derives the stable identifier for a chunk. Re-ingesting identical
// content yields identical ids, which makes upserts idempotent.
func ChunkID(key ContentKey, index int, text string) string {
	prefix := text
	if len(prefix) > chunkIDPrefixLen {
		prefix = prefix[:chunkIDPrefixLen]
	}
	sum := md5.Sum(fmt.Appendf(nil, "%s_%s_%s_%d_%s", key.Chapter, key.Lesson, key.Title, index, prefix)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// LessonContent is one content item within a lesson listing.
type LessonContent struct {
	// Title is the content item title.
	Title string

	// DocType is the content classification.
	DocType DocType

	// Body is the full original text.
	Body string
}

// LessonInfo describes one lesson within a chapter index entry.
type LessonInfo struct {
	// Order is the lesson display sort key.
	Order int

	// DocTypes are the distinct content types present in the lesson.
	DocTypes []DocType
}

// ChapterInfo describes one chapter within the chapter index.
type ChapterInfo struct {
	// Order is the chapter display sort key.
	Order int

	// Lessons maps lesson name to its info.
	Lessons map[string]LessonInfo
}

// ChapterIndex is a derived view of the corpus hierarchy, rebuilt on every
// read by scanning content items. It is never persisted.
type ChapterIndex map[string]ChapterInfo

// Stats reports corpus size. ContentCount and ChunkCount are intentionally
// different numbers: the former counts distinct natural keys, the latter
// counts stored embedding rows.
type Stats struct {
	// ContentCount is the number of ingested content items.
	ContentCount int

	// ChunkCount is the number of stored chunk rows.
	ChunkCount int
}
