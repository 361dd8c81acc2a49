package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driving"
	"github.com/minerva-edu/tutor-cli/internal/logger"
)

// Ensure TransferService implements the interface.
var _ driving.TransferService = (*TransferService)(nil)

// exportFormatVersion is embedded in exports so imports can reject files
// from incompatible future formats.
const exportFormatVersion = 1

// exportFile is the on-disk JSON export layout.
type exportFile struct {
	Version    int          `json:"version"`
	ExportedAt time.Time    `json:"exported_at"`
	Items      []exportItem `json:"items"`
}

// exportItem is one content item in an export. Bodies are the stored
// originals, so an export round-trips through import losslessly.
type exportItem struct {
	Chapter      string `json:"chapter"`
	Lesson       string `json:"lesson"`
	Title        string `json:"title"`
	ChapterOrder int    `json:"chapter_order"`
	LessonOrder  int    `json:"lesson_order"`
	DocType      string `json:"doc_type"`
	Body         string `json:"body"`
	ResourceURL  string `json:"resource_url,omitempty"`
	VideoURL     string `json:"video_url,omitempty"`
}

// TransferService implements corpus export, import and backend migration.
type TransferService struct {
	store     driven.CourseStore
	knowledge driving.KnowledgeService
}

// NewTransferService creates a transfer service. The knowledge service is
// used for import ingestion and body reads; the store is read directly for
// migration so embeddings survive the copy.
func NewTransferService(store driven.CourseStore, knowledge driving.KnowledgeService) *TransferService {
	return &TransferService{store: store, knowledge: knowledge}
}

// Export writes the whole corpus as JSON to w, ordered by chapter, lesson
// and title so exports diff cleanly.
func (s *TransferService) Export(ctx context.Context, w io.Writer) (driving.TransferReport, error) {
	var report driving.TransferReport

	items, err := s.store.ListContent(ctx)
	if err != nil {
		return report, fmt.Errorf("list content: %w", err)
	}
	sortItems(items)

	out := exportFile{
		Version:    exportFormatVersion,
		ExportedAt: time.Now().UTC(),
		Items:      make([]exportItem, 0, len(items)),
	}
	for _, item := range items {
		body, err := s.knowledge.GetFullContent(ctx, item.Key)
		if err != nil {
			logger.Warn("Skipping %q in export: %v", item.Key.String(), err)
			report.Failed = append(report.Failed, item.Key.String())
			continue
		}
		out.Items = append(out.Items, exportItem{
			Chapter:      item.Key.Chapter,
			Lesson:       item.Key.Lesson,
			Title:        item.Key.Title,
			ChapterOrder: item.ChapterOrder,
			LessonOrder:  item.LessonOrder,
			DocType:      item.DocType.String(),
			Body:         body,
			ResourceURL:  item.ResourceURL,
			VideoURL:     item.VideoURL,
		})
		report.Items++
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return report, fmt.Errorf("encode export: %w", err)
	}
	logger.Info("Exported %d items", report.Items)
	return report, nil
}

// Import reads a JSON corpus from r and ingests every item through the
// normal pipeline. Items that fail validation or embedding are skipped and
// reported rather than aborting the whole import.
func (s *TransferService) Import(ctx context.Context, r io.Reader) (driving.TransferReport, error) {
	var report driving.TransferReport

	var in exportFile
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return report, fmt.Errorf("%w: decode import: %v", domain.ErrInvalidInput, err)
	}
	if in.Version > exportFormatVersion {
		return report, fmt.Errorf("%w: unsupported export version %d", domain.ErrInvalidInput, in.Version)
	}

	for _, entry := range in.Items {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		item := domain.ContentItem{
			Key: domain.ContentKey{
				Chapter: entry.Chapter,
				Lesson:  entry.Lesson,
				Title:   entry.Title,
			},
			ChapterOrder: entry.ChapterOrder,
			LessonOrder:  entry.LessonOrder,
			DocType:      domain.DocType(entry.DocType),
			Body:         entry.Body,
			ResourceURL:  entry.ResourceURL,
			VideoURL:     entry.VideoURL,
		}
		if err := s.knowledge.AddOrUpdate(ctx, item); err != nil {
			logger.Warn("Skipping %q in import: %v", item.Key.String(), err)
			report.Failed = append(report.Failed, item.Key.String())
			continue
		}
		report.Items++
	}
	logger.Info("Imported %d items (%d failed)", report.Items, len(report.Failed))
	return report, nil
}

// Migrate copies every item and its stored chunks, embeddings included,
// from the current store into dst. No re-embedding happens, so migration
// works without an embedding provider configured.
func (s *TransferService) Migrate(ctx context.Context, dst driven.CourseStore) (driving.TransferReport, error) {
	var report driving.TransferReport

	items, err := s.store.ListContent(ctx)
	if err != nil {
		return report, fmt.Errorf("list content: %w", err)
	}
	sortItems(items)

	for _, item := range items {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		// Listings omit bodies; fetch the full row so the body crosses too.
		full, err := s.store.GetContent(ctx, item.Key)
		if err != nil {
			logger.Warn("Skipping %q in migration: %v", item.Key.String(), err)
			report.Failed = append(report.Failed, item.Key.String())
			continue
		}
		chunks, err := s.store.ChunksFor(ctx, item.Key)
		if err != nil {
			logger.Warn("Skipping %q in migration: %v", item.Key.String(), err)
			report.Failed = append(report.Failed, item.Key.String())
			continue
		}
		if err := dst.UpsertContent(ctx, full, chunks); err != nil {
			logger.Warn("Failed to migrate %q: %v", item.Key.String(), err)
			report.Failed = append(report.Failed, item.Key.String())
			continue
		}
		report.Items++
		report.Chunks += len(chunks)
	}
	logger.Info("Migrated %d items, %d chunks (%d failed)", report.Items, report.Chunks, len(report.Failed))
	return report, nil
}

// sortItems orders items by chapter order, lesson order, then title.
func sortItems(items []domain.ContentItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ChapterOrder != b.ChapterOrder {
			return a.ChapterOrder < b.ChapterOrder
		}
		if a.Key.Chapter != b.Key.Chapter {
			return a.Key.Chapter < b.Key.Chapter
		}
		if a.LessonOrder != b.LessonOrder {
			return a.LessonOrder < b.LessonOrder
		}
		if a.Key.Lesson != b.Key.Lesson {
			return a.Key.Lesson < b.Key.Lesson
		}
		return a.Key.Title < b.Key.Title
	})
}
