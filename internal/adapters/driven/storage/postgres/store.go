// Package postgres provides the remote course store backend, backed by a
// managed Postgres with the pgvector extension. Similarity search prefers
// the server-side match_course_chunks function and falls back to pulling a
// bounded candidate set and scoring client-side when the function is absent.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/lib/pq"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
	"github.com/minerva-edu/tutor-cli/internal/logger"
	"github.com/minerva-edu/tutor-cli/internal/vectormath"
)

// Ensure Store implements the interfaces.
var (
	_ driven.CourseStore   = (*Store)(nil)
	_ driven.QuestionStore = (*Store)(nil)
)

// matchFunction is the server-side similarity search entry point.
const matchFunction = "match_course_chunks"

// Store is the Postgres-backed course and question store.
type Store struct {
	db             *sql.DB
	candidateLimit int

	// matchUnavailable is set after the server-side function is first seen
	// missing, so later searches skip straight to the fallback. Searches
	// run concurrently, hence the atomic.
	matchUnavailable atomic.Bool
}

// NewStore connects to Postgres using dsn. The connection string is
// required; construction fails fast rather than deferring the error to the
// first query. candidateLimit caps the fallback candidate set; zero selects
// the default.
func NewStore(dsn string, candidateLimit int) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: postgres connection string is required", domain.ErrStoreUnavailable)
	}
	if candidateLimit <= 0 {
		candidateLimit = domain.DefaultCandidateLimit
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return &Store{db: db, candidateLimit: candidateLimit}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertContent stores item and its chunks in one transaction, deleting any
// previous version under the same key first.
func (s *Store) UpsertContent(ctx context.Context, item domain.ContentItem, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM contents WHERE chapter = $1 AND lesson = $2 AND title = $3
	`, item.Key.Chapter, item.Key.Lesson, item.Key.Title); err != nil {
		return fmt.Errorf("deleting previous version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO contents (chapter, lesson, title, chapter_order, lesson_order,
			doc_type, body, resource_url, video_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, item.Key.Chapter, item.Key.Lesson, item.Key.Title, item.ChapterOrder, item.LessonOrder,
		item.DocType.String(), item.Body, item.ResourceURL, item.VideoURL, item.CreatedAt, item.UpdatedAt); err != nil {
		return fmt.Errorf("saving content: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("chunks",
		"id", "chapter", "lesson", "title", "chunk_index", "content", "embedding"))
	if err != nil {
		return fmt.Errorf("preparing chunk copy: %w", err)
	}

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Key.Chapter, chunk.Key.Lesson,
			chunk.Key.Title, chunk.Index, chunk.Text, vectorLiteral(chunk.Embedding)); err != nil {
			stmt.Close()
			return fmt.Errorf("copying chunk: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flushing chunk copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("closing chunk copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteContent removes the item under key; chunks go with it via cascade.
func (s *Store) DeleteContent(ctx context.Context, key domain.ContentKey) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM contents WHERE chapter = $1 AND lesson = $2 AND title = $3
	`, key.Chapter, key.Lesson, key.Title)
	if err != nil {
		return fmt.Errorf("deleting content: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetContent retrieves the item stored under key, body included.
func (s *Store) GetContent(ctx context.Context, key domain.ContentKey) (domain.ContentItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT chapter, lesson, title, chapter_order, lesson_order,
			doc_type, body, resource_url, video_url, created_at, updated_at
		FROM contents WHERE chapter = $1 AND lesson = $2 AND title = $3
	`, key.Chapter, key.Lesson, key.Title)

	var item domain.ContentItem
	var docType string
	err := row.Scan(&item.Key.Chapter, &item.Key.Lesson, &item.Key.Title,
		&item.ChapterOrder, &item.LessonOrder, &docType, &item.Body,
		&item.ResourceURL, &item.VideoURL, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ContentItem{}, domain.ErrNotFound
		}
		return domain.ContentItem{}, fmt.Errorf("getting content: %w", err)
	}
	item.DocType = domain.DocType(docType)
	return item, nil
}

// ChunksFor returns the chunks of the item under key, ordered by index.
func (s *Store) ChunksFor(ctx context.Context, key domain.ContentKey) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chapter, lesson, title, chunk_index, content, embedding::text
		FROM chunks WHERE chapter = $1 AND lesson = $2 AND title = $3
		ORDER BY chunk_index
	`, key.Chapter, key.Lesson, key.Title)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// SearchChunks returns the k closest chunks by cosine distance. The
// server-side match function does the ranking when present; otherwise a
// bounded candidate set is pulled and scored client-side.
func (s *Store) SearchChunks(ctx context.Context, queryEmbedding []float32, k int) ([]driven.ChunkMatch, error) {
	if !s.matchUnavailable.Load() {
		matches, err := s.searchServerSide(ctx, queryEmbedding, k)
		if err == nil {
			return matches, nil
		}
		if !isUndefinedFunction(err) {
			return nil, err
		}
		s.matchUnavailable.Store(true)
		logger.Warn("Server-side %s missing, falling back to client-side scoring", matchFunction)
	}
	return s.searchClientSide(ctx, queryEmbedding, k)
}

// searchServerSide ranks chunks with the match_course_chunks function.
func (s *Store) searchServerSide(ctx context.Context, queryEmbedding []float32, k int) ([]driven.ChunkMatch, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, chapter, lesson, title, chunk_index, content, distance FROM %s($1::vector, $2)`, matchFunction),
		vectorLiteral(queryEmbedding), k)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", matchFunction, err)
	}
	defer rows.Close()

	var matches []driven.ChunkMatch
	for rows.Next() {
		var match driven.ChunkMatch
		if err := rows.Scan(&match.Chunk.ID, &match.Chunk.Key.Chapter, &match.Chunk.Key.Lesson,
			&match.Chunk.Key.Title, &match.Chunk.Index, &match.Chunk.Text, &match.Score); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return matches, nil
}

// searchClientSide pulls up to candidateLimit chunks and scores them in
// process. The cap keeps the fallback usable on small corpora without
// streaming the whole table.
func (s *Store) searchClientSide(ctx context.Context, queryEmbedding []float32, k int) ([]driven.ChunkMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chapter, lesson, title, chunk_index, content, embedding::text
		FROM chunks WHERE embedding IS NOT NULL
		LIMIT $1
	`, s.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var matches []driven.ChunkMatch
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		distance, err := vectormath.CosineDistance(queryEmbedding, chunk.Embedding)
		if err != nil {
			continue
		}
		matches = append(matches, driven.ChunkMatch{Chunk: chunk, Score: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score < matches[j].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// ListContent returns all stored items without bodies, ordered by chapter
// and lesson order.
func (s *Store) ListContent(ctx context.Context) ([]domain.ContentItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chapter, lesson, title, chapter_order, lesson_order,
			doc_type, resource_url, video_url, created_at, updated_at
		FROM contents
		ORDER BY chapter_order, chapter, lesson_order, lesson, title
	`)
	if err != nil {
		return nil, fmt.Errorf("querying contents: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		var item domain.ContentItem
		var docType string
		if err := rows.Scan(&item.Key.Chapter, &item.Key.Lesson, &item.Key.Title,
			&item.ChapterOrder, &item.LessonOrder, &docType,
			&item.ResourceURL, &item.VideoURL, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning content: %w", err)
		}
		item.DocType = domain.DocType(docType)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contents: %w", err)
	}
	return items, nil
}

// Clear removes all items and chunks. Question logs are kept.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM contents"); err != nil {
		return fmt.Errorf("clearing contents: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	return nil
}

// Stats returns item and chunk counts.
func (s *Store) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contents")
	if err := row.Scan(&stats.ContentCount); err != nil {
		return domain.Stats{}, fmt.Errorf("counting contents: %w", err)
	}
	row = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks")
	if err := row.Scan(&stats.ChunkCount); err != nil {
		return domain.Stats{}, fmt.Errorf("counting chunks: %w", err)
	}
	return stats, nil
}

// SaveQuestion appends a question log entry.
func (s *Store) SaveQuestion(ctx context.Context, log domain.QuestionLog) error {
	urlsJSON, err := json.Marshal(log.ReferencedURLs)
	if err != nil {
		return fmt.Errorf("marshalling referenced urls: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO question_logs (id, question, answer, referenced_urls, asked_at)
		VALUES ($1, $2, $3, $4, $5)
	`, log.ID, log.Question, log.Answer, string(urlsJSON), log.AskedAt); err != nil {
		return fmt.Errorf("saving question log: %w", err)
	}
	return nil
}

// RecentQuestions returns up to limit entries, most recent first.
func (s *Store) RecentQuestions(ctx context.Context, limit int) ([]domain.QuestionLog, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, referenced_urls, asked_at
		FROM question_logs ORDER BY asked_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying question logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.QuestionLog
	for rows.Next() {
		var log domain.QuestionLog
		var urlsJSON string
		if err := rows.Scan(&log.ID, &log.Question, &log.Answer, &urlsJSON, &log.AskedAt); err != nil {
			return nil, fmt.Errorf("scanning question log: %w", err)
		}
		if err := json.Unmarshal([]byte(urlsJSON), &log.ReferencedURLs); err != nil {
			return nil, fmt.Errorf("unmarshalling referenced urls: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating question logs: %w", err)
	}
	return logs, nil
}

// scanChunk scans one chunk row carrying an embedding::text column.
func scanChunk(rows *sql.Rows) (domain.Chunk, error) {
	var chunk domain.Chunk
	var embedding sql.NullString
	if err := rows.Scan(&chunk.ID, &chunk.Key.Chapter, &chunk.Key.Lesson,
		&chunk.Key.Title, &chunk.Index, &chunk.Text, &embedding); err != nil {
		return domain.Chunk{}, fmt.Errorf("scanning chunk: %w", err)
	}
	if embedding.Valid {
		vec, err := parseVectorLiteral(embedding.String)
		if err != nil {
			return domain.Chunk{}, fmt.Errorf("parsing embedding: %w", err)
		}
		chunk.Embedding = vec
	}
	return chunk, nil
}

// isUndefinedFunction reports whether err is Postgres error 42883
// (undefined_function).
func isUndefinedFunction(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42883"
}

// vectorLiteral renders a pgvector input literal, e.g. "[0.1,0.2]".
// Empty input renders as SQL NULL via the nil interface.
func vectorLiteral(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = formatFloat32(f)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// parseVectorLiteral parses a pgvector text literal back into a []float32.
func parseVectorLiteral(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("malformed vector literal %q", truncateForError(s))
	}
	body := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if body == "" {
		return nil, nil
	}

	parts := strings.Split(body, ",")
	vec := make([]float32, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("malformed vector component %q", part)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}

// formatFloat32 renders f exactly, with the shortest round-tripping form.
func formatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// truncateForError bounds literal excerpts embedded in error messages.
func truncateForError(s string) string {
	const max = 32
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
