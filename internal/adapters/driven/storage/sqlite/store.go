// Package sqlite provides the embedded course store backend. Content,
// chunks and question logs live in one database file; similarity search
// scans chunk embeddings in process.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/minerva-edu/tutor-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
	"github.com/minerva-edu/tutor-cli/internal/vectormath"
)

// Ensure Store implements the interfaces.
var (
	_ driven.CourseStore   = (*Store)(nil)
	_ driven.QuestionStore = (*Store)(nil)
)

// dbFileName is the database file created under the data directory.
const dbFileName = "course.db"

// Store is the SQLite-backed course and question store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.tutor/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".tutor", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Course Store ====================

// UpsertContent stores item and its chunks in one transaction, deleting any
// previous version under the same key first.
func (s *Store) UpsertContent(ctx context.Context, item domain.ContentItem, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM contents WHERE chapter = ? AND lesson = ? AND title = ?
	`, item.Key.Chapter, item.Key.Lesson, item.Key.Title); err != nil {
		return fmt.Errorf("deleting previous version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO contents (chapter, lesson, title, chapter_order, lesson_order,
			doc_type, body, resource_url, video_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.Key.Chapter, item.Key.Lesson, item.Key.Title, item.ChapterOrder, item.LessonOrder,
		item.DocType.String(), item.Body, item.ResourceURL, item.VideoURL, item.CreatedAt, item.UpdatedAt); err != nil {
		return fmt.Errorf("saving content: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, chapter, lesson, title, chunk_index, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Key.Chapter, chunk.Key.Lesson,
			chunk.Key.Title, chunk.Index, chunk.Text, embeddingBlob); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteContent removes the item under key; chunks go with it via cascade.
func (s *Store) DeleteContent(ctx context.Context, key domain.ContentKey) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM contents WHERE chapter = ? AND lesson = ? AND title = ?
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
		FROM contents WHERE chapter = ? AND lesson = ? AND title = ?
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
		SELECT id, chapter, lesson, title, chunk_index, content, embedding
		FROM chunks WHERE chapter = ? AND lesson = ? AND title = ?
		ORDER BY chunk_index
	`, key.Chapter, key.Lesson, key.Title)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// SearchChunks scans every stored embedding and returns the k closest
// chunks by cosine distance. Chunks whose dimensions do not match the query
// are skipped; they belong to a different embedding model.
func (s *Store) SearchChunks(ctx context.Context, queryEmbedding []float32, k int) ([]driven.ChunkMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chapter, lesson, title, chunk_index, content, embedding
		FROM chunks WHERE embedding IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var matches []driven.ChunkMatch
	for rows.Next() {
		chunk, err := scanChunkRow(rows)
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
		return nil, fmt.Errorf("iterating chunks: %w", err)
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
		item, err := scanContentRow(rows)
		if err != nil {
			return nil, err
		}
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
	// Cascade covers chunks of known contents; sweep orphans too.
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

// ==================== Question Store ====================

// SaveQuestion appends a question log entry.
func (s *Store) SaveQuestion(ctx context.Context, log domain.QuestionLog) error {
	urlsJSON, err := json.Marshal(log.ReferencedURLs)
	if err != nil {
		return fmt.Errorf("marshalling referenced urls: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO question_logs (id, question, answer, referenced_urls, asked_at)
		VALUES (?, ?, ?, ?, ?)
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
		FROM question_logs ORDER BY asked_at DESC LIMIT ?
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

// ==================== Helpers ====================

// scanContentRow scans one body-less content listing row.
func scanContentRow(rows *sql.Rows) (domain.ContentItem, error) {
	var item domain.ContentItem
	var docType string
	if err := rows.Scan(&item.Key.Chapter, &item.Key.Lesson, &item.Key.Title,
		&item.ChapterOrder, &item.LessonOrder, &docType,
		&item.ResourceURL, &item.VideoURL, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return domain.ContentItem{}, fmt.Errorf("scanning content: %w", err)
	}
	item.DocType = domain.DocType(docType)
	return item, nil
}

func scanChunkRow(rows *sql.Rows) (domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	if err := rows.Scan(&chunk.ID, &chunk.Key.Chapter, &chunk.Key.Lesson,
		&chunk.Key.Title, &chunk.Index, &chunk.Text, &embeddingBlob); err != nil {
		return domain.Chunk{}, fmt.Errorf("scanning chunk: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	return chunk, nil
}

func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for rows.Next() {
		chunk, err := scanChunkRow(rows)
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

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
