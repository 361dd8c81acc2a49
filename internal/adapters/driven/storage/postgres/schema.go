package postgres

// SchemaSQL is the reference schema for the remote backend. The store never
// runs DDL against a managed database itself; operators apply this once via
// their SQL console or a migration tool.
const SchemaSQL = `-- Requires the pgvector extension.
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS contents (
    chapter        TEXT NOT NULL,
    lesson         TEXT NOT NULL,
    title          TEXT NOT NULL,
    chapter_order  INTEGER NOT NULL DEFAULT 0,
    lesson_order   INTEGER NOT NULL DEFAULT 0,
    doc_type       TEXT NOT NULL DEFAULT 'text',
    body           TEXT NOT NULL DEFAULT '',
    resource_url   TEXT NOT NULL DEFAULT '',
    video_url      TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (chapter, lesson, title)
);

CREATE TABLE IF NOT EXISTS chunks (
    id           TEXT PRIMARY KEY,
    chapter      TEXT NOT NULL,
    lesson       TEXT NOT NULL,
    title        TEXT NOT NULL,
    chunk_index  INTEGER NOT NULL,
    content      TEXT NOT NULL,
    embedding    vector,
    FOREIGN KEY (chapter, lesson, title)
        REFERENCES contents(chapter, lesson, title) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chunks_key ON chunks(chapter, lesson, title);

CREATE TABLE IF NOT EXISTS question_logs (
    id               TEXT PRIMARY KEY,
    question         TEXT NOT NULL,
    answer           TEXT NOT NULL,
    referenced_urls  JSONB NOT NULL DEFAULT '[]',
    asked_at         TIMESTAMPTZ NOT NULL
);

CREATE OR REPLACE FUNCTION match_course_chunks(query_embedding vector, match_count integer)
RETURNS TABLE (
    id          text,
    chapter     text,
    lesson      text,
    title       text,
    chunk_index integer,
    content     text,
    distance    double precision
)
LANGUAGE sql STABLE AS $$
    SELECT c.id, c.chapter, c.lesson, c.title, c.chunk_index, c.content,
           c.embedding <=> query_embedding AS distance
    FROM chunks c
    WHERE c.embedding IS NOT NULL
    ORDER BY c.embedding <=> query_embedding
    LIMIT match_count;
$$;
`
