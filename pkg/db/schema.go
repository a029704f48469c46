package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Books: one row per ingested EPUB, keyed by content hash for
-- idempotent re-ingest
CREATE TABLE IF NOT EXISTS books (
    book_id INTEGER PRIMARY KEY AUTOINCREMENT,
    content_hash TEXT NOT NULL UNIQUE,
    title TEXT,
    author TEXT,
    language TEXT,
    paragraph_count INTEGER DEFAULT 0,
    chapter_count INTEGER DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_books_hash ON books(content_hash);
CREATE INDEX IF NOT EXISTS idx_books_language ON books(language);

-- Paragraphs: the extracted text blocks, ids dense and 1-based per book
CREATE TABLE IF NOT EXISTS paragraphs (
    book_id INTEGER NOT NULL,
    paragraph_id INTEGER NOT NULL,
    text TEXT NOT NULL,
    PRIMARY KEY (book_id, paragraph_id),
    FOREIGN KEY (book_id) REFERENCES books(book_id) ON DELETE CASCADE
);

-- Chapters: the resolved outline, ordered by start paragraph
CREATE TABLE IF NOT EXISTS chapters (
    book_id INTEGER NOT NULL,
    chapter_index INTEGER NOT NULL,
    title TEXT NOT NULL,
    start_paragraph_id INTEGER NOT NULL,
    PRIMARY KEY (book_id, chapter_index),
    FOREIGN KEY (book_id) REFERENCES books(book_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chapters_start ON chapters(book_id, start_paragraph_id);
`
