package db

import (
	"database/sql"
	"fmt"

	"github.com/lectorlab/bookpipe/models"
)

// Book is one stored book's summary row.
type Book struct {
	ID             int64
	ContentHash    string
	Title          string
	Author         string
	Language       string
	ParagraphCount int
	ChapterCount   int
}

// InsertBook creates a book row and returns its id. A book with the
// same content hash is replaced, so re-ingesting a file is idempotent.
func (db *DB) InsertBook(contentHash, title, author, language string) (int64, error) {
	if _, err := db.Exec("DELETE FROM books WHERE content_hash = ?", contentHash); err != nil {
		return 0, fmt.Errorf("db: clear previous ingest: %w", err)
	}

	res, err := db.Exec(
		"INSERT INTO books (content_hash, title, author, language) VALUES (?, ?, ?, ?)",
		contentHash, title, author, language,
	)
	if err != nil {
		return 0, fmt.Errorf("db: insert book: %w", err)
	}
	return res.LastInsertId()
}

// GetBookByHash returns the stored book for a content hash, or
// sql.ErrNoRows when the book has not been ingested.
func (db *DB) GetBookByHash(contentHash string) (*Book, error) {
	b := &Book{}
	err := db.QueryRow(
		`SELECT book_id, content_hash, title, author, language, paragraph_count, chapter_count
		 FROM books WHERE content_hash = ?`, contentHash,
	).Scan(&b.ID, &b.ContentHash, &b.Title, &b.Author, &b.Language, &b.ParagraphCount, &b.ChapterCount)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBookCounts records the final paragraph/chapter totals and the
// resolved language after extraction completes.
func (db *DB) UpdateBookCounts(bookID int64, paragraphCount, chapterCount int, language string) error {
	_, err := db.Exec(
		"UPDATE books SET paragraph_count = ?, chapter_count = ?, language = ? WHERE book_id = ?",
		paragraphCount, chapterCount, language, bookID,
	)
	if err != nil {
		return fmt.Errorf("db: update book counts: %w", err)
	}
	return nil
}

// InsertChapters stores the resolved chapter outline.
func (db *DB) InsertChapters(bookID int64, chs []models.Chapter) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("db: begin chapters tx: %w", err)
	}
	stmt, err := tx.Prepare(
		"INSERT INTO chapters (book_id, chapter_index, title, start_paragraph_id) VALUES (?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("db: prepare chapter insert: %w", err)
	}
	defer stmt.Close()

	for _, ch := range chs {
		if _, err := stmt.Exec(bookID, ch.Index, ch.Title, ch.StartParagraphID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("db: insert chapter %d: %w", ch.Index, err)
		}
	}
	return tx.Commit()
}

// GetChapters returns a book's chapters ordered by start paragraph.
func (db *DB) GetChapters(bookID int64) ([]models.Chapter, error) {
	rows, err := db.Query(
		`SELECT chapter_index, title, start_paragraph_id FROM chapters
		 WHERE book_id = ? ORDER BY start_paragraph_id`, bookID)
	if err != nil {
		return nil, fmt.Errorf("db: query chapters: %w", err)
	}
	defer rows.Close()

	var chs []models.Chapter
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(&ch.Index, &ch.Title, &ch.StartParagraphID); err != nil {
			return nil, fmt.Errorf("db: scan chapter: %w", err)
		}
		chs = append(chs, ch)
	}
	return chs, rows.Err()
}

// GetParagraphs returns a book's paragraphs in id order, optionally
// bounded to [firstID, lastID] when lastID > 0.
func (db *DB) GetParagraphs(bookID int64, firstID, lastID int) ([]models.Paragraph, error) {
	query := "SELECT paragraph_id, text FROM paragraphs WHERE book_id = ? AND paragraph_id >= ?"
	args := []any{bookID, firstID}
	if lastID > 0 {
		query += " AND paragraph_id <= ?"
		args = append(args, lastID)
	}
	query += " ORDER BY paragraph_id"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("db: query paragraphs: %w", err)
	}
	defer rows.Close()

	var paras []models.Paragraph
	for rows.Next() {
		var p models.Paragraph
		if err := rows.Scan(&p.ID, &p.Text); err != nil {
			return nil, fmt.Errorf("db: scan paragraph: %w", err)
		}
		paras = append(paras, p)
	}
	return paras, rows.Err()
}

// ParagraphWriter is a streaming paragraph sink backed by one insert
// transaction. Pass Write to the orchestrator as its sink; call Commit
// after a successful extraction or Abort on failure.
type ParagraphWriter struct {
	tx     *sql.Tx
	stmt   *sql.Stmt
	bookID int64
}

// NewParagraphWriter starts a paragraph insert transaction for a book.
func (db *DB) NewParagraphWriter(bookID int64) (*ParagraphWriter, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("db: begin paragraphs tx: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO paragraphs (book_id, paragraph_id, text) VALUES (?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("db: prepare paragraph insert: %w", err)
	}
	return &ParagraphWriter{tx: tx, stmt: stmt, bookID: bookID}, nil
}

// Write stores one paragraph. It matches the orchestrator's sink shape.
func (w *ParagraphWriter) Write(p models.Paragraph) error {
	_, err := w.stmt.Exec(w.bookID, p.ID, p.Text)
	return err
}

// Commit finalizes the transaction.
func (w *ParagraphWriter) Commit() error {
	_ = w.stmt.Close()
	return w.tx.Commit()
}

// Abort rolls the transaction back; safe to call after Commit fails.
func (w *ParagraphWriter) Abort() {
	_ = w.stmt.Close()
	_ = w.tx.Rollback()
}
