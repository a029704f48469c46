// Package models defines the value types exchanged between the
// extraction stages and their consumers.
package models

import "strings"

// Paragraph is one normalized text block of a book. IDs are 1-based and
// globally sequential in spine traversal order; a paragraph is never
// re-numbered once emitted.
type Paragraph struct {
	ID   int    `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Chapter marks a chapter boundary in the extracted paragraph sequence.
// Index is assigned 0..N-1 after the final sort by StartParagraphID.
type Chapter struct {
	Index            int    `json:"index" yaml:"index"`
	Title            string `json:"title" yaml:"title"`
	StartParagraphID int    `json:"start_paragraph_id" yaml:"start_paragraph_id"`
}

// NavEntry is one entry of the book's logical table of contents, in
// original document order. Href is "file#fragment" relative to the
// archive root; ID and Href may be empty depending on the authoring tool.
type NavEntry struct {
	ID    string
	Title string
	Href  string
}

// ExtractResult is the buffered extraction output.
type ExtractResult struct {
	Paragraphs []Paragraph `json:"paragraphs" yaml:"paragraphs"`
	Chapters   []Chapter   `json:"chapters" yaml:"chapters"`
}

// PlainText concatenates all paragraph texts, one per line. Used for
// language detection and vocabulary analysis over the whole book.
func (r *ExtractResult) PlainText() string {
	var sb strings.Builder
	for _, p := range r.Paragraphs {
		sb.WriteString(p.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
