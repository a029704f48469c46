// Package stream drives one extraction pass over an EPUB: spine-order
// traversal, global paragraph numbering, chapter resolution, and
// per-paragraph delivery to a caller-supplied sink.
package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lectorlab/bookpipe/models"
	"github.com/lectorlab/bookpipe/pkg/chapters"
	"github.com/lectorlab/bookpipe/pkg/epub"
	"github.com/lectorlab/bookpipe/pkg/extract"
	"github.com/lectorlab/bookpipe/pkg/navindex"
)

// Sink receives each paragraph as it is produced, in order. The
// orchestrator waits for each invocation to return before emitting the
// next paragraph, so a sink may persist incrementally without buffering
// the whole book. A sink error aborts the extraction.
type Sink func(p models.Paragraph) error

// Result is the streaming extraction summary.
type Result struct {
	ParagraphCount int
	Chapters       []models.Chapter
}

// Extractor runs extractions. The zero value is usable: a nil Logger
// falls back to slog.Default() and a zero Config to the production
// resolver constants.
type Extractor struct {
	Logger *slog.Logger
	Config chapters.Config
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e *Extractor) config() chapters.Config {
	if e.Config == (chapters.Config{}) {
		return chapters.DefaultConfig()
	}
	return e.Config
}

// StreamExtract parses the EPUB in data and emits every paragraph to
// sink (which may be nil). A container that cannot be opened is the only
// fatal input error; a content document that fails to load or parse is
// logged and skipped so one bad file cannot sink the rest of the book.
// ctx is checked between content documents only.
func (e *Extractor) StreamExtract(ctx context.Context, data []byte, sink Sink, opts models.ExtractOptions) (Result, error) {
	book, err := epub.NewReader(data)
	if err != nil {
		return Result{}, err
	}

	log := e.logger()
	idx := navindex.Build(book.NavEntries())
	resolver := chapters.NewResolver(idx, e.config())

	var all []models.Paragraph
	nextID := 1
	truncated := false

	for _, doc := range book.Documents() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		htmlContent, err := doc.HTML()
		if err != nil {
			log.Warn("skipping unreadable content document", "id", doc.ID, "href", doc.Href, "error", err)
			continue
		}

		parsed, err := extract.Parse(htmlContent)
		if err != nil {
			log.Warn("skipping unparseable content document", "id", doc.ID, "href", doc.Href, "error", err)
			continue
		}

		paras := parsed.Paragraphs
		if opts.MaxParagraphs > 0 {
			remaining := opts.MaxParagraphs - len(all)
			if remaining <= 0 {
				truncated = true
				break
			}
			if len(paras) > remaining {
				paras = paras[:remaining]
				truncated = true
			}
		}

		// Resolution sees only the paragraphs that will actually be
		// emitted, keeping every chapter start inside the output range.
		resolver.ResolveDocument(chapters.DocInfo{
			ID:      doc.ID,
			Href:    doc.Href,
			Heading: parsed.Heading,
		}, paras, nextID)

		for _, p := range paras {
			paragraph := models.Paragraph{ID: nextID, Text: p.Text}
			nextID++
			all = append(all, paragraph)
			if sink != nil {
				if err := sink(paragraph); err != nil {
					return Result{}, fmt.Errorf("stream: paragraph sink: %w", err)
				}
			}
		}

		if truncated {
			break
		}
	}

	return Result{
		ParagraphCount: len(all),
		Chapters:       resolver.Finalize(all, truncated),
	}, nil
}

// Extract is the buffered variant, implemented as an accumulating sink
// over StreamExtract so the two paths cannot diverge.
func (e *Extractor) Extract(ctx context.Context, data []byte, opts models.ExtractOptions) (*models.ExtractResult, error) {
	result := &models.ExtractResult{}
	res, err := e.StreamExtract(ctx, data, func(p models.Paragraph) error {
		result.Paragraphs = append(result.Paragraphs, p)
		return nil
	}, opts)
	if err != nil {
		return nil, err
	}
	result.Chapters = res.Chapters
	return result, nil
}
