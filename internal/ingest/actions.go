// Package ingest implements the CLI action that runs one EPUB through
// the extraction engine and delivers the result to stdout, a file,
// and/or the SQLite store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/lectorlab/bookpipe/internal/common"
	"github.com/lectorlab/bookpipe/models"
	"github.com/lectorlab/bookpipe/pkg/db"
	"github.com/lectorlab/bookpipe/pkg/epub"
	"github.com/lectorlab/bookpipe/pkg/lang"
	"github.com/lectorlab/bookpipe/pkg/storage"
	"github.com/lectorlab/bookpipe/pkg/stream"
	"github.com/lectorlab/bookpipe/pkg/vocab"
)

// topWordCount is how many vocabulary entries the summary reports.
const topWordCount = 25

// Summary is the report emitted after one ingest.
type Summary struct {
	Title          string            `json:"title" yaml:"title"`
	Author         string            `json:"author,omitempty" yaml:"author,omitempty"`
	Language       string            `json:"language,omitempty" yaml:"language,omitempty"`
	ParagraphCount int               `json:"paragraph_count" yaml:"paragraph_count"`
	ChapterCount   int               `json:"chapter_count" yaml:"chapter_count"`
	Chapters       []models.Chapter  `json:"chapters" yaml:"chapters"`
	TopWords       []vocab.WordCount `json:"top_words,omitempty" yaml:"top_words,omitempty"`
}

// Deps carries the collaborators the action uses; tests substitute them.
type Deps struct {
	Files    *storage.Storage
	Detector *lang.Detector
}

func Action(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	deps := Deps{
		Files:    &storage.Storage{},
		Detector: lang.NewDetector(),
	}

	summary, err := Run(c.Context, logger, deps, RunOptions{
		InputPath:     c.String("input"),
		DBPath:        c.String("db"),
		MaxParagraphs: c.Int("max-paragraphs"),
	})
	if err != nil {
		logger.Error("ingest failed", "input", c.String("input"), "error", err)
		os.Exit(2)
	}

	output, err := marshalSummary(summary, c.String("format"))
	if err != nil {
		logger.Error("failed to marshal summary", "error", err)
		os.Exit(2)
	}

	if outPath := c.String("output"); outPath != "" {
		if err := deps.Files.SaveFile(outPath, output); err != nil {
			logger.Error("failed to write output file", "path", outPath, "error", err)
			os.Exit(2)
		}
		logger.Info("summary written", "path", outPath)
		return nil
	}

	fmt.Println(string(output))
	return nil
}

// RunOptions are the ingest parameters independent of CLI plumbing.
type RunOptions struct {
	InputPath     string
	DBPath        string
	MaxParagraphs int
}

// Run performs one full ingest and returns its summary.
func Run(ctx context.Context, logger *slog.Logger, deps Deps, opts RunOptions) (*Summary, error) {
	data, err := deps.Files.ReadFile(opts.InputPath)
	if err != nil {
		return nil, err
	}

	book, err := epub.NewReader(data)
	if err != nil {
		return nil, err
	}
	meta := book.Metadata()
	contentHash := common.ContentHash(data)

	var store *db.DB
	var writer *db.ParagraphWriter
	var bookID int64
	if opts.DBPath != "" {
		store, err = db.Open(opts.DBPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		bookID, err = store.InsertBook(contentHash, meta.Title, strings.Join(meta.Creators, ", "), meta.Language)
		if err != nil {
			return nil, err
		}
		writer, err = store.NewParagraphWriter(bookID)
		if err != nil {
			return nil, err
		}
	}

	// One streaming pass feeds both the in-memory result and, when a
	// store is configured, the incremental paragraph writer.
	result := &models.ExtractResult{}
	sink := func(p models.Paragraph) error {
		result.Paragraphs = append(result.Paragraphs, p)
		if writer != nil {
			return writer.Write(p)
		}
		return nil
	}

	extractor := stream.Extractor{Logger: logger}
	res, err := extractor.StreamExtract(ctx, data, sink, models.ExtractOptions{
		MaxParagraphs: opts.MaxParagraphs,
	})
	if err != nil {
		if writer != nil {
			writer.Abort()
		}
		return nil, err
	}
	result.Chapters = res.Chapters

	language := deps.Detector.BookLanguage(meta.Language, result.Paragraphs)

	if store != nil {
		if err := writer.Commit(); err != nil {
			writer.Abort()
			return nil, err
		}
		if err := store.InsertChapters(bookID, result.Chapters); err != nil {
			return nil, err
		}
		if err := store.UpdateBookCounts(bookID, res.ParagraphCount, len(result.Chapters), language); err != nil {
			return nil, err
		}
		logger.Info("book stored", "book_id", bookID, "db", store.Path())
	}

	counts := vocab.WordFrequency(result.PlainText())
	summary := &Summary{
		Title:          meta.Title,
		Author:         strings.Join(meta.Creators, ", "),
		Language:       language,
		ParagraphCount: res.ParagraphCount,
		ChapterCount:   len(result.Chapters),
		Chapters:       result.Chapters,
		TopWords:       vocab.TopN(counts, topWordCount),
	}

	logger.Info("extraction complete",
		"title", meta.Title,
		"paragraphs", summary.ParagraphCount,
		"chapters", summary.ChapterCount,
		"language", language,
	)
	return summary, nil
}

func marshalSummary(s *Summary, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "yaml":
		return yaml.Marshal(s)
	case "json":
		return json.MarshalIndent(s, "", "  ")
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}
