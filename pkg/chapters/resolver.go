package chapters

import (
	"sort"

	"github.com/lectorlab/bookpipe/models"
	"github.com/lectorlab/bookpipe/pkg/extract"
	"github.com/lectorlab/bookpipe/pkg/navindex"
	"github.com/lectorlab/bookpipe/pkg/textnorm"
)

// DefaultChapterTitle names the synthetic chapter emitted when no
// resolution strategy produced anything for a book that has content.
const DefaultChapterTitle = "Full book"

// DocInfo carries the per-document signals the resolver consults.
type DocInfo struct {
	ID      string
	Href    string
	Heading string
}

// Resolver accumulates chapter boundaries over one extraction pass.
// All state is per-call; concurrent extractions use separate resolvers.
type Resolver struct {
	idx *navindex.Index
	cfg Config

	seenTitles map[string]bool
	chapters   []models.Chapter
}

// NewResolver creates a resolver over a book's navigation index.
func NewResolver(idx *navindex.Index, cfg Config) *Resolver {
	return &Resolver{
		idx:        idx,
		cfg:        cfg,
		seenTitles: make(map[string]bool),
	}
}

// claimTitle reserves a logical title, folded for comparison. The first
// occurrence wins; later occurrences of the same title are suppressed.
func (r *Resolver) claimTitle(title string) bool {
	key := textnorm.Fold(title)
	if key == "" || r.seenTitles[key] {
		return false
	}
	r.seenTitles[key] = true
	return true
}

// ResolveDocument records chapter boundaries for one content document.
// Anchor matches are tried for every paragraph; only when the document
// yields no anchor-based chapter do the document-level signals (nav id,
// whole-file nav entry, extracted heading) get a chance, in that order.
// firstParagraphID is the global id assigned to paras[0].
func (r *Resolver) ResolveDocument(doc DocInfo, paras []extract.Paragraph, firstParagraphID int) {
	if len(paras) == 0 {
		return
	}

	matched := false
	for i, p := range paras {
		for _, anchor := range p.Anchors {
			title, ok := r.idx.TitleForAnchor(doc.Href, anchor)
			if !ok || !r.claimTitle(title) {
				continue
			}
			r.chapters = append(r.chapters, models.Chapter{
				Title:            title,
				StartParagraphID: firstParagraphID + i,
			})
			matched = true
		}
	}
	if matched {
		return
	}

	for _, resolve := range []func(DocInfo) (string, bool){
		r.titleByDocID,
		r.titleByFile,
		r.titleByHeading,
	} {
		title, ok := resolve(doc)
		if !ok {
			continue
		}
		if r.claimTitle(title) {
			r.chapters = append(r.chapters, models.Chapter{
				Title:            title,
				StartParagraphID: firstParagraphID,
			})
		}
		return
	}
}

func (r *Resolver) titleByDocID(doc DocInfo) (string, bool) {
	return r.idx.TitleForID(doc.ID)
}

func (r *Resolver) titleByFile(doc DocInfo) (string, bool) {
	return r.idx.TitleForFile(doc.Href)
}

func (r *Resolver) titleByHeading(doc DocInfo) (string, bool) {
	return doc.Heading, doc.Heading != ""
}

// lowRecall reports whether anchor/document resolution found too few of
// the navigation map's entries to be trusted.
func (r *Resolver) lowRecall() bool {
	entries := r.idx.Len()
	if entries <= r.cfg.MinNavEntriesForFallback {
		return false
	}
	return len(r.chapters) < entries/r.cfg.TextFallbackDivisor
}

// rebuildByText discards earlier results and re-derives chapters by
// scanning all paragraphs for text matching each navigation title, in
// original entry order.
func (r *Resolver) rebuildByText(paragraphs []models.Paragraph) {
	r.chapters = nil
	r.seenTitles = make(map[string]bool)

	for _, entry := range r.idx.Entries() {
		for _, p := range paragraphs {
			if !TextMatchesTitle(p.Text, entry.Title, r.cfg.TitleMatchSlack) {
				continue
			}
			if r.claimTitle(entry.Title) {
				r.chapters = append(r.chapters, models.Chapter{
					Title:            entry.Title,
					StartParagraphID: p.ID,
				})
			}
			break
		}
	}
}

// Finalize runs the book-level fallbacks and produces the final sorted,
// re-indexed chapter list. paragraphs is the full ordered sequence
// collected during traversal; truncated reports whether the paragraph
// cap stopped the traversal early, in which case the text rebuild is
// skipped (it would derive boundaries from an incomplete book and could
// contradict an uncapped run).
func (r *Resolver) Finalize(paragraphs []models.Paragraph, truncated bool) []models.Chapter {
	if !truncated && r.lowRecall() {
		r.rebuildByText(paragraphs)
	}

	if len(r.chapters) == 0 && len(paragraphs) > 0 {
		r.chapters = append(r.chapters, models.Chapter{
			Title:            DefaultChapterTitle,
			StartParagraphID: 1,
		})
	}

	sort.SliceStable(r.chapters, func(i, j int) bool {
		return r.chapters[i].StartParagraphID < r.chapters[j].StartParagraphID
	})
	for i := range r.chapters {
		r.chapters[i].Index = i
	}
	return r.chapters
}
