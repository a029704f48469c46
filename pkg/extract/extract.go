// Package extract turns one content document's markup into normalized
// text blocks with their fragment anchors, plus a best-effort heading.
// It generalizes block-level extraction over the wild variability of
// EPUB authoring output.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// minParagraphLen is the minimum rune length of a retained text block.
const minParagraphLen = 2

// blockSelector matches every element considered a paragraph candidate,
// in document order.
const blockSelector = "p, div, li, h1, h2, h3, h4, h5, h6"

// Paragraph is one extracted text block, pre-numbering. Anchors holds
// every fragment identifier attributable to this block, in collection
// order; an anchor id belongs to at most one paragraph per document.
type Paragraph struct {
	Text    string
	Anchors []string
}

// Document is the extraction result for one content document.
type Document struct {
	Paragraphs []Paragraph
	// Heading is the first qualifying heading of the document, or empty.
	// It is a fallback chapter-title signal only.
	Heading string
}

// Parse extracts paragraphs and a heading from one document's markup.
func Parse(htmlContent string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	out := &Document{Heading: extractHeading(doc)}
	seenIDs := make(map[string]bool)

	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// A div wrapping other block candidates is layout, not content;
		// counting it would duplicate its children.
		if goquery.NodeName(s) == "div" && s.Find("p, div, li").Length() > 0 {
			return
		}

		text := normalizeText(s.Text())
		if utf8.RuneCountInString(text) < minParagraphLen {
			return
		}

		out.Paragraphs = append(out.Paragraphs, Paragraph{
			Text:    text,
			Anchors: collectAnchors(s, seenIDs),
		})
	})

	// Content in unrecognized markup (bare text, span-only layouts):
	// treat the whole document as a single block.
	if len(out.Paragraphs) == 0 {
		if text := normalizeText(doc.Text()); utf8.RuneCountInString(text) >= minParagraphLen {
			out.Paragraphs = append(out.Paragraphs, Paragraph{Text: text})
		}
	}

	return out, nil
}

// normalizeText collapses whitespace runs to single spaces and trims.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
