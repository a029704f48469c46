package extract

import (
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/lectorlab/bookpipe/pkg/textnorm"
)

// headingSelector covers the places books put a chapter title: plain
// headings, header-scoped headings, and conventional class hooks.
const headingSelector = "h1, h2, h3, h4, header h1, header h2, .chapter-title, .title"

// ignoredHeadings lists front-matter boilerplate (folded form) that must
// never be taken as a chapter title, in English and Spanish.
var ignoredHeadings = map[string]bool{
	"table of contents": true,
	"contents":          true,
	"copyright":         true,
	"cover":             true,
	"title page":        true,
	"indice":            true,
	"contenido":         true,
	"contenidos":        true,
	"portada":           true,
	"cubierta":          true,
	"derechos de autor": true,
	"pagina de titulo":  true,
}

// extractHeading returns the first heading-like candidate, in document
// order, that is non-empty and not boilerplate. Empty result means the
// document offers no usable heading signal.
func extractHeading(doc *goquery.Document) string {
	var heading string
	doc.Find(headingSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := normalizeText(s.Text())
		if utf8.RuneCountInString(text) == 0 {
			return true
		}
		if ignoredHeadings[textnorm.Fold(text)] {
			return true
		}
		heading = text
		return false
	})
	return heading
}
