// Package textnorm provides the text canonicalization used for chapter
// title comparison: real books disagree on case, accents and whitespace
// between the navigation map and the rendered content.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after NFD decomposition, so that
// "Capítulo" and "Capitulo" compare equal.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CollapseSpace collapses whitespace runs to single spaces and trims.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fold returns the canonical comparison form of s: diacritics stripped,
// lowercased, whitespace collapsed.
func Fold(s string) string {
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	return CollapseSpace(strings.ToLower(s))
}
