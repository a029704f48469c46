package chapters

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lectorlab/bookpipe/pkg/textnorm"
)

// numberedTitle matches headings of the form "3. Some title".
var numberedTitle = regexp.MustCompile(`^(\d+)\.\s*(.+)$`)

// TextMatchesTitle reports whether a paragraph's rendered text plausibly
// is the in-flow heading for a navigation title. Some books encode
// chapter breaks only as an unanchored heading paragraph; comparing
// folded text to the navigation map is the last usable signal.
func TextMatchesTitle(paragraphText, title string, slack int) bool {
	p := textnorm.Fold(paragraphText)
	t := textnorm.Fold(title)
	if p == "" || t == "" {
		return false
	}

	if p == t || p == t+"." || p == t+"," {
		return true
	}
	if strings.HasPrefix(p, t+" ") {
		return true
	}
	if utf8.RuneCountInString(p) < utf8.RuneCountInString(t)+slack && strings.Contains(p, t) {
		return true
	}

	// "3. The Visit" also matches a bare "3", "chapter 3", "capitulo 3",
	// or the remainder on its own.
	if m := numberedTitle.FindStringSubmatch(t); m != nil {
		n, rest := m[1], m[2]
		switch p {
		case n, "chapter " + n, "capitulo " + n, rest:
			return true
		}
	}

	return false
}
