// Package chapters resolves chapter boundaries for extracted content
// documents through a cascade of strategies: navigation anchors,
// document-level signals, whole-book text matching, and a synthetic
// catch-all chapter.
package chapters

// Config holds the empirically chosen resolver constants. The defaults
// mirror values tuned against real-world books; change them only with
// a corpus to measure against.
type Config struct {
	// TextFallbackDivisor controls the recall check: the whole-book text
	// rebuild triggers when found chapters < nav entries / divisor.
	TextFallbackDivisor int

	// MinNavEntriesForFallback skips the text rebuild for very short or
	// flat tables of contents (entries must exceed this count).
	MinNavEntriesForFallback int

	// TitleMatchSlack is the rune allowance above the title length under
	// which a paragraph containing the title still counts as a match.
	TitleMatchSlack int
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{
		TextFallbackDivisor:      2,
		MinNavEntriesForFallback: 2,
		TitleMatchSlack:          15,
	}
}
