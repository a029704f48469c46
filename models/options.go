package models

// ExtractOptions holds caller-supplied knobs for one extraction call.
type ExtractOptions struct {
	// MaxParagraphs caps the total number of paragraphs extracted.
	// Zero or negative means no cap. Hitting the cap is an early stop,
	// not an error; chapters emitted before the stop remain valid.
	MaxParagraphs int
}
