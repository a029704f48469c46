// Package lang identifies the language of an extracted book. The
// bilingual reading host needs the source language to choose a
// translation direction; OPF metadata declares it for well-formed books
// and statistical detection covers the rest.
package lang

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/lectorlab/bookpipe/models"
)

// sampleRuneBudget bounds how much text is fed to the detector; a few
// thousand runes is plenty for whole-book classification.
const sampleRuneBudget = 4000

// Detector wraps a lingua detector restricted to the languages the
// reading product supports.
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector builds a detector. Construction loads language models and
// is comparatively expensive; reuse one Detector across books.
func NewDetector() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English,
				lingua.Spanish,
				lingua.French,
				lingua.German,
				lingua.Italian,
				lingua.Portuguese,
			).
			Build(),
	}
}

// Detect returns the ISO 639-1 code and confidence for a text sample.
// An empty code means the sample was too thin to classify.
func (d *Detector) Detect(sample string) (string, float64) {
	language, ok := d.detector.DetectLanguageOf(sample)
	if !ok {
		return "", 0
	}
	code := strings.ToLower(language.IsoCode639_1().String())
	return code, d.detector.ComputeLanguageConfidence(sample, language)
}

// BookLanguage resolves a book's language: a declared dc:language value
// wins, otherwise detection over a sample of the extracted paragraphs.
func (d *Detector) BookLanguage(declared string, paragraphs []models.Paragraph) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		// "en-US" and friends reduce to the primary subtag.
		if idx := strings.IndexByte(declared, '-'); idx > 0 {
			declared = declared[:idx]
		}
		return strings.ToLower(declared)
	}

	sample := SampleText(paragraphs, sampleRuneBudget)
	if sample == "" {
		return ""
	}
	code, _ := d.Detect(sample)
	return code
}

// SampleText concatenates paragraph texts up to roughly maxRunes.
func SampleText(paragraphs []models.Paragraph, maxRunes int) string {
	var sb strings.Builder
	total := 0
	for _, p := range paragraphs {
		if total >= maxRunes {
			break
		}
		sb.WriteString(p.Text)
		sb.WriteString("\n")
		total += len([]rune(p.Text))
	}
	return strings.TrimSpace(sb.String())
}
