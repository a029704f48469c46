// Package vocab computes word-frequency statistics over extracted book
// text. The reading product surfaces a book's dominant vocabulary to
// the learner; stopwords in both supported interface languages are
// filtered out.
package vocab

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords lists high-frequency function words excluded from the
// vocabulary signal, English and Spanish. Extend as needed.
var stopwords = map[string]struct{}{
	// English
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "had": {}, "has": {},
	"have": {}, "he": {}, "her": {}, "here": {}, "him": {}, "his": {},
	"i": {}, "if": {}, "in": {}, "is": {}, "it": {}, "its": {}, "me": {},
	"my": {}, "no": {}, "not": {}, "of": {}, "on": {}, "or": {}, "our": {},
	"she": {}, "so": {}, "that": {}, "the": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "they": {}, "this": {}, "to": {}, "was": {},
	"we": {}, "were": {}, "what": {}, "when": {}, "which": {}, "who": {},
	"will": {}, "with": {}, "would": {}, "you": {}, "your": {},

	// Spanish
	"al": {}, "como": {}, "con": {}, "de": {}, "del": {}, "el": {},
	"ella": {}, "ellos": {}, "en": {}, "era": {}, "es": {}, "ese": {},
	"esta": {}, "este": {}, "fue": {}, "ha": {}, "la": {}, "las": {},
	"le": {}, "les": {}, "lo": {}, "los": {}, "mas": {}, "más": {},
	"mi": {}, "muy": {}, "ni": {}, "nos": {}, "o": {}, "para": {},
	"pero": {}, "por": {}, "porque": {}, "que": {}, "qué": {}, "se": {},
	"ser": {}, "si": {}, "sí": {}, "sin": {}, "sobre": {}, "su": {},
	"sus": {}, "te": {}, "tu": {}, "un": {}, "una": {}, "uno": {},
	"unos": {}, "y": {}, "ya": {}, "yo": {},
}

// IsStopword reports whether word is filtered from frequency analysis.
func IsStopword(word string) bool {
	_, exists := stopwords[strings.ToLower(word)]
	return exists
}

// WordFrequency counts word occurrences in text, lowercased, with edge
// punctuation stripped and stopwords removed. Accented letters are kept;
// this runs over Spanish prose as often as English.
func WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if word == "" || IsStopword(word) {
			continue
		}
		frequencies[word]++
	}
	return frequencies
}

// Merge aggregates per-document frequency maps into one.
func Merge(intermediate []map[string]int) map[string]int {
	final := make(map[string]int)
	for _, counts := range intermediate {
		for word, count := range counts {
			final[word] += count
		}
	}
	return final
}

// WordCount is one entry of a ranked vocabulary list.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// TopN returns the n most frequent words, ties broken alphabetically so
// the ranking is deterministic.
func TopN(counts map[string]int, n int) []WordCount {
	ranked := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		ranked = append(ranked, WordCount{Word: w, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Word < ranked[j].Word
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
