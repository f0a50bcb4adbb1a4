// Package normalize implements the Text Normalizer: Unicode word-boundary
// token splitting, stop-word removal, and Porter-style English stemming, plus a
// symbol-aware splitter for camelCase and snake_case identifiers.
package normalize

import (
	"strings"
	"unicode"

	"github.com/surgebase/porter2"
)

// stopWords is the curated list of common English plus programming-specific noise
// tokens dropped before stemming.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "is": true, "are": true, "was": true,
	"be": true, "by": true, "with": true, "and": true, "or": true, "it": true,
	"this": true, "that": true, "as": true, "from": true, "but": true,

	"get": true, "set": true, "new": true, "tmp": true, "var": true,
	"fn": true, "func": true,
}

// Normalize implements `normalize(text)`: segment on Unicode word boundaries,
// lowercase, drop stop words and tokens of length <= 2, stem the rest.
func Normalize(text string) []string {
	words := splitWords(text)
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		if len(w) <= 2 {
			continue
		}
		if stopWords[w] {
			continue
		}
		out = append(out, Stem(w))
	}
	return out
}

// NormalizeSymbol implements `normalize_symbol(name)`: split on '_', then split
// each part on camelCase boundaries, lowercase, drop length <= 1, stem.
func NormalizeSymbol(name string) []string {
	var out []string
	for _, underscorePart := range strings.Split(name, "_") {
		for _, part := range splitCamelCase(underscorePart) {
			p := strings.ToLower(part)
			if len(p) <= 1 {
				continue
			}
			out = append(out, Stem(p))
		}
	}
	return out
}

// Stem applies Porter-style English stemming to a single lowercase word.
func Stem(word string) string {
	if word == "" {
		return word
	}
	return porter2.Stem(word)
}

// splitWords segments text on Unicode word boundaries: runs of letters/digits
// are tokens, everything else is a separator.
func splitWords(text string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

// splitCamelCase splits a single underscore-free part on lower->upper transitions,
// treating consecutive uppercase runs (acronyms) as one token followed by the next
// lowercase run, e.g. "HTTPServer" -> ["HTTP", "Server"].
func splitCamelCase(part string) []string {
	if part == "" {
		return nil
	}
	runes := []rune(part)
	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		switch {
		case unicode.IsLower(prev) && unicode.IsUpper(cur):
			parts = append(parts, string(runes[start:i]))
			start = i
		case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			// Acronym followed by a new capitalized word, e.g. "HTTPServer".
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	parts = append(parts, string(runes[start:]))
	return parts
}
