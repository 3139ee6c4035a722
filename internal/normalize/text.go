// Package normalize canonicalizes raw inbound text — names, city text,
// venue names, and dates — into the deterministic forms the fingerprint
// generator and deduplication resolver key their lookups on.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// yearPattern matches any standalone four-digit year token, e.g. the
// "2025" in "Festival Gnaoua 2025".
var yearPattern = regexp.MustCompile(`\b\d{4}\b`)

// stopTokens are literal words stripped after decomposition.
var stopTokens = map[string]struct{}{
	"festival": {},
	"fest":     {},
	"edition":  {},
}

// nonAlphanumericRun collapses any run of characters that are not letters
// or digits into a single space.
var nonAlphanumericRun = regexp.MustCompile(`[^a-z0-9]+`)

// Text produces a canonical string from a raw string: lowercase; Unicode
// NFD decomposition; strip combining marks; remove the stopword tokens and
// any four-digit year; collapse non-alphanumeric runs to single spaces;
// trim. Pure and deterministic — Text(s) == Text(Text(s)) for all s.
func Text(raw string) string {
	s := strings.ToLower(raw)
	s = stripDiacritics(s)
	s = yearPattern.ReplaceAllString(s, " ")

	tokens := strings.Fields(s)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		cleaned := nonAlphanumericRun.ReplaceAllString(tok, " ")
		for _, sub := range strings.Fields(cleaned) {
			if _, stop := stopTokens[sub]; stop {
				continue
			}
			kept = append(kept, sub)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// stripDiacritics decomposes a string (NFD) and drops Unicode combining
// marks, turning e.g. "Essaouira" or "Esṣaouira" into their
// diacritic-free ASCII-ish form.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FirstTokens returns the first n whitespace-separated tokens of an
// already-normalized string, used to build the fuzzy_name fingerprint's
// truncated name component.
func FirstTokens(normalized string, n int) string {
	tokens := strings.Fields(normalized)
	if len(tokens) > n {
		tokens = tokens[:n]
	}
	return strings.Join(tokens, " ")
}
