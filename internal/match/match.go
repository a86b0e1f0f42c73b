// Package match implements the term matcher: a pure text classifier that
// extracts which vocabulary terms appear as whole tokens in a chat message.
//
// Matching is deliberately dumb: no stemming, no substring hits, no NLP.
// A message token counts only when, after normalization, it is exactly equal
// to a vocabulary entry.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Matcher detects vocabulary terms in free text. It is immutable after
// construction and safe for concurrent use.
type Matcher struct {
	terms map[string]struct{}
}

// New builds a Matcher over the given vocabulary. Vocabulary entries are
// expected in normalized form already (lowercase letters only).
func New(vocabulary []string) *Matcher {
	terms := make(map[string]struct{}, len(vocabulary))
	for _, t := range vocabulary {
		terms[t] = struct{}{}
	}
	return &Matcher{terms: terms}
}

// Detect returns the vocabulary terms occurring in text, in token order,
// with duplicates preserved. It returns an empty slice when nothing matches.
//
// Normalization, in order: lowercase (Unicode-aware), fold the digit '0' to
// the letter 'o' (the classic leetspeak dodge), drop every rune that is not
// a letter or whitespace, then split on whitespace.
func (m *Matcher) Detect(text string) []string {
	norm := cases.Lower(language.Und).String(text)
	norm = strings.ReplaceAll(norm, "0", "o")

	var b strings.Builder
	b.Grow(len(norm))
	for _, r := range norm {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	out := []string{}
	for _, tok := range strings.Fields(b.String()) {
		if _, ok := m.terms[tok]; ok {
			out = append(out, tok)
		}
	}
	return out
}
