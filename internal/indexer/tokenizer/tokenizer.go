// Package tokenizer provides text normalisation for the index. It splits a
// line on whitespace, lower-cases each word and keeps only ASCII letters and
// digits. Queries are normalised the same way but as a single unit.
package tokenizer

import (
	"iter"
	"strings"
)

// Tokens yields the normalised terms of line from left to right. Words that
// normalise to the empty string are skipped. The sequence can be ranged over
// any number of times.
func Tokens(line string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, word := range strings.Fields(line) {
			term := Normalize(word)
			if term == "" {
				continue
			}
			if !yield(term) {
				return
			}
		}
	}
}

// Tokenize collects Tokens(text) into a slice.
func Tokenize(text string) []string {
	tokens := make([]string, 0, len(text)/6)
	for term := range Tokens(text) {
		tokens = append(tokens, term)
	}
	return tokens
}

// Normalize lower-cases word and drops every byte that is not an ASCII
// letter or digit. Multi-byte runes are always dropped.
func Normalize(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for i := 0; i < len(word); i++ {
		c := word[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}

// NormalizeQuery treats the whole of raw as one term, so "the cat" becomes
// "thecat". An empty result means the query cannot match anything.
func NormalizeQuery(raw string) string {
	return Normalize(raw)
}
