package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// NormalizeText canonicalizes text for search: NFKD decomposition,
// combining marks removed, lowercased. "José" and "jose" normalize to
// the same string.
func NormalizeText(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// NormalizeOptional normalizes a nullable field, keeping nil as nil.
func NormalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	n := NormalizeText(*s)
	return &n
}
