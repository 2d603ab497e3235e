// Package textnorm canonicalizes free text before it is compared against
// project names.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases s, folds accented letters to their base form and keeps
// only ASCII letters and digits. Apostrophes are dropped ("don't" -> "dont");
// any other character acts as a word separator, so "Project-X!!" and
// "project x" normalize identically. Separator runs collapse to one space and
// the result is trimmed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(foldAccents, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pending := false
	for _, r := range folded {
		switch {
		case r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
			fallthrough
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pending && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pending = false
			b.WriteRune(r)
		case r == '\'' || r == '’':
		default:
			pending = true
		}
	}
	return b.String()
}

// Fields splits an already normalized string into tokens.
func Fields(normalized string) []string {
	return strings.Fields(normalized)
}
