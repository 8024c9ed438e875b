package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const querySeparator = '_'

// NormalizeQuery folds a name, slug or user query into its comparable form:
// lowercase, no diacritics, punctuation removed and separator runs
// (whitespace, '_' and '-') collapsed into a single '_'.
// "  Mélioda's  Wrath " and "meliodas-wrath" both become "meliodas_wrath".
func NormalizeQuery(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(folder, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteRune(querySeparator)
			}
			pendingSep = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_' || r == '-':
			pendingSep = true
		}
	}

	return b.String()
}
