// Package textutil holds the text normalizations used for labels and hints.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics strips combining marks: "Crème brûlée" becomes "Creme brulee".
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Capitalize title-cases every word and lowercases the rest.
func Capitalize(s string) string {
	return cases.Title(language.Und).String(s)
}

// Fold normalizes s for accent and case insensitive comparisons.
func Fold(s string) string {
	return strings.ToLower(RemoveDiacritics(s))
}

// ContainsFold reports whether sub is within s, ignoring case and accents.
func ContainsFold(s, sub string) bool {
	return strings.Contains(Fold(s), Fold(sub))
}

// Slug lowercases s, drops punctuation and joins words with dashes.
func Slug(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('-')
		case isSlugPunct(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isSlugPunct(r rune) bool {
	if r >= 0x2000 && r <= 0x206F || r >= 0x2E00 && r <= 0x2E7F {
		return true
	}
	return strings.ContainsRune(`\'!"#$%&()*+,./:;<=>?@[]^`+"`"+`{|}~`, r)
}
