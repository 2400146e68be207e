// Package matching provides item-name normalization and fuzzy comparison
// used by inventory lookups.
package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics strips accents so "jalapeño" and "jalapeno" compare equal.
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName lowercases, strips diacritics and collapses whitespace.
// Inventory entries and list items are compared in this form.
func NormalizeName(s string) string {
	s = RemoveDiacritics(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// FuzzyContains reports whether either normalized name contains the other.
// "milk" matches an inventory entry "semi-skimmed milk" and vice versa.
func FuzzyContains(a, b string) bool {
	na := NormalizeName(a)
	nb := NormalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
