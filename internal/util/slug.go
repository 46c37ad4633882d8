package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugRunes = 80

// FoldAccents strips combining marks, so "Séptima" becomes "Septima".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Slugify lowercases title, folds accents and joins alphanumeric runs with '-'.
func Slugify(title string) string {
	folded := FoldAccents(title)

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugRunes {
		slug = strings.TrimRight(slug[:maxSlugRunes], "-")
	}
	if slug == "" {
		return "articulo"
	}
	return slug
}
