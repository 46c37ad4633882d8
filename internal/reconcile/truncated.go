package reconcile

import (
	"strings"
	"unicode"
)

var danglingWords = map[string]struct{}{
	"de": {}, "del": {}, "la": {}, "las": {}, "el": {}, "los": {}, "lo": {},
	"y": {}, "e": {}, "o": {}, "en": {}, "a": {}, "al": {}, "por": {}, "para": {},
	"con": {}, "sin": {}, "sobre": {}, "que": {}, "un": {}, "una": {},
}

// LooksTruncated reports whether s appears cut off: it ends in an ellipsis,
// a connecting punctuation mark, or a word that cannot end a phrase.
func LooksTruncated(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.HasSuffix(s, "...") || strings.HasSuffix(s, "…") {
		return true
	}
	switch s[len(s)-1] {
	case '-', ',', ':', ';', '(', '/':
		return true
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return unicode.IsSpace(r) })
	if len(fields) < 2 {
		return false
	}
	_, dangling := danglingWords[strings.ToLower(fields[len(fields)-1])]
	return dangling
}
