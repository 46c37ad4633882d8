package util

import (
	"strings"
	"unicode/utf8"
)

// SanitizeText removes bytes and control characters that Postgres text columns reject
// (NUL from some extractors, invalid UTF-8 from remote payloads).
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	s = strings.ReplaceAll(s, "\x00", "")

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 || ch == 0x7f {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

// RuneLen counts characters, not bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// TruncateRunes cuts s to at most max characters.
func TruncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
