package util

import (
	"strings"
	"unicode"
)

// Snippet returns a single-line, printable excerpt of s of at most maxRunes characters,
// cut at a word boundary and suffixed with "..." when shortened.
func Snippet(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 420
	}
	s = normalizeWhitespace(SanitizeText(s))

	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsPrint(r) {
			out = append(out, r)
		}
	}
	if len(out) <= maxRunes {
		return strings.TrimSpace(string(out))
	}
	cut := out[:maxRunes]
	if i := lastSpace(cut); i > maxRunes/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(strings.TrimSpace(string(cut)), ",;:") + "..."
}

// LeadSentences returns the first n sentences of s, joined by single spaces.
func LeadSentences(s string, n int) string {
	sentences := splitSentences(normalizeWhitespace(SanitizeText(s)))
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	return strings.Join(sentences, " ")
}

func splitSentences(s string) []string {
	out := make([]string, 0, 8)
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			x := strings.TrimSpace(b.String())
			if x != "" {
				out = append(out, x)
			}
			b.Reset()
		}
	}
	rest := strings.TrimSpace(b.String())
	if rest != "" {
		out = append(out, rest)
	}
	return out
}

func lastSpace(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == ' ' {
			return i
		}
	}
	return -1
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
