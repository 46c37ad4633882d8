package reconcile

import (
	"sort"
	"strings"
	"unicode/utf8"
)

var placeholders = map[string]struct{}{
	"no disponible":   {},
	"n/a":             {},
	"na":              {},
	"no especificado": {},
	"desconocido":     {},
	"null":            {},
	"none":            {},
	"-":               {},
	"--":              {},
}

// IsPlaceholder reports whether v carries no information: empty, whitespace,
// or one of the filler strings sources emit for unknown values.
func IsPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	_, ok := placeholders[strings.ToLower(v)]
	return ok
}

// Placeholders lists the filler strings, lowercased, in a stable order.
func Placeholders() []string {
	out := make([]string, 0, len(placeholders))
	for p := range placeholders {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Choose returns the most plausible candidate for field. The second return is
// false when no candidate carries a value. Candidates are considered in order:
// the first one passing the field validator wins; otherwise non-truncated values
// are preferred, then the longest, then the earliest.
func Choose(field FieldType, candidates []string) (string, bool) {
	clean := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if IsPlaceholder(c) {
			continue
		}
		clean = append(clean, c)
	}
	switch len(clean) {
	case 0:
		return "", false
	case 1:
		return clean[0], true
	}

	for _, c := range clean {
		if Valid(field, c) {
			return c, true
		}
	}

	best := clean[0]
	for _, c := range clean[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best, true
}

func better(c, best string) bool {
	ct, bt := LooksTruncated(c), LooksTruncated(best)
	if ct != bt {
		return !ct
	}
	return utf8.RuneCountInString(c) > utf8.RuneCountInString(best)
}

// Merge reconciles each field from the given sources, earlier sources first.
func Merge(sources ...Fields) Fields {
	var out Fields
	for _, t := range AllFields {
		cands := make([]string, 0, len(sources))
		for _, s := range sources {
			cands = append(cands, s.Get(t))
		}
		if v, ok := Choose(t, cands); ok {
			out.Set(t, v)
		}
	}
	return out
}
