package providers

import "strings"

// ProviderRef is one entry of a provider list such as "gemini|openai:team|mock".
type ProviderRef struct {
	Raw      string
	Name     string
	KeyAlias string
}

// ParseProviderList splits on '|' or ','; an empty list yields mock.
func ParseProviderList(raw string) []ProviderRef {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '|' || r == ',' })
	out := make([]ProviderRef, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ref := ProviderRef{Raw: p, Name: strings.ToLower(p)}
		if name, alias, ok := strings.Cut(p, ":"); ok {
			ref.Name = strings.ToLower(strings.TrimSpace(name))
			ref.KeyAlias = strings.TrimSpace(alias)
		}
		out = append(out, ref)
	}
	if len(out) == 0 {
		out = append(out, ProviderRef{Raw: "mock", Name: "mock"})
	}
	return out
}
