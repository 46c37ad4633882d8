package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"juriscope/internal/util"
)

// maxPromptRunes bounds the ruling text sent to remote models.
const maxPromptRunes = 24000

// PromptAnalyzer adapts a Generator into an Analyzer with a JSON prompt.
type PromptAnalyzer struct {
	gen Generator
}

func NewPromptAnalyzer(gen Generator) *PromptAnalyzer {
	return &PromptAnalyzer{gen: gen}
}

func (p *PromptAnalyzer) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, ProviderInfo, error) {
	resp, info, err := p.gen.Generate(ctx, GenerateRequest{
		Operation: "analyze_ruling",
		Prompt:    BuildAnalysisPrompt(req.Title, req.Text),
		Model:     modelOverride(req.Model),
		JSON:      true,
	})
	if err != nil {
		return nil, info, err
	}
	a, err := ParseAnalysis(resp.Text)
	if err != nil {
		return nil, info, fmt.Errorf("parse %s analysis: %w", info.Name, err)
	}
	if a.ModelUsed == "" {
		a.ModelUsed = info.Model
	}
	return a, info, nil
}

// modelOverride passes through hints that name a concrete model, not a provider.
func modelOverride(hint string) string {
	h := strings.TrimSpace(hint)
	if h == "" || strings.Contains(h, ":") {
		return ""
	}
	if _, ok := knownProviders[strings.ToLower(h)]; ok {
		return ""
	}
	return h
}

func BuildAnalysisPrompt(title, text string) string {
	var b strings.Builder
	b.WriteString("Analiza la siguiente sentencia judicial y responde solo con un objeto JSON con las claves ")
	b.WriteString(`"case_number", "reporting_judge", "chamber", "docket_number", "primary_topic", "summary", "decision". `)
	b.WriteString("Usa cadena vacía cuando un dato no aparezca en el texto.\n\n")
	if title != "" {
		b.WriteString("Título: ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	b.WriteString(util.TruncateRunes(text, maxPromptRunes))
	return b.String()
}

// ParseAnalysis decodes the first JSON object in s, tolerating code fences
// and surrounding prose.
func ParseAnalysis(s string) (*Analysis, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no json object in response")
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(s[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode analysis json: %w", err)
	}
	a := &Analysis{
		CaseNumber:     stringField(raw, "case_number", "caseNumber", "numero_sentencia"),
		ReportingJudge: stringField(raw, "reporting_judge", "reportingJudge", "magistrado_ponente"),
		Chamber:        stringField(raw, "chamber", "sala"),
		DocketNumber:   stringField(raw, "docket_number", "docketNumber", "expediente"),
		PrimaryTopic:   stringField(raw, "primary_topic", "primaryTopic", "tema_principal"),
		Summary:        stringField(raw, "summary", "resumen"),
		Decision:       stringField(raw, "decision", "decisión"),
		ModelUsed:      stringField(raw, "model_used"),
	}
	if *a == (Analysis{}) {
		return nil, fmt.Errorf("analysis json has no known fields")
	}
	return a, nil
}

func stringField(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch x := v.(type) {
		case string:
			if s := strings.TrimSpace(x); s != "" {
				return s
			}
		case []any:
			parts := make([]string, 0, len(x))
			for _, p := range x {
				if s, ok := p.(string); ok && strings.TrimSpace(s) != "" {
					parts = append(parts, strings.TrimSpace(s))
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		default:
			return fmt.Sprint(x)
		}
	}
	return ""
}

func (p *PromptAnalyzer) Configured() bool {
	if c, ok := p.gen.(configured); ok {
		return c.Configured()
	}
	return true
}
