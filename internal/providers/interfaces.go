package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

type GenerateRequest struct {
	Operation string `json:"operation"`
	Prompt    string `json:"prompt"`
	// Model overrides the provider's default model when set.
	Model string `json:"model,omitempty"`
	// JSON asks the provider to constrain output to a JSON object.
	JSON bool `json:"json,omitempty"`
}

type GenerateResponse struct {
	Text string `json:"text"`
}

// Generator is a raw text-completion backend.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error)
}

type AnalyzeRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
	// Model is a hint: a provider name ("gemini"), a provider ref ("openai:team")
	// or a model id ("gpt-4o-mini").
	Model string `json:"model,omitempty"`
}

// Analysis is what an analyzer extracted from a ruling. Structured fields are
// candidates for reconciliation, not final values.
type Analysis struct {
	CaseNumber     string `json:"case_number,omitempty"`
	ReportingJudge string `json:"reporting_judge,omitempty"`
	Chamber        string `json:"chamber,omitempty"`
	DocketNumber   string `json:"docket_number,omitempty"`
	PrimaryTopic   string `json:"primary_topic,omitempty"`
	Summary        string `json:"summary,omitempty"`
	Decision       string `json:"decision,omitempty"`
	ModelUsed      string `json:"model_used,omitempty"`
}

// Analyzer turns ruling text into an Analysis. A nil Analysis with a nil
// error means the analyzer gave up; callers treat it as a failure.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, ProviderInfo, error)
}
