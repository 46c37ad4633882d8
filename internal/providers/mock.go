package providers

import (
	"context"
	"strings"

	"juriscope/internal/reconcile"
	"juriscope/internal/util"
)

// MockProvider is an offline analyzer. Structured fields come from the
// document header; summary is the lead of the text.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Analyze(_ context.Context, req AnalyzeRequest) (*Analysis, ProviderInfo, error) {
	info := ProviderInfo{Name: "mock", Model: "mock-analyzer-v1", Key: "mock"}
	if strings.TrimSpace(req.Text) == "" {
		return nil, info, nil
	}
	h := reconcile.ExtractHeader(req.Text)
	topic := req.Title
	if topic == "" {
		topic = util.Snippet(req.Text, 80)
	}
	return &Analysis{
		CaseNumber:     h.CaseNumber,
		ReportingJudge: h.ReportingJudge,
		Chamber:        h.Chamber,
		DocketNumber:   h.DocketNumber,
		PrimaryTopic:   util.Snippet(topic, 120),
		Summary:        util.LeadSentences(req.Text, 2),
		Decision:       mockDecision(req.Text),
		ModelUsed:      info.Model,
	}, info, nil
}

// Generate answers any prompt with an empty analysis object.
func (m *MockProvider) Generate(_ context.Context, _ GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	return GenerateResponse{Text: `{"summary":"mock"}`}, ProviderInfo{Name: "mock", Model: "mock-analyzer-v1", Key: "mock"}, nil
}

func mockDecision(text string) string {
	idx := strings.LastIndex(text, "RESUELVE")
	if idx < 0 {
		return ""
	}
	return util.Snippet(strings.TrimLeft(text[idx+len("RESUELVE"):], " :\n\t"), 200)
}
