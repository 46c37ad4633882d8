package activities

import (
	"juriscope/internal/extract"
	"juriscope/internal/providers"
)

// Application error types the workflows branch on.
const (
	ErrTypeInsufficientContent = "InsufficientContent"
	ErrTypeAnalysisFailure     = "AnalysisFailure"
	// ErrTypeAnalyzerError is retried by Temporal, then recorded as FAILED.
	ErrTypeAnalyzerError = "AnalyzerError"
)

type SelectDocumentsInput struct {
	DocumentIDs []string `json:"document_ids,omitempty"`
	Force       bool     `json:"force"`
	Limit       int      `json:"limit"`
}

type SelectDocumentsOutput struct {
	DocumentIDs []string `json:"document_ids"`
}

type DocumentInput struct {
	DocumentID string `json:"document_id"`
}

type ExtractContentOutput struct {
	Text      string         `json:"text"`
	Source    extract.Source `json:"source"`
	WordCount int            `json:"word_count,omitempty"`
}

type AnalyzeContentInput struct {
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`
	Model      string `json:"model,omitempty"`
}

type AnalyzeContentOutput struct {
	Analysis providers.Analysis `json:"analysis"`
}

type ApplyAnalysisInput struct {
	DocumentID string             `json:"document_id"`
	Text       string             `json:"text"`
	Analysis   providers.Analysis `json:"analysis"`
}

type MarkAnalysisFailedInput struct {
	DocumentID string `json:"document_id"`
	Reason     string `json:"reason"`
	Retryable  bool   `json:"retryable"`
}

type BatchReportItem struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Source     string `json:"source,omitempty"`
	Model      string `json:"model,omitempty"`
	Error      string `json:"error,omitempty"`
}

type WriteBatchReportInput struct {
	RunID     string            `json:"run_id"`
	Total     int               `json:"total"`
	Successes int               `json:"successes"`
	Failures  int               `json:"failures"`
	Items     []BatchReportItem `json:"items"`
	StartedAt string            `json:"started_at"`
	EndedAt   string            `json:"ended_at"`
}

type WriteBatchReportOutput struct {
	Path string `json:"path"`
}
