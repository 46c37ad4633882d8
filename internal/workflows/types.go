package workflows

type IngestBatchInput struct {
	DocumentIDs    []string `json:"document_ids,omitempty"`
	ForceReprocess bool     `json:"force_reprocess"`
	Model          string   `json:"model,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	// DelaySeconds between documents; 0 means the default, negative disables.
	DelaySeconds int `json:"delay_seconds,omitempty"`
}

type BatchResult struct {
	RunID      string                   `json:"run_id"`
	Total      int                      `json:"total"`
	Successes  int                      `json:"successes"`
	Failures   int                      `json:"failures"`
	Outcomes   []DocumentAnalysisResult `json:"outcomes"`
	ReportPath string                   `json:"report_path,omitempty"`
}

type BatchProgress struct {
	RunID       string            `json:"run_id"`
	Total       int               `json:"total"`
	Done        int               `json:"done"`
	Successes   int               `json:"successes"`
	Failures    int               `json:"failures"`
	Current     string            `json:"current,omitempty"`
	PerDocument map[string]string `json:"per_document"`
	Finished    bool              `json:"finished"`
}

type DocumentAnalysisInput struct {
	DocumentID string `json:"document_id"`
	Model      string `json:"model,omitempty"`
}

type DocumentAnalysisResult struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Source     string `json:"source,omitempty"`
	Model      string `json:"model,omitempty"`
	Error      string `json:"error,omitempty"`
}

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)
