package activities

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"juriscope/internal/ingest"
	"juriscope/internal/models"
	"juriscope/internal/providers"
	"juriscope/internal/storage"
)

func newEnv(t *testing.T) (*testsuite.TestActivityEnvironment, *storage.Memory, string) {
	t.Helper()
	st := storage.NewMemory()
	out := t.TempDir()
	a := New(ingest.NewProcessor(ingest.Deps{Store: st}), nil, out, nil)

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(a)
	return env, st, out
}

func TestExtractContentActivityInsufficientContentIsNonRetryable(t *testing.T) {
	env, st, _ := newEnv(t)
	d := models.Document{ExternalID: "T-1/24", URL: "u", Title: "t", Content: "breve"}
	require.NoError(t, st.CreateDocument(t.Context(), &d))

	_, err := env.ExecuteActivity("ExtractContentActivity", DocumentInput{DocumentID: d.ID})
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, ErrTypeInsufficientContent, appErr.Type())
	require.True(t, appErr.NonRetryable())
}

type erroringAnalyzer struct{}

func (erroringAnalyzer) Analyze(context.Context, providers.AnalyzeRequest) (*providers.Analysis, providers.ProviderInfo, error) {
	return nil, providers.ProviderInfo{Name: "gemini"}, errors.New("gemini generate: googleapi: Error 400: API key not valid")
}

func TestAnalyzeContentActivityAnalyzerErrorIsRetryable(t *testing.T) {
	st := storage.NewMemory()
	a := New(ingest.NewProcessor(ingest.Deps{Store: st, Analyzer: erroringAnalyzer{}}), nil, t.TempDir(), nil)
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(a)

	d := models.Document{ExternalID: "T-3/24", URL: "u3", Title: "t"}
	require.NoError(t, st.CreateDocument(t.Context(), &d))

	_, err := env.ExecuteActivity("AnalyzeContentActivity", AnalyzeContentInput{DocumentID: d.ID, Text: "texto"})
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, ErrTypeAnalyzerError, appErr.Type())
	require.False(t, appErr.NonRetryable())
}

func TestMarkAnalysisFailedActivityRecordsTerminalFailure(t *testing.T) {
	env, st, _ := newEnv(t)
	d := models.Document{ExternalID: "T-2/24", URL: "u2", Title: "t", AnalysisStatus: models.AnalysisProcessing}
	require.NoError(t, st.CreateDocument(t.Context(), &d))

	_, err := env.ExecuteActivity("MarkAnalysisFailedActivity", MarkAnalysisFailedInput{DocumentID: d.ID, Reason: "sin texto"})
	require.NoError(t, err)
	got, err := st.GetDocument(t.Context(), d.ID)
	require.NoError(t, err)
	require.Equal(t, models.AnalysisFailed, got.AnalysisStatus)
	require.Equal(t, "sin texto", got.AnalysisError)
}

func TestWriteBatchReportActivity(t *testing.T) {
	env, _, out := newEnv(t)
	val, err := env.ExecuteActivity("WriteBatchReportActivity", WriteBatchReportInput{
		RunID: "batch-1", Total: 1, Successes: 1,
		Items: []BatchReportItem{{DocumentID: "d1", Status: "completed"}},
	})
	require.NoError(t, err)
	var res WriteBatchReportOutput
	require.NoError(t, val.Get(&res))
	require.Equal(t, filepath.Join(out, "batches", "batch-1", "report.json"), res.Path)

	raw, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	var report WriteBatchReportInput
	require.NoError(t, json.Unmarshal(raw, &report))
	require.Equal(t, "d1", report.Items[0].DocumentID)
}
