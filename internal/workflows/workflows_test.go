package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"juriscope/internal/activities"
	"juriscope/internal/providers"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerAnalysisActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "SelectDocumentsActivity", func(context.Context, activities.SelectDocumentsInput) (activities.SelectDocumentsOutput, error) {
		return activities.SelectDocumentsOutput{}, nil
	})
	registerActivityName(env, "MarkAnalysisProcessingActivity", func(context.Context, activities.DocumentInput) error { return nil })
	registerActivityName(env, "ExtractContentActivity", func(context.Context, activities.DocumentInput) (activities.ExtractContentOutput, error) {
		return activities.ExtractContentOutput{}, nil
	})
	registerActivityName(env, "AnalyzeContentActivity", func(context.Context, activities.AnalyzeContentInput) (activities.AnalyzeContentOutput, error) {
		return activities.AnalyzeContentOutput{}, nil
	})
	registerActivityName(env, "ApplyAnalysisActivity", func(context.Context, activities.ApplyAnalysisInput) error { return nil })
	registerActivityName(env, "MarkAnalysisFailedActivity", func(context.Context, activities.MarkAnalysisFailedInput) error { return nil })
	registerActivityName(env, "WriteBatchReportActivity", func(context.Context, activities.WriteBatchReportInput) (activities.WriteBatchReportOutput, error) {
		return activities.WriteBatchReportOutput{}, nil
	})
}

func happyPath(env *testsuite.TestWorkflowEnvironment) {
	env.OnActivity("MarkAnalysisProcessingActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractContentActivity", mock.Anything, mock.Anything).Return(activities.ExtractContentOutput{Text: "texto", Source: "full_text"}, nil)
	env.OnActivity("AnalyzeContentActivity", mock.Anything, mock.Anything).Return(activities.AnalyzeContentOutput{
		Analysis: providers.Analysis{CaseNumber: "T-1/24", ModelUsed: "mock-analyzer-v1"},
	}, nil)
	env.OnActivity("ApplyAnalysisActivity", mock.Anything, mock.Anything).Return(nil)
}

func TestDocumentAnalysisWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentAnalysisWorkflow)
	registerAnalysisActivities(env)
	happyPath(env)

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{DocumentID: "d1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out DocumentAnalysisResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, StatusCompleted, out.Status)
	require.Equal(t, "full_text", out.Source)
	require.Equal(t, "mock-analyzer-v1", out.Model)
}

func TestDocumentAnalysisWorkflowInsufficientContent(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentAnalysisWorkflow)
	registerAnalysisActivities(env)

	var failed activities.MarkAnalysisFailedInput
	env.OnActivity("MarkAnalysisProcessingActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractContentActivity", mock.Anything, mock.Anything).Return(activities.ExtractContentOutput{},
		temporal.NewNonRetryableApplicationError("no content", activities.ErrTypeInsufficientContent, nil))
	env.OnActivity("MarkAnalysisFailedActivity", mock.Anything, mock.Anything).Return(func(_ context.Context, in activities.MarkAnalysisFailedInput) error {
		failed = in
		return nil
	})

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{DocumentID: "d1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out DocumentAnalysisResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, StatusFailed, out.Status)
	require.Equal(t, "d1", failed.DocumentID)
	require.False(t, failed.Retryable)
	env.AssertNotCalled(t, "AnalyzeContentActivity", mock.Anything, mock.Anything)
}

func TestDocumentAnalysisWorkflowTransientErrorIsReturned(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentAnalysisWorkflow)
	registerAnalysisActivities(env)

	var failed activities.MarkAnalysisFailedInput
	env.OnActivity("MarkAnalysisProcessingActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractContentActivity", mock.Anything, mock.Anything).Return(activities.ExtractContentOutput{Text: "texto"}, nil)
	env.OnActivity("AnalyzeContentActivity", mock.Anything, mock.Anything).Return(activities.AnalyzeContentOutput{}, errors.New("load document d1: connection reset"))
	env.OnActivity("MarkAnalysisFailedActivity", mock.Anything, mock.Anything).Return(func(_ context.Context, in activities.MarkAnalysisFailedInput) error {
		failed = in
		return nil
	})

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{DocumentID: "d1"})
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	require.True(t, failed.Retryable)
	require.Contains(t, failed.Reason, "connection reset")
}

func TestDocumentAnalysisWorkflowAnalyzerErrorFails(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentAnalysisWorkflow)
	registerAnalysisActivities(env)

	var failed activities.MarkAnalysisFailedInput
	env.OnActivity("MarkAnalysisProcessingActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractContentActivity", mock.Anything, mock.Anything).Return(activities.ExtractContentOutput{Text: "texto"}, nil)
	env.OnActivity("AnalyzeContentActivity", mock.Anything, mock.Anything).Return(activities.AnalyzeContentOutput{},
		temporal.NewApplicationError("all providers failed: bad request", activities.ErrTypeAnalyzerError))
	env.OnActivity("MarkAnalysisFailedActivity", mock.Anything, mock.Anything).Return(func(_ context.Context, in activities.MarkAnalysisFailedInput) error {
		failed = in
		return nil
	})

	env.ExecuteWorkflow(DocumentAnalysisWorkflow, DocumentAnalysisInput{DocumentID: "d1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out DocumentAnalysisResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, StatusFailed, out.Status)
	require.False(t, failed.Retryable)
	require.Contains(t, failed.Reason, "bad request")
	env.AssertNotCalled(t, "ApplyAnalysisActivity", mock.Anything, mock.Anything)
}

func TestIngestBatchWorkflowContinuesPastFailures(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(IngestBatchWorkflow)
	env.RegisterWorkflow(DocumentAnalysisWorkflow)
	registerAnalysisActivities(env)

	env.OnActivity("SelectDocumentsActivity", mock.Anything, activities.SelectDocumentsInput{Limit: 10}).
		Return(activities.SelectDocumentsOutput{DocumentIDs: []string{"a", "bad", "c"}}, nil)
	env.OnActivity("ExtractContentActivity", mock.Anything, activities.DocumentInput{DocumentID: "bad"}).
		Return(activities.ExtractContentOutput{}, errors.New("database gone"))
	env.OnActivity("MarkAnalysisFailedActivity", mock.Anything, mock.Anything).Return(nil)
	happyPath(env)

	var report activities.WriteBatchReportInput
	env.OnActivity("WriteBatchReportActivity", mock.Anything, mock.Anything).Return(func(_ context.Context, in activities.WriteBatchReportInput) (activities.WriteBatchReportOutput, error) {
		report = in
		return activities.WriteBatchReportOutput{Path: "/tmp/report.json"}, nil
	})

	env.ExecuteWorkflow(IngestBatchWorkflow, IngestBatchInput{Limit: 10})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var res BatchResult
	require.NoError(t, env.GetWorkflowResult(&res))
	require.Equal(t, 3, res.Total)
	require.Equal(t, 2, res.Successes)
	require.Equal(t, 1, res.Failures)
	require.Equal(t, "/tmp/report.json", res.ReportPath)
	require.Equal(t, StatusFailed, res.Outcomes[1].Status)
	require.Equal(t, 1, report.Failures)
	require.Len(t, report.Items, 3)

	q, err := env.QueryWorkflow(QueryGetBatchProgress)
	require.NoError(t, err)
	var progress BatchProgress
	require.NoError(t, q.Get(&progress))
	require.True(t, progress.Finished)
	require.Equal(t, 3, progress.Done)
	require.Equal(t, StatusCompleted, progress.PerDocument["c"])
}

func TestIngestBatchWorkflowEmptySelection(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(IngestBatchWorkflow)
	env.RegisterWorkflow(DocumentAnalysisWorkflow)
	registerAnalysisActivities(env)
	env.OnActivity("SelectDocumentsActivity", mock.Anything, mock.Anything).Return(activities.SelectDocumentsOutput{}, nil)
	env.OnActivity("WriteBatchReportActivity", mock.Anything, mock.Anything).Return(activities.WriteBatchReportOutput{}, nil)

	env.ExecuteWorkflow(IngestBatchWorkflow, IngestBatchInput{DelaySeconds: -1})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var res BatchResult
	require.NoError(t, env.GetWorkflowResult(&res))
	require.Zero(t, res.Total)
}

func TestBatchDelay(t *testing.T) {
	require.Equal(t, defaultDelay, batchDelay(0))
	require.Zero(t, batchDelay(-1))
	require.Equal(t, 5*defaultDelay/2, batchDelay(5))
}
