package workflows

import (
	"errors"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"juriscope/internal/activities"
)

const (
	QueryGetBatchProgress    = "GetBatchProgress"
	QueryGetAnalysisProgress = "GetAnalysisProgress"

	defaultDelay = 2 * time.Second
)

// IngestBatchWorkflow analyzes the selected documents one at a time, pausing
// between them. A failing document is recorded and the batch moves on.
func IngestBatchWorkflow(ctx workflow.Context, input IngestBatchInput) (BatchResult, error) {
	info := workflow.GetInfo(ctx)
	runID := info.WorkflowExecution.ID
	progress := BatchProgress{RunID: runID, PerDocument: map[string]string{}}
	if err := workflow.SetQueryHandler(ctx, QueryGetBatchProgress, func() (BatchProgress, error) {
		return progress, nil
	}); err != nil {
		return BatchResult{}, err
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	})
	startedAt := workflow.Now(ctx)

	var selected activities.SelectDocumentsOutput
	if err := workflow.ExecuteActivity(ctx, "SelectDocumentsActivity", activities.SelectDocumentsInput{
		DocumentIDs: input.DocumentIDs,
		Force:       input.ForceReprocess,
		Limit:       input.Limit,
	}).Get(ctx, &selected); err != nil {
		return BatchResult{}, err
	}
	ids := selected.DocumentIDs
	progress.Total = len(ids)
	for _, id := range ids {
		progress.PerDocument[id] = "queued"
	}

	delay := batchDelay(input.DelaySeconds)
	res := BatchResult{RunID: runID, Total: len(ids), Outcomes: make([]DocumentAnalysisResult, 0, len(ids))}
	for i, id := range ids {
		progress.Current = id
		progress.PerDocument[id] = "processing"

		childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
			WorkflowID: "analysis-" + sanitizeID(runID) + "-" + sanitizeID(id),
		})
		var out DocumentAnalysisResult
		err := workflow.ExecuteChildWorkflow(childCtx, DocumentAnalysisWorkflow, DocumentAnalysisInput{
			DocumentID: id,
			Model:      input.Model,
		}).Get(ctx, &out)
		if err != nil {
			out = DocumentAnalysisResult{DocumentID: id, Status: StatusFailed, Error: err.Error()}
		}
		if out.Status == StatusCompleted {
			res.Successes++
		} else {
			res.Failures++
		}
		res.Outcomes = append(res.Outcomes, out)
		progress.Done++
		progress.Successes, progress.Failures = res.Successes, res.Failures
		progress.PerDocument[id] = out.Status

		if delay > 0 && i < len(ids)-1 {
			if err := workflow.Sleep(ctx, delay); err != nil {
				return res, err
			}
		}
	}
	progress.Current = ""
	progress.Finished = true

	items := make([]activities.BatchReportItem, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		items = append(items, activities.BatchReportItem(o))
	}
	var report activities.WriteBatchReportOutput
	if err := workflow.ExecuteActivity(ctx, "WriteBatchReportActivity", activities.WriteBatchReportInput{
		RunID:     runID,
		Total:     res.Total,
		Successes: res.Successes,
		Failures:  res.Failures,
		Items:     items,
		StartedAt: startedAt.UTC().Format(time.RFC3339),
		EndedAt:   workflow.Now(ctx).UTC().Format(time.RFC3339),
	}).Get(ctx, &report); err != nil {
		workflow.GetLogger(ctx).Warn("batch report not written", "error", err)
	}
	res.ReportPath = report.Path
	return res, nil
}

// DocumentAnalysisWorkflow extracts, analyzes and reconciles one document.
// Missing content, empty analyses and analyzer errors that outlast the retry
// policy end with a failed outcome; other errors are returned after recording
// the failure.
func DocumentAnalysisWorkflow(ctx workflow.Context, input DocumentAnalysisInput) (DocumentAnalysisResult, error) {
	out := DocumentAnalysisResult{DocumentID: input.DocumentID, Status: "processing"}
	step := "init"
	if err := workflow.SetQueryHandler(ctx, QueryGetAnalysisProgress, func() (map[string]string, error) {
		return map[string]string{"step": step, "status": out.Status}, nil
	}); err != nil {
		return out, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	analyzeCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    10 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    2,
		},
	})
	doc := activities.DocumentInput{DocumentID: input.DocumentID}

	fail := func(err error, retryable bool) (DocumentAnalysisResult, error) {
		out.Status = StatusFailed
		out.Error = err.Error()
		if ferr := workflow.ExecuteActivity(ctx, "MarkAnalysisFailedActivity", activities.MarkAnalysisFailedInput{
			DocumentID: input.DocumentID,
			Reason:     rootMessage(err),
			Retryable:  retryable,
		}).Get(ctx, nil); ferr != nil {
			workflow.GetLogger(ctx).Warn("could not record analysis failure", "document_id", input.DocumentID, "error", ferr)
		}
		if retryable {
			return out, err
		}
		return out, nil
	}

	step = "mark_processing"
	if err := workflow.ExecuteActivity(ctx, "MarkAnalysisProcessingActivity", doc).Get(ctx, nil); err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
		return out, err
	}

	step = "extract_content"
	var content activities.ExtractContentOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractContentActivity", doc).Get(ctx, &content); err != nil {
		return fail(err, !isApplicationError(err, activities.ErrTypeInsufficientContent))
	}
	out.Source = string(content.Source)

	step = "analyze_content"
	var analysis activities.AnalyzeContentOutput
	if err := workflow.ExecuteActivity(analyzeCtx, "AnalyzeContentActivity", activities.AnalyzeContentInput{
		DocumentID: input.DocumentID,
		Text:       content.Text,
		Model:      input.Model,
	}).Get(ctx, &analysis); err != nil {
		terminal := isApplicationError(err, activities.ErrTypeAnalysisFailure) ||
			isApplicationError(err, activities.ErrTypeAnalyzerError)
		return fail(err, !terminal)
	}

	step = "apply_analysis"
	if err := workflow.ExecuteActivity(ctx, "ApplyAnalysisActivity", activities.ApplyAnalysisInput{
		DocumentID: input.DocumentID,
		Text:       content.Text,
		Analysis:   analysis.Analysis,
	}).Get(ctx, nil); err != nil {
		return fail(err, true)
	}

	step = "done"
	out.Status = StatusCompleted
	out.Model = analysis.Analysis.ModelUsed
	return out, nil
}

func batchDelay(seconds int) time.Duration {
	switch {
	case seconds < 0:
		return 0
	case seconds == 0:
		return defaultDelay
	default:
		return time.Duration(seconds) * time.Second
	}
}

func isApplicationError(err error, errType string) bool {
	var appErr *temporal.ApplicationError
	return errors.As(err, &appErr) && appErr.Type() == errType
}

// rootMessage unwraps Temporal's activity error chain to the original message.
func rootMessage(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return err.Error()
}

func sanitizeID(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}
