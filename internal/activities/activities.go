package activities

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"go.temporal.io/sdk/temporal"

	"juriscope/internal/events"
	"juriscope/internal/ingest"
	"juriscope/internal/logging"
	"juriscope/internal/util"
)

// maxPayloadRunes caps ruling text carried between activities.
const maxPayloadRunes = 200000

type Activities struct {
	proc        *ingest.Processor
	bus         events.Bus
	dataOutRoot string
	logger      *slog.Logger
}

func New(proc *ingest.Processor, bus events.Bus, dataOutRoot string, logger *slog.Logger) *Activities {
	if bus == nil {
		bus = events.Nop{}
	}
	return &Activities{proc: proc, bus: bus, dataOutRoot: dataOutRoot, logger: logging.OrDefault(logger)}
}

func (a *Activities) SelectDocumentsActivity(ctx context.Context, in SelectDocumentsInput) (SelectDocumentsOutput, error) {
	ids, err := a.proc.SelectForBatch(ctx, in.DocumentIDs, in.Force, in.Limit)
	if err != nil {
		return SelectDocumentsOutput{}, err
	}
	return SelectDocumentsOutput{DocumentIDs: ids}, nil
}

func (a *Activities) MarkAnalysisProcessingActivity(ctx context.Context, in DocumentInput) error {
	return a.proc.MarkProcessing(ctx, in.DocumentID)
}

func (a *Activities) ExtractContentActivity(ctx context.Context, in DocumentInput) (ExtractContentOutput, error) {
	out, err := a.proc.Extract(ctx, in.DocumentID)
	if err != nil {
		if errors.Is(err, util.ErrInsufficientContent) {
			return ExtractContentOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInsufficientContent, err)
		}
		return ExtractContentOutput{}, err
	}
	return ExtractContentOutput{
		Text:      util.TruncateRunes(out.Text, maxPayloadRunes),
		Source:    out.Source,
		WordCount: out.WordCount,
	}, nil
}

func (a *Activities) AnalyzeContentActivity(ctx context.Context, in AnalyzeContentInput) (AnalyzeContentOutput, error) {
	res, err := a.proc.Analyze(ctx, in.DocumentID, in.Text, in.Model)
	if err != nil {
		if errors.Is(err, ingest.ErrAnalyzerFailed) {
			return AnalyzeContentOutput{}, temporal.NewApplicationErrorWithCause(err.Error(), ErrTypeAnalyzerError, err)
		}
		if errors.Is(err, util.ErrAnalysisFailure) {
			return AnalyzeContentOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeAnalysisFailure, err)
		}
		return AnalyzeContentOutput{}, err
	}
	return AnalyzeContentOutput{Analysis: *res}, nil
}

func (a *Activities) ApplyAnalysisActivity(ctx context.Context, in ApplyAnalysisInput) error {
	_, err := a.proc.Apply(ctx, in.DocumentID, in.Text, in.Analysis)
	return err
}

func (a *Activities) MarkAnalysisFailedActivity(ctx context.Context, in MarkAnalysisFailedInput) error {
	return a.proc.Fail(ctx, in.DocumentID, failure{reason: in.Reason, retryable: in.Retryable})
}

// failure carries a workflow-side failure reason back into the processor.
type failure struct {
	reason    string
	retryable bool
}

func (f failure) Error() string { return f.reason }

func (f failure) Unwrap() error {
	if f.retryable {
		return nil
	}
	return util.ErrAnalysisFailure
}

func (a *Activities) WriteBatchReportActivity(ctx context.Context, in WriteBatchReportInput) (WriteBatchReportOutput, error) {
	if in.RunID == "" {
		return WriteBatchReportOutput{}, fmt.Errorf("batch report: run id required")
	}
	path := filepath.Join(util.SafeJoin(filepath.Join(a.dataOutRoot, "batches"), in.RunID), "report.json")
	if err := util.WriteJSONAtomic(path, in); err != nil {
		return WriteBatchReportOutput{}, fmt.Errorf("write batch report: %w", err)
	}
	a.logger.Info("batch finished", "run_id", in.RunID, "total", in.Total, "successes", in.Successes, "failures", in.Failures)
	a.bus.Publish(ctx, events.New(events.BatchFinished, "batch", in.RunID, map[string]any{
		"total": in.Total, "successes": in.Successes, "failures": in.Failures, "report": path,
	}))
	return WriteBatchReportOutput{Path: path}, nil
}
