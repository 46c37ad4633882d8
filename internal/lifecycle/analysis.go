package lifecycle

import (
	"context"
	"fmt"

	"juriscope/internal/events"
	"juriscope/internal/models"
	"juriscope/internal/reconcile"
	"juriscope/internal/storage"
	"juriscope/internal/util"
)

// AnalysisResult is the reconciled outcome written back on completion.
type AnalysisResult struct {
	Fields       reconcile.Fields `json:"fields"`
	PrimaryTopic string           `json:"primary_topic,omitempty"`
	Summary      string           `json:"summary,omitempty"`
	Decision     string           `json:"decision,omitempty"`
	Model        string           `json:"model,omitempty"`
}

// StartAnalysis moves the analysis sub-state to PROCESSING from any state.
func (s *Service) StartAnalysis(ctx context.Context, id string) (models.Document, error) {
	return s.updateAnalysis(ctx, id, func(d *models.Document) error {
		d.AnalysisStatus = models.AnalysisProcessing
		d.AnalysisError = ""
		return nil
	})
}

func (s *Service) CompleteAnalysis(ctx context.Context, id string, r AnalysisResult) (models.Document, error) {
	d, err := s.updateAnalysis(ctx, id, func(d *models.Document) error {
		if d.AnalysisStatus != models.AnalysisProcessing {
			return analysisConflict("complete analysis", *d)
		}
		now := s.clock()
		applyFields(d, r.Fields)
		if r.PrimaryTopic != "" {
			d.PrimaryTopic = util.TruncateRunes(r.PrimaryTopic, 500)
		}
		if r.Summary != "" {
			d.AISummary = r.Summary
		}
		if r.Decision != "" {
			d.Decision = r.Decision
		}
		d.AIModel = r.Model
		d.AnalysisStatus = models.AnalysisCompleted
		d.AnalysisError = ""
		d.AnalyzedAt = &now
		return nil
	})
	if err != nil {
		return models.Document{}, err
	}
	s.metrics.Analysis(string(models.AnalysisCompleted))
	s.emit(ctx, events.AnalysisCompleted, entityDocument, id, systemActor, map[string]any{"model": r.Model})
	return d, nil
}

// FailAnalysis records a failed attempt. Retryable failures land in ERROR and
// are picked up by the next batch; terminal ones land in FAILED.
func (s *Service) FailAnalysis(ctx context.Context, id, reason string, retryable bool) (models.Document, error) {
	status := models.AnalysisFailed
	if retryable {
		status = models.AnalysisError
	}
	d, err := s.updateAnalysis(ctx, id, func(d *models.Document) error {
		if d.AnalysisStatus != models.AnalysisProcessing {
			return analysisConflict("fail analysis", *d)
		}
		d.AnalysisStatus = status
		d.AnalysisError = util.TruncateRunes(reason, 1000)
		return nil
	})
	if err != nil {
		return models.Document{}, err
	}
	s.metrics.Analysis(string(status))
	s.emit(ctx, events.AnalysisFailed, entityDocument, id, systemActor, map[string]any{
		"status": string(status), "reason": reason,
	})
	return d, nil
}

func (s *Service) updateAnalysis(ctx context.Context, id string, fn func(*models.Document) error) (models.Document, error) {
	var out models.Document
	err := s.store.WithTx(ctx, func(repo storage.Repo) error {
		d, err := repo.GetDocument(ctx, id)
		if err != nil {
			return fmt.Errorf("load document %s: %w", id, err)
		}
		if err := fn(&d); err != nil {
			return err
		}
		if err := repo.UpdateDocument(ctx, d); err != nil {
			return fmt.Errorf("update document %s: %w", id, err)
		}
		out = d
		return nil
	})
	return out, err
}
