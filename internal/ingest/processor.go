// Package ingest runs the per-document analysis steps and the intake of
// scraped rulings. The Temporal activities call the same steps one by one.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"juriscope/internal/blob"
	"juriscope/internal/events"
	"juriscope/internal/extract"
	"juriscope/internal/integrity"
	"juriscope/internal/lifecycle"
	"juriscope/internal/logging"
	"juriscope/internal/metrics"
	"juriscope/internal/models"
	"juriscope/internal/providers"
	"juriscope/internal/reconcile"
	"juriscope/internal/storage"
	"juriscope/internal/util"
)

// URLVerifier answers whether a remote document is reachable.
type URLVerifier interface {
	Verify(ctx context.Context, url string) bool
}

type Deps struct {
	Store     storage.Store
	Lifecycle *lifecycle.Service
	Extractor *extract.Extractor
	Analyzer  providers.Analyzer
	// Fetcher and Verifier serve intake downloads; Blobs keeps the binaries.
	Fetcher  extract.Fetcher
	Verifier URLVerifier
	Blobs    blob.Store
	Bus      events.Bus
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

type Processor struct {
	store     storage.Store
	lifecycle *lifecycle.Service
	extractor *extract.Extractor
	analyzer  providers.Analyzer
	fetcher   extract.Fetcher
	verifier  URLVerifier
	blobs     blob.Store
	bus       events.Bus
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewProcessor(d Deps) *Processor {
	p := &Processor{
		store:     d.Store,
		lifecycle: d.Lifecycle,
		extractor: d.Extractor,
		analyzer:  d.Analyzer,
		fetcher:   d.Fetcher,
		verifier:  d.Verifier,
		blobs:     d.Blobs,
		bus:       d.Bus,
		metrics:   d.Metrics,
		logger:    logging.OrDefault(d.Logger),
		now:       time.Now,
	}
	if p.bus == nil {
		p.bus = events.Nop{}
	}
	if p.extractor == nil {
		p.extractor = extract.New(d.Fetcher, extract.WithLogger(p.logger))
	}
	if p.lifecycle == nil {
		p.lifecycle = lifecycle.NewService(d.Store, nil, lifecycle.WithBus(p.bus), lifecycle.WithMetrics(d.Metrics), lifecycle.WithLogger(p.logger))
	}
	if p.analyzer == nil {
		p.analyzer = providers.NewMockProvider()
	}
	return p
}

type ExtractOutput struct {
	Text      string         `json:"text"`
	Source    extract.Source `json:"source"`
	WordCount int            `json:"word_count,omitempty"`
}

type Outcome struct {
	DocumentID string         `json:"document_id"`
	Status     string         `json:"status"`
	Source     extract.Source `json:"source,omitempty"`
	Model      string         `json:"model,omitempty"`
	Error      string         `json:"error,omitempty"`
}

const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

func (p *Processor) MarkProcessing(ctx context.Context, id string) error {
	_, err := p.lifecycle.StartAnalysis(ctx, id)
	return err
}

// Extract finds analyzable text. Text that came from the network is stored
// as the document's full text and the checksums are resealed.
func (p *Processor) Extract(ctx context.Context, id string) (ExtractOutput, error) {
	d, err := p.store.GetDocument(ctx, id)
	if err != nil {
		return ExtractOutput{}, fmt.Errorf("load document %s: %w", id, err)
	}
	res, err := p.extractor.Extract(ctx, d)
	if err != nil {
		return ExtractOutput{}, err
	}
	p.metrics.Extracted(string(res.Source))
	if res.Fetched() {
		if err := p.persistFullText(ctx, id, res); err != nil {
			return ExtractOutput{}, err
		}
	}
	return ExtractOutput{Text: res.Text, Source: res.Source, WordCount: res.WordCount}, nil
}

func (p *Processor) persistFullText(ctx context.Context, id string, res extract.Result) error {
	return p.store.WithTx(ctx, func(repo storage.Repo) error {
		d, err := repo.GetDocument(ctx, id)
		if err != nil {
			return fmt.Errorf("load document %s: %w", id, err)
		}
		d.FullTextContent = res.Text
		var file []byte
		switch {
		case d.DocumentPath != "" && p.blobs != nil:
			if file, err = p.blobs.Get(ctx, d.DocumentPath); err != nil {
				p.logger.Warn("stored binary unavailable; sealing without it", "document_id", id, "error", err)
				file = nil
			}
		case p.blobs != nil && len(res.FetchedPayload) > 0:
			path, err := p.blobs.Put(ctx, blobName(d, extract.DetectKind(res.FetchedPayload)), res.FetchedPayload)
			if err != nil {
				return fmt.Errorf("store fetched binary: %w", err)
			}
			d.DocumentPath = path
			file = res.FetchedPayload
		}
		integrity.Seal(&d, file, p.now().UTC())
		if err := repo.UpdateDocument(ctx, d); err != nil {
			return fmt.Errorf("persist full text %s: %w", id, err)
		}
		return nil
	})
}

// Analyze runs the analyzer; a nil analysis is util.ErrAnalysisFailure.
func (p *Processor) Analyze(ctx context.Context, id, text, model string) (*providers.Analysis, error) {
	d, err := p.store.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	start := p.now()
	a, info, err := p.analyzer.Analyze(ctx, providers.AnalyzeRequest{Text: text, Title: d.Title, Model: model})
	p.metrics.ObserveAnalysis(p.now().Sub(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("analyze document %s with %s: %w", id, info.Name, err)
		}
		return nil, fmt.Errorf("analyze document %s with %s: %w: %w", id, info.Name, ErrAnalyzerFailed, err)
	}
	if a == nil {
		return nil, fmt.Errorf("analyze document %s with %s: %w", id, info.Name, util.ErrAnalysisFailure)
	}
	if a.ModelUsed == "" {
		a.ModelUsed = info.Model
	}
	return a, nil
}

// Apply reconciles stored, header and AI values and completes the analysis.
func (p *Processor) Apply(ctx context.Context, id, text string, a providers.Analysis) (models.Document, error) {
	d, err := p.store.GetDocument(ctx, id)
	if err != nil {
		return models.Document{}, fmt.Errorf("load document %s: %w", id, err)
	}
	stored := reconcile.Fields{
		CaseNumber:     d.CaseNumber,
		ReportingJudge: d.ReportingJudge,
		Chamber:        d.Chamber,
		DocketNumber:   d.DocketNumber,
	}
	ai := reconcile.Fields{
		CaseNumber:     a.CaseNumber,
		ReportingJudge: a.ReportingJudge,
		Chamber:        a.Chamber,
		DocketNumber:   a.DocketNumber,
	}
	merged := reconcile.Merge(stored, reconcile.ExtractHeader(text), ai)
	return p.lifecycle.CompleteAnalysis(ctx, id, lifecycle.AnalysisResult{
		Fields:       merged,
		PrimaryTopic: a.PrimaryTopic,
		Summary:      a.Summary,
		Decision:     a.Decision,
		Model:        a.ModelUsed,
	})
}

// Fail records cause on the document. Missing content and analysis failures
// are terminal; storage and other infrastructure errors are left for the next batch.
func (p *Processor) Fail(ctx context.Context, id string, cause error) error {
	_, err := p.lifecycle.FailAnalysis(ctx, id, cause.Error(), Retryable(cause))
	if errors.Is(err, util.ErrConflict) {
		p.logger.Warn("analysis failure not recorded: document not processing", "document_id", id)
		return nil
	}
	return err
}

// ErrAnalyzerFailed marks an error raised by the analyzer itself. It is an
// analysis failure: the document ends FAILED once retries are spent.
var ErrAnalyzerFailed = fmt.Errorf("analyzer raised an error: %w", util.ErrAnalysisFailure)

// Retryable reports whether an analysis failure should be retried by a later batch.
func Retryable(err error) bool {
	return !errors.Is(err, util.ErrInsufficientContent) && !errors.Is(err, util.ErrAnalysisFailure)
}

// ProcessDocument runs the whole analysis in-process.
func (p *Processor) ProcessDocument(ctx context.Context, id, model string) (Outcome, error) {
	out := Outcome{DocumentID: id, Status: OutcomeFailed}
	if err := p.MarkProcessing(ctx, id); err != nil {
		return out, err
	}
	fail := func(err error) (Outcome, error) {
		out.Error = err.Error()
		if ferr := p.Fail(context.WithoutCancel(ctx), id, err); ferr != nil {
			p.logger.Error("record analysis failure", "document_id", id, "error", ferr)
		}
		return out, err
	}
	ex, err := p.Extract(ctx, id)
	if err != nil {
		return fail(err)
	}
	out.Source = ex.Source
	a, err := p.Analyze(ctx, id, ex.Text, model)
	if err != nil {
		return fail(err)
	}
	if _, err := p.Apply(ctx, id, ex.Text, *a); err != nil {
		return fail(err)
	}
	out.Status = OutcomeCompleted
	out.Model = a.ModelUsed
	p.logger.Info("document analyzed", "document_id", id, "source", ex.Source, "model", a.ModelUsed)
	return out, nil
}

// SelectForBatch picks the documents a batch should analyze. Without ids it
// asks storage for reprocessing candidates; explicit ids are filtered by the
// same predicate unless force is set. limit <= 0 means no cap.
func (p *Processor) SelectForBatch(ctx context.Context, ids []string, force bool, limit int) ([]string, error) {
	if len(ids) == 0 {
		docs, err := p.store.ListForReprocessing(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("list reprocessing candidates: %w", err)
		}
		out := make([]string, 0, len(docs))
		for _, d := range docs {
			out = append(out, d.ID)
		}
		return out, nil
	}
	docs, err := p.store.ListDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	byID := make(map[string]models.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		d, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		if !force && !storage.NeedsReprocessing(d) {
			continue
		}
		out = append(out, id)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
