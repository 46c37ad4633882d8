// Package lifecycle owns the document curation state machine, the analysis
// sub-state and article publication. Every transition commits in one storage
// transaction together with its audit record; events go out after commit.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"juriscope/internal/events"
	"juriscope/internal/logging"
	"juriscope/internal/metrics"
	"juriscope/internal/models"
	"juriscope/internal/positioning"
	"juriscope/internal/storage"
	"juriscope/internal/util"
)

// ErrPlacementFailed means the article was published but could not be placed
// in the general section. PlaceInGeneral can be retried.
var ErrPlacementFailed = errors.New("general placement failed")

const (
	entityDocument = "document"
	entityArticle  = "article"
	systemActor    = "system"
)

type Service struct {
	store   storage.Store
	engine  *positioning.Engine
	bus     events.Bus
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	allowReadyWithoutDraft bool
}

type Option func(*Service)

func WithBus(b events.Bus) Option { return func(s *Service) { s.bus = b } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithReadyWithoutDraft lets an approval promote straight to READY, building
// the article from the document's own title and summary.
func WithReadyWithoutDraft(v bool) Option { return func(s *Service) { s.allowReadyWithoutDraft = v } }

func NewService(store storage.Store, engine *positioning.Engine, opts ...Option) *Service {
	s := &Service{store: store, engine: engine, bus: events.Nop{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	s.logger = logging.OrDefault(s.logger)
	if s.engine == nil {
		s.engine = positioning.New(s.logger)
	}
	if s.bus == nil {
		s.bus = events.Nop{}
	}
	return s
}

func (s *Service) Store() storage.Store { return s.store }

func (s *Service) clock() time.Time { return s.now().UTC() }

func (s *Service) audit(ctx context.Context, repo storage.Repo, actor, action, entityType, entityID, desc string) error {
	if actor == "" {
		actor = systemActor
	}
	err := repo.AppendAudit(ctx, models.AuditLog{
		Actor:       actor,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: desc,
	})
	if err != nil {
		return fmt.Errorf("append audit %s: %w", action, err)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, t events.Type, entityType, id, actor string, data map[string]any) {
	e := events.New(t, entityType, id, data)
	e.Actor = actor
	s.bus.Publish(ctx, e)
}

func documentConflict(op string, d models.Document) error {
	return &util.ConflictError{Entity: entityDocument, ID: d.ID, Status: string(d.Status), Op: op}
}

func analysisConflict(op string, d models.Document) error {
	status := string(d.AnalysisStatus)
	if status == "" {
		status = "NONE"
	}
	return &util.ConflictError{Entity: entityDocument, ID: d.ID, Status: "analysis " + status, Op: op}
}

func articleConflict(op string, a models.Article) error {
	return &util.ConflictError{Entity: entityArticle, ID: a.ID, Status: string(a.Status), Op: op}
}
