// Package events delivers pipeline notifications after state changes commit.
// Delivery is best effort: publishers never see failures.
package events

import (
	"context"
	"time"
)

type Type string

const (
	DocumentIngested   Type = "document.ingested"
	DocumentCurated    Type = "document.curated"
	DocumentArchived   Type = "document.archived"
	AnalysisCompleted  Type = "analysis.completed"
	AnalysisFailed     Type = "analysis.failed"
	ArticleReady       Type = "article.ready"
	ArticlePublished   Type = "article.published"
	GeneralReordered   Type = "general.reordered"
	IntegrityCorrupted Type = "integrity.corrupted"
	BatchFinished      Type = "batch.finished"
)

type Event struct {
	Type       Type           `json:"type"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Actor      string         `json:"actor,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	At         time.Time      `json:"at"`
}

func New(t Type, entityType, entityID string, data map[string]any) Event {
	return Event{Type: t, EntityType: entityType, EntityID: entityID, Data: data, At: time.Now().UTC()}
}

type Bus interface {
	Publish(ctx context.Context, e Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Fanout publishes to every bus in order.
type Fanout []Bus

func (f Fanout) Publish(ctx context.Context, e Event) {
	for _, b := range f {
		if b != nil {
			b.Publish(ctx, e)
		}
	}
}
