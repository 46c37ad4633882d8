package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"juriscope/internal/logging"
)

// NATSBus publishes events as JSON on <subject>.<type>.
type NATSBus struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func ConnectNATS(url, subject string, logger *slog.Logger) (*NATSBus, error) {
	conn, err := nats.Connect(url,
		nats.Name("juriscope"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSBus{conn: conn, subject: subject, logger: logging.OrDefault(logger)}, nil
}

func (b *NATSBus) Publish(ctx context.Context, e Event) {
	if ctx.Err() != nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		b.logger.Warn("encode event", "type", e.Type, "error", err)
		return
	}
	if err := b.conn.Publish(b.subject+"."+string(e.Type), data); err != nil {
		b.logger.Warn("publish event", "type", e.Type, "entity_id", e.EntityID, "error", err)
	}
}

// Stop flushes pending messages and closes the connection.
func (b *NATSBus) Stop() {
	if b == nil || b.conn == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.logger.Warn("drain nats", "error", err)
	}
	b.conn.Close()
}
