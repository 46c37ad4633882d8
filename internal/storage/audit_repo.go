package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"juriscope/internal/models"
)

func (r *pgRepo) AppendAudit(ctx context.Context, e models.AuditLog) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.q.Exec(ctx, `
INSERT INTO audit_logs(id, actor, action, entity_type, entity_id, description)
VALUES ($1, $2, $3, $4, $5, NULLIF($6,''))`,
		e.ID, e.Actor, e.Action, e.EntityType, e.EntityID, e.Description)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", mapError(err))
	}
	return nil
}

func (r *pgRepo) ListAudit(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	rows, err := r.q.Query(ctx, `
SELECT id::text, actor, action, entity_type, entity_id, COALESCE(description,''), created_at
FROM audit_logs
WHERE entity_type=$1 AND entity_id=$2
ORDER BY created_at, id`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", mapError(err))
	}
	defer rows.Close()

	out := make([]models.AuditLog, 0)
	for rows.Next() {
		var e models.AuditLog
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.EntityType, &e.EntityID, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return out, nil
}
