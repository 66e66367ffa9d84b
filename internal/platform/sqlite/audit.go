package sqlite

import (
	"context"
	"database/sql"

	"hrflow/internal/domain/audit"
)

type Audit struct {
	DB *sql.DB
}

func (s *Audit) Insert(ctx context.Context, evt audit.Event) error {
	_, err := s.DB.ExecContext(ctx, `
    INSERT INTO audit_events (id, actor, actor_role, action, entity_type, entity_id, before_json, after_json, request_id, ip, created_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
  `, evt.ID, evt.ActorID, evt.ActorRole, evt.Action, evt.EntityType, evt.EntityID, audit.JSONArg(evt.Before), audit.JSONArg(evt.After), evt.RequestID, evt.IP, evt.CreatedAt.UTC())
	return err
}

func (s *Audit) Count(ctx context.Context, filter audit.Filter) (int, error) {
	where, args := audit.Where(filter, question)
	var total int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(1) FROM audit_events"+where, args...).Scan(&total)
	return total, err
}

func (s *Audit) List(ctx context.Context, filter audit.Filter, includeDetails bool, limit, offset int) ([]audit.Event, error) {
	where, args := audit.Where(filter, question)
	args = append(args, limit, offset)
	rows, err := s.DB.QueryContext(ctx, "SELECT "+audit.Columns(includeDetails)+" FROM audit_events"+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []audit.Event{}
	for rows.Next() {
		var evt audit.Event
		if err := rows.Scan(audit.Targets(&evt, includeDetails)...); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}
