package audit

import (
	"context"
	"fmt"

	"hrflow/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Insert(ctx context.Context, evt Event) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (id, actor, actor_role, action, entity_type, entity_id, before_json, after_json, request_id, ip, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
  `, evt.ID, evt.ActorID, evt.ActorRole, evt.Action, evt.EntityType, evt.EntityID, JSONArg(evt.Before), JSONArg(evt.After), evt.RequestID, evt.IP, evt.CreatedAt)
	return err
}

func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := Where(filter, dollar)
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM audit_events"+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) List(ctx context.Context, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	where, args := Where(filter, dollar)
	query := "SELECT " + Columns(includeDetails) + " FROM audit_events" + where
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var evt Event
		if err := rows.Scan(Targets(&evt, includeDetails)...); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func dollar(n int) string { return fmt.Sprintf("$%d", n) }

// Columns is the select list matching Targets.
func Columns(includeDetails bool) string {
	cols := "id, actor, actor_role, action, entity_type, entity_id, request_id, ip, created_at"
	if includeDetails {
		cols += ", before_json, after_json"
	}
	return cols
}

func Targets(evt *Event, includeDetails bool) []any {
	targets := []any{&evt.ID, &evt.ActorID, &evt.ActorRole, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt}
	if includeDetails {
		targets = append(targets, (*[]byte)(&evt.Before), (*[]byte)(&evt.After))
	}
	return targets
}

// Where renders filter as a WHERE clause; placeholder formats the nth bind parameter.
func Where(filter Filter, placeholder func(n int) string) (string, []any) {
	var clauses []string
	var args []any
	add := func(col, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		clauses = append(clauses, col+" = "+placeholder(len(args)))
	}
	add("action", filter.Action)
	add("entity_type", filter.EntityType)
	add("entity_id", filter.EntityID)
	add("actor", filter.Actor)
	add("actor_role", filter.ActorRole)
	if len(clauses) == 0 {
		return "", nil
	}
	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}

// JSONArg binds raw JSON, mapping empty payloads to NULL.
func JSONArg(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
