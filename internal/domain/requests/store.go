package requests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"hrflow/internal/domain/eligibility"
	"hrflow/internal/domain/employee"
	"hrflow/internal/platform/db"
	"hrflow/internal/platform/querier"
)

// Store is the Postgres implementation of StoreAPI.
type Store struct {
	DB querier.TxBeginner
}

func NewStore(db querier.TxBeginner) *Store {
	return &Store{DB: db}
}

func pgText(col string) string { return col + "::text" }

func (s *Store) InTx(ctx context.Context, fn func(TxStore) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type txStore struct {
	tx pgx.Tx
}

func (t *txStore) LockEmployee(ctx context.Context, employeeID string) error {
	var id string
	if err := t.tx.QueryRow(ctx, "SELECT id FROM employees WHERE id = $1 FOR UPDATE", employeeID).Scan(&id); err != nil {
		if db.IsNoRows(err) {
			return fmt.Errorf("lock employee %s: %w", employeeID, employee.ErrEmployeeNotFound)
		}
		return fmt.Errorf("lock employee %s: %w", employeeID, err)
	}
	return nil
}

func (t *txStore) History(ctx context.Context, employeeID string, typ Type) (eligibility.History, error) {
	return loadHistory(ctx, t.tx, employeeID, typ)
}

func (t *txStore) InsertRequest(ctx context.Context, r Request) error {
	_, err := t.tx.Exec(ctx, `
    INSERT INTO requests (id, employee_id, company_id, type, service, status, result, submission_date, is_exceptional, exception_reason)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
  `, r.ID, r.EmployeeID, r.CompanyID, string(r.Type), r.Service, string(r.Status), string(r.Result), r.SubmissionDate, r.IsExceptional, r.ExceptionReason)
	if db.IsUniqueViolation(err, ActiveIndex) {
		return ErrActiveRequestExists
	}
	return err
}

func (t *txStore) InsertDetail(ctx context.Context, r Request) error {
	table, cols, args, err := DetailValues(r)
	if err != nil {
		return err
	}
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	_, err = t.tx.Exec(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(placeholders, ", ")), args...)
	return err
}

func (s *Store) History(ctx context.Context, employeeID string, typ Type) (eligibility.History, error) {
	return loadHistory(ctx, s.DB, employeeID, typ)
}

func loadHistory(ctx context.Context, q querier.Querier, employeeID string, typ Type) (eligibility.History, error) {
	var h eligibility.History
	if err := q.QueryRow(ctx, `
    SELECT
      EXISTS (SELECT 1 FROM requests WHERE employee_id = $1 AND type = $2 AND status = 'en_cours'),
      (SELECT MAX(submission_date) FROM requests WHERE employee_id = $1 AND type = $2 AND status = 'traite')
  `, employeeID, string(typ)).Scan(&h.HasActive, &h.LastResolvedAt); err != nil {
		return h, err
	}
	if typ != TypeLeave {
		return h, nil
	}

	rows, err := q.Query(ctx, `
    SELECT l.start_date, l.end_date, l.leave_type, (r.status = 'traite' AND r.result = 'valide')
    FROM leave_request_details l
    JOIN requests r ON r.id = l.request_id
    WHERE r.employee_id = $1 AND r.result <> 'refused'
    ORDER BY l.start_date
  `, employeeID)
	if err != nil {
		return h, err
	}
	defer rows.Close()
	for rows.Next() {
		var w eligibility.LeaveWindow
		if err := rows.Scan(&w.Start, &w.End, &w.LeaveType, &w.Approved); err != nil {
			return h, err
		}
		h.Leaves = append(h.Leaves, w)
	}
	return h, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Request, error) {
	var row Row
	err := s.DB.QueryRow(ctx, "SELECT "+SelectColumns(pgText)+FromJoined+" WHERE r.id = $1", id).Scan(row.Targets()...)
	if err != nil {
		if db.IsNoRows(err) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, err
	}
	return row.Build()
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID string, typ Type) ([]Request, error) {
	return s.list(ctx, " WHERE r.employee_id = $1 AND r.type = $2 ORDER BY r.submission_date DESC", employeeID, string(typ))
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]Request, error) {
	where := []string{"r.type = $1"}
	args := []any{string(f.Type)}
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.Status != "" {
		add("r.status = $%d", string(f.Status))
	}
	if f.CompanyID != "" {
		add("r.company_id = $%d", f.CompanyID)
	}
	query := " WHERE " + strings.Join(where, " AND ") + " ORDER BY r.submission_date DESC, r.id"
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return s.list(ctx, query, args...)
}

func (s *Store) ListExceptional(ctx context.Context, f ExceptionalFilter) ([]Request, error) {
	where := []string{"r.is_exceptional"}
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.CompanyID != "" {
		add("r.company_id = $%d", f.CompanyID)
	}
	if f.Type != "" {
		add("r.type = $%d", string(f.Type))
	}
	if f.From != nil {
		add("r.submission_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("r.submission_date < $%d", *f.To)
	}
	query := " WHERE " + strings.Join(where, " AND ") + " ORDER BY r.submission_date DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return s.list(ctx, query, args...)
}

func (s *Store) list(ctx context.Context, tail string, args ...any) ([]Request, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+SelectColumns(pgText)+FromJoined+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Request{}
	for rows.Next() {
		var row Row
		if err := rows.Scan(row.Targets()...); err != nil {
			return nil, err
		}
		r, err := row.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Resolve(ctx context.Context, id string, result Result, at time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE requests SET status = 'traite', result = $2, result_date = $3
    WHERE id = $1 AND status = 'en_cours'
  `, id, string(result), at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM requests WHERE id = $1)", id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrAlreadyResolved
	}
	return ErrRequestNotFound
}

func (s *Store) Stats(ctx context.Context, typ Type) (Stats, error) {
	st := Stats{Type: typ, ApprovedAmount: decimal.Zero}
	if err := s.DB.QueryRow(ctx, `
    SELECT
      COUNT(1),
      COUNT(1) FILTER (WHERE status = 'en_cours'),
      COUNT(1) FILTER (WHERE status = 'traite' AND result = 'valide'),
      COUNT(1) FILTER (WHERE status = 'traite' AND result = 'refused')
    FROM requests
    WHERE type = $1
  `, string(typ)).Scan(&st.Total, &st.Pending, &st.Approved, &st.Rejected); err != nil {
		return st, err
	}
	if typ == TypeLeave {
		return st, s.approvedLeaveDays(ctx, &st)
	}

	table := AmountTable(typ)
	if table == "" {
		return st, nil
	}
	var total *string
	if err := s.DB.QueryRow(ctx, fmt.Sprintf(`
    SELECT SUM(d.amount)::text
    FROM %s d
    JOIN requests r ON r.id = d.request_id
    WHERE r.status = 'traite' AND r.result = 'valide'
  `, table)).Scan(&total); err != nil {
		return st, err
	}
	if total != nil {
		amount, err := decimal.NewFromString(*total)
		if err != nil {
			return st, err
		}
		st.ApprovedAmount = amount
	}
	return st, nil
}

func (s *Store) approvedLeaveDays(ctx context.Context, st *Stats) error {
	rows, err := s.DB.Query(ctx, `
    SELECT l.leave_type, l.start_date, l.end_date
    FROM leave_request_details l
    JOIN requests r ON r.id = l.request_id
    WHERE r.status = 'traite' AND r.result = 'valide'
  `)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			leaveType  string
			start, end time.Time
		)
		if err := rows.Scan(&leaveType, &start, &end); err != nil {
			return err
		}
		st.AddApprovedLeave(leaveType, start, end)
	}
	return rows.Err()
}

// AmountTable is the detail table carrying amounts for typ, or "" when typ has none.
func AmountTable(typ Type) string {
	switch typ {
	case TypeAdvance:
		return "advance_request_details"
	case TypeCredit:
		return "credit_request_details"
	}
	return ""
}
