package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hrflow/internal/domain/eligibility"
	"hrflow/internal/domain/employee"
	"hrflow/internal/domain/requests"
)

type Requests struct {
	DB *sql.DB
}

func noCast(col string) string { return col }

// InTx runs fn in an immediate transaction, so concurrent creators queue on
// the database write lock.
func (s *Requests) InTx(ctx context.Context, fn func(requests.TxStore) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&requestsTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type requestsTx struct {
	tx *sql.Tx
}

func (t *requestsTx) LockEmployee(ctx context.Context, employeeID string) error {
	var id string
	if err := t.tx.QueryRowContext(ctx, "SELECT id FROM employees WHERE id = ?", employeeID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lock employee %s: %w", employeeID, employee.ErrEmployeeNotFound)
		}
		return fmt.Errorf("lock employee %s: %w", employeeID, err)
	}
	return nil
}

func (t *requestsTx) History(ctx context.Context, employeeID string, typ requests.Type) (eligibility.History, error) {
	return loadHistory(ctx, t.tx, employeeID, typ)
}

func (t *requestsTx) InsertRequest(ctx context.Context, r requests.Request) error {
	_, err := t.tx.ExecContext(ctx, `
    INSERT INTO requests (id, employee_id, company_id, type, service, status, result, submission_date, is_exceptional, exception_reason)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
  `, r.ID, r.EmployeeID, r.CompanyID, string(r.Type), r.Service, string(r.Status), string(r.Result), r.SubmissionDate.UTC(), r.IsExceptional, r.ExceptionReason)
	if isUniqueViolation(err) {
		return requests.ErrActiveRequestExists
	}
	return err
}

func (t *requestsTx) InsertDetail(ctx context.Context, r requests.Request) error {
	table, cols, args, err := requests.DetailValues(r)
	if err != nil {
		return err
	}
	for i, a := range args {
		if ts, ok := a.(time.Time); ok {
			args[i] = ts.UTC()
		}
	}
	_, err = t.tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders(len(cols))), args...)
	return err
}

func (s *Requests) History(ctx context.Context, employeeID string, typ requests.Type) (eligibility.History, error) {
	return loadHistory(ctx, s.DB, employeeID, typ)
}

func loadHistory(ctx context.Context, q queryer, employeeID string, typ requests.Type) (eligibility.History, error) {
	var h eligibility.History
	if err := q.QueryRowContext(ctx, `
    SELECT EXISTS (SELECT 1 FROM requests WHERE employee_id = ? AND type = ? AND status = 'en_cours')
  `, employeeID, string(typ)).Scan(&h.HasActive); err != nil {
		return h, err
	}

	var last time.Time
	err := q.QueryRowContext(ctx, `
    SELECT submission_date FROM requests
    WHERE employee_id = ? AND type = ? AND status = 'traite'
    ORDER BY submission_date DESC
    LIMIT 1
  `, employeeID, string(typ)).Scan(&last)
	switch {
	case err == nil:
		h.LastResolvedAt = &last
	case !errors.Is(err, sql.ErrNoRows):
		return h, err
	}
	if typ != requests.TypeLeave {
		return h, nil
	}

	rows, err := q.QueryContext(ctx, `
    SELECT l.start_date, l.end_date, l.leave_type, (r.status = 'traite' AND r.result = 'valide')
    FROM leave_request_details l
    JOIN requests r ON r.id = l.request_id
    WHERE r.employee_id = ? AND r.result <> 'refused'
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

func (s *Requests) Get(ctx context.Context, id string) (requests.Request, error) {
	var row requests.Row
	err := s.DB.QueryRowContext(ctx, "SELECT "+requests.SelectColumns(noCast)+requests.FromJoined+" WHERE r.id = ?", id).Scan(row.Targets()...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return requests.Request{}, requests.ErrRequestNotFound
		}
		return requests.Request{}, err
	}
	return row.Build()
}

func (s *Requests) ListByEmployee(ctx context.Context, employeeID string, typ requests.Type) ([]requests.Request, error) {
	return s.list(ctx, " WHERE r.employee_id = ? AND r.type = ? ORDER BY r.submission_date DESC", employeeID, string(typ))
}

func (s *Requests) List(ctx context.Context, f requests.ListFilter) ([]requests.Request, error) {
	where := []string{"r.type = ?"}
	args := []any{string(f.Type)}
	if f.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, string(f.Status))
	}
	if f.CompanyID != "" {
		where = append(where, "r.company_id = ?")
		args = append(args, f.CompanyID)
	}
	query := " WHERE " + strings.Join(where, " AND ") + " ORDER BY r.submission_date DESC, r.id"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}
	return s.list(ctx, query, args...)
}

func (s *Requests) ListExceptional(ctx context.Context, f requests.ExceptionalFilter) ([]requests.Request, error) {
	where := []string{"r.is_exceptional"}
	var args []any
	if f.CompanyID != "" {
		where = append(where, "r.company_id = ?")
		args = append(args, f.CompanyID)
	}
	if f.Type != "" {
		where = append(where, "r.type = ?")
		args = append(args, string(f.Type))
	}
	if f.From != nil {
		where = append(where, "r.submission_date >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		where = append(where, "r.submission_date < ?")
		args = append(args, f.To.UTC())
	}
	query := " WHERE " + strings.Join(where, " AND ") + " ORDER BY r.submission_date DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}
	return s.list(ctx, query, args...)
}

func (s *Requests) list(ctx context.Context, tail string, args ...any) ([]requests.Request, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+requests.SelectColumns(noCast)+requests.FromJoined+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []requests.Request{}
	for rows.Next() {
		var row requests.Row
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

func (s *Requests) Resolve(ctx context.Context, id string, result requests.Result, at time.Time) error {
	res, err := s.DB.ExecContext(ctx, `
    UPDATE requests SET status = 'traite', result = ?, result_date = ?
    WHERE id = ? AND status = 'en_cours'
  `, string(result), at.UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	var exists bool
	if err := s.DB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM requests WHERE id = ?)", id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return requests.ErrAlreadyResolved
	}
	return requests.ErrRequestNotFound
}

func (s *Requests) Stats(ctx context.Context, typ requests.Type) (requests.Stats, error) {
	st := requests.Stats{Type: typ, ApprovedAmount: decimal.Zero}
	if err := s.DB.QueryRowContext(ctx, `
    SELECT
      COUNT(1),
      COUNT(1) FILTER (WHERE status = 'en_cours'),
      COUNT(1) FILTER (WHERE status = 'traite' AND result = 'valide'),
      COUNT(1) FILTER (WHERE status = 'traite' AND result = 'refused')
    FROM requests
    WHERE type = ?
  `, string(typ)).Scan(&st.Total, &st.Pending, &st.Approved, &st.Rejected); err != nil {
		return st, err
	}
	if typ == requests.TypeLeave {
		return st, s.approvedLeaveDays(ctx, &st)
	}

	table := requests.AmountTable(typ)
	if table == "" {
		return st, nil
	}
	// Amounts are TEXT here; sum them exactly in Go rather than as SQLite floats.
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
    SELECT d.amount FROM %s d
    JOIN requests r ON r.id = d.request_id
    WHERE r.status = 'traite' AND r.result = 'valide'
  `, table))
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return st, err
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return st, err
		}
		st.ApprovedAmount = st.ApprovedAmount.Add(amount)
	}
	return st, rows.Err()
}

func (s *Requests) approvedLeaveDays(ctx context.Context, st *requests.Stats) error {
	rows, err := s.DB.QueryContext(ctx, `
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
