package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hrflow/internal/platform/db"
)

type tableSpec struct {
	table string
	terms []string
}

var tables = map[Type]tableSpec{
	TypeAdvance: {table: "advance_policies", terms: []string{"max_percentage_salary", "cooldown_months_between_advance"}},
	TypeCredit:  {table: "credit_policies", terms: []string{"max_salary_multiplier", "cooldown_months"}},
	TypeLeave:   {table: "leave_policies", terms: []string{"days_per_month_worked", "max_days_per_year", "cooldown_days_between_requests"}},
}

// TableFor exposes the per-type table layout to other Store implementations.
func TableFor(t Type) (table string, terms []string, ok bool) {
	spec, ok := tables[t]
	return spec.table, spec.terms, ok
}

// TermValues returns the term columns of p in TableFor order. Decimals are rendered as strings.
func TermValues(p Policy) []any {
	switch p.Type {
	case TypeAdvance:
		return []any{p.Advance.MaxPercentageSalary.String(), p.Advance.CooldownMonths}
	case TypeCredit:
		return []any{p.Credit.MaxSalaryMultiplier.String(), p.Credit.CooldownMonths}
	case TypeLeave:
		return []any{p.Leave.DaysPerMonthWorked.String(), p.Leave.MaxDaysPerYear, p.Leave.CooldownDays}
	}
	return nil
}

// Row is a raw policy row with decimals still in text form.
type Row struct {
	ID                 string
	CompanyID          string
	DepartmentID       *string
	IsActive           bool
	MinMonthsSeniority int
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Rate               string
	IntA               int
	IntB               int
}

// Build converts a raw row into a Policy of type t.
func (r Row) Build(t Type) (Policy, error) {
	rate, err := decimal.NewFromString(r.Rate)
	if err != nil {
		return Policy{}, fmt.Errorf("policy %s: parse rate: %w", r.ID, err)
	}
	p := Policy{
		ID:                 r.ID,
		Type:               t,
		CompanyID:          r.CompanyID,
		DepartmentID:       r.DepartmentID,
		IsActive:           r.IsActive,
		MinMonthsSeniority: r.MinMonthsSeniority,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	switch t {
	case TypeAdvance:
		p.Advance = &AdvanceTerms{MaxPercentageSalary: rate, CooldownMonths: r.IntA}
	case TypeCredit:
		p.Credit = &CreditTerms{MaxSalaryMultiplier: rate, CooldownMonths: r.IntA}
	case TypeLeave:
		p.Leave = &LeaveTerms{DaysPerMonthWorked: rate, MaxDaysPerYear: r.IntA, CooldownDays: r.IntB}
	}
	return p, nil
}

// ScanTargets returns destinations matching the column order of the policy select list for t.
func (r *Row) ScanTargets(t Type) []any {
	targets := []any{&r.ID, &r.CompanyID, &r.DepartmentID, &r.IsActive, &r.MinMonthsSeniority, &r.CreatedAt, &r.UpdatedAt, &r.Rate, &r.IntA}
	if t == TypeLeave {
		targets = append(targets, &r.IntB)
	}
	return targets
}

func selectColumns(t Type) string {
	spec := tables[t]
	cols := []string{"id", "company_id", "department_id", "is_active", "min_months_seniority", "created_at", "updated_at", spec.terms[0] + "::text"}
	cols = append(cols, spec.terms[1:]...)
	return strings.Join(cols, ", ")
}

func specOf(t Type) (tableSpec, error) {
	spec, ok := tables[t]
	if !ok {
		return tableSpec{}, fmt.Errorf("unknown policy type %q", t)
	}
	return spec, nil
}

func (s *Store) Resolve(ctx context.Context, t Type, companyID string, departmentID *string) (Policy, error) {
	spec, err := specOf(t)
	if err != nil {
		return Policy{}, err
	}
	query := fmt.Sprintf(`
    SELECT %s
    FROM %s
    WHERE company_id = $1 AND (department_id IS NULL OR department_id = $2)
    ORDER BY department_id IS NOT NULL DESC
    LIMIT 1
  `, selectColumns(t), spec.table)
	return s.scanOne(ctx, t, query, companyID, departmentID)
}

func (s *Store) Get(ctx context.Context, t Type, id string) (Policy, error) {
	spec, err := specOf(t)
	if err != nil {
		return Policy{}, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectColumns(t), spec.table)
	return s.scanOne(ctx, t, query, id)
}

func (s *Store) ListByCompany(ctx context.Context, t Type, companyID string) ([]Policy, error) {
	spec, err := specOf(t)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.Query(ctx, fmt.Sprintf(`
    SELECT %s
    FROM %s
    WHERE company_id = $1
    ORDER BY department_id NULLS FIRST, created_at
  `, selectColumns(t), spec.table), companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Policy{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(r.ScanTargets(t)...); err != nil {
			return nil, err
		}
		p, err := r.Build(t)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) LookupScope(ctx context.Context, companyID string, departmentID *string) (Scope, error) {
	var scope Scope
	if err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM companies WHERE id = $1)", companyID).Scan(&scope.CompanyExists); err != nil {
		return Scope{}, err
	}
	if departmentID == nil {
		return scope, nil
	}
	err := s.DB.QueryRow(ctx, "SELECT company_id FROM departments WHERE id = $1", *departmentID).Scan(&scope.DepartmentCompanyID)
	if err != nil && !db.IsNoRows(err) {
		return Scope{}, err
	}
	return scope, nil
}

func (s *Store) ScopeTaken(ctx context.Context, t Type, companyID string, departmentID *string) (bool, error) {
	spec, err := specOf(t)
	if err != nil {
		return false, err
	}
	var count int
	if err := s.DB.QueryRow(ctx, fmt.Sprintf(`
    SELECT COUNT(1) FROM %s
    WHERE company_id = $1 AND department_id IS NOT DISTINCT FROM $2
  `, spec.table), companyID, departmentID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Insert(ctx context.Context, p Policy) error {
	spec, err := specOf(p.Type)
	if err != nil {
		return err
	}
	cols := append([]string{"id", "company_id", "department_id", "is_active", "min_months_seniority", "created_at", "updated_at"}, spec.terms...)
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	args := append([]any{p.ID, p.CompanyID, p.DepartmentID, p.IsActive, p.MinMonthsSeniority, p.CreatedAt, p.UpdatedAt}, TermValues(p)...)
	_, err = s.DB.Exec(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		spec.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	), args...)
	if db.IsUniqueViolation(err, "") {
		return ErrDuplicatePolicy
	}
	return err
}

func (s *Store) Update(ctx context.Context, p Policy) error {
	spec, err := specOf(p.Type)
	if err != nil {
		return err
	}
	sets := []string{"is_active = $2", "min_months_seniority = $3", "updated_at = $4"}
	for i, col := range spec.terms {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+5))
	}
	args := append([]any{p.ID, p.IsActive, p.MinMonthsSeniority, p.UpdatedAt}, TermValues(p)...)
	tag, err := s.DB.Exec(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", spec.table, strings.Join(sets, ", ")), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPolicyNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, t Type, id string) error {
	spec, err := specOf(t)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", spec.table), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPolicyNotFound
	}
	return nil
}

func (s *Store) scanOne(ctx context.Context, t Type, query string, args ...any) (Policy, error) {
	var r Row
	if err := s.DB.QueryRow(ctx, query, args...).Scan(r.ScanTargets(t)...); err != nil {
		if db.IsNoRows(err) {
			return Policy{}, ErrPolicyNotFound
		}
		return Policy{}, err
	}
	return r.Build(t)
}
