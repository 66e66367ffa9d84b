package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hrflow/internal/domain/policy"
)

type Policies struct {
	DB *sql.DB
}

func policyColumns(terms []string) string {
	cols := append([]string{"id", "company_id", "department_id", "is_active", "min_months_seniority", "created_at", "updated_at"}, terms...)
	return strings.Join(cols, ", ")
}

func tableFor(t policy.Type) (string, []string, error) {
	table, terms, ok := policy.TableFor(t)
	if !ok {
		return "", nil, fmt.Errorf("unknown policy type %q", t)
	}
	return table, terms, nil
}

func (s *Policies) Resolve(ctx context.Context, t policy.Type, companyID string, departmentID *string) (policy.Policy, error) {
	table, terms, err := tableFor(t)
	if err != nil {
		return policy.Policy{}, err
	}
	query := fmt.Sprintf(`
    SELECT %s FROM %s
    WHERE company_id = ? AND (department_id IS NULL OR department_id = ?)
    ORDER BY department_id IS NOT NULL DESC
    LIMIT 1
  `, policyColumns(terms), table)
	return s.scanOne(ctx, t, query, companyID, departmentID)
}

func (s *Policies) Get(ctx context.Context, t policy.Type, id string) (policy.Policy, error) {
	table, terms, err := tableFor(t)
	if err != nil {
		return policy.Policy{}, err
	}
	return s.scanOne(ctx, t, fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", policyColumns(terms), table), id)
}

func (s *Policies) ListByCompany(ctx context.Context, t policy.Type, companyID string) ([]policy.Policy, error) {
	table, terms, err := tableFor(t)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
    SELECT %s FROM %s
    WHERE company_id = ?
    ORDER BY department_id IS NOT NULL, created_at
  `, policyColumns(terms), table), companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []policy.Policy{}
	for rows.Next() {
		var r policy.Row
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

func (s *Policies) LookupScope(ctx context.Context, companyID string, departmentID *string) (policy.Scope, error) {
	var scope policy.Scope
	if err := s.DB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM companies WHERE id = ?)", companyID).Scan(&scope.CompanyExists); err != nil {
		return policy.Scope{}, err
	}
	if departmentID == nil {
		return scope, nil
	}
	err := s.DB.QueryRowContext(ctx, "SELECT company_id FROM departments WHERE id = ?", *departmentID).Scan(&scope.DepartmentCompanyID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return policy.Scope{}, err
	}
	return scope, nil
}

func (s *Policies) ScopeTaken(ctx context.Context, t policy.Type, companyID string, departmentID *string) (bool, error) {
	table, _, err := tableFor(t)
	if err != nil {
		return false, err
	}
	var count int
	err = s.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE company_id = ? AND department_id IS ?", table), companyID, departmentID).Scan(&count)
	return count > 0, err
}

func (s *Policies) Insert(ctx context.Context, p policy.Policy) error {
	table, terms, err := tableFor(p.Type)
	if err != nil {
		return err
	}
	args := append([]any{p.ID, p.CompanyID, p.DepartmentID, p.IsActive, p.MinMonthsSeniority, p.CreatedAt.UTC(), p.UpdatedAt.UTC()}, policy.TermValues(p)...)
	_, err = s.DB.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, policyColumns(terms), placeholders(len(args))), args...)
	if isUniqueViolation(err) {
		return policy.ErrDuplicatePolicy
	}
	return err
}

func (s *Policies) Update(ctx context.Context, p policy.Policy) error {
	table, terms, err := tableFor(p.Type)
	if err != nil {
		return err
	}
	sets := []string{"is_active = ?", "min_months_seniority = ?", "updated_at = ?"}
	for _, col := range terms {
		sets = append(sets, col+" = ?")
	}
	args := append([]any{p.IsActive, p.MinMonthsSeniority, p.UpdatedAt.UTC()}, policy.TermValues(p)...)
	args = append(args, p.ID)
	res, err := s.DB.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", ")), args...)
	if err != nil {
		return err
	}
	return affected(res, policy.ErrPolicyNotFound)
}

func (s *Policies) Delete(ctx context.Context, t policy.Type, id string) error {
	table, _, err := tableFor(t)
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return err
	}
	return affected(res, policy.ErrPolicyNotFound)
}

func (s *Policies) scanOne(ctx context.Context, t policy.Type, query string, args ...any) (policy.Policy, error) {
	var r policy.Row
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(r.ScanTargets(t)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return policy.Policy{}, policy.ErrPolicyNotFound
		}
		return policy.Policy{}, err
	}
	return r.Build(t)
}

func affected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
