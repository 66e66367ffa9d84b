package employee

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"hrflow/internal/platform/db"
	"hrflow/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Profile(ctx context.Context, employeeID string) (Profile, error) {
	var p Profile
	var salary string
	err := s.DB.QueryRow(ctx, `
    SELECT id, company_id, department_id, full_name, brut_salary::text, seniority_in_months
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&p.ID, &p.CompanyID, &p.DepartmentID, &p.FullName, &salary, &p.SeniorityMonths)
	if err != nil {
		if db.IsNoRows(err) {
			return Profile{}, ErrEmployeeNotFound
		}
		return Profile{}, err
	}
	if p.BrutSalary, err = decimal.NewFromString(salary); err != nil {
		return Profile{}, fmt.Errorf("employee %s: parse salary: %w", employeeID, err)
	}
	return p, nil
}
