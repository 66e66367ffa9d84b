package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"hrflow/internal/domain/employee"
)

type Employees struct {
	DB *sql.DB
}

func (s *Employees) Profile(ctx context.Context, employeeID string) (employee.Profile, error) {
	var p employee.Profile
	var salary string
	err := s.DB.QueryRowContext(ctx, `
    SELECT id, company_id, department_id, full_name, brut_salary, seniority_in_months
    FROM employees
    WHERE id = ?
  `, employeeID).Scan(&p.ID, &p.CompanyID, &p.DepartmentID, &p.FullName, &salary, &p.SeniorityMonths)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employee.Profile{}, employee.ErrEmployeeNotFound
		}
		return employee.Profile{}, err
	}
	if p.BrutSalary, err = decimal.NewFromString(salary); err != nil {
		return employee.Profile{}, fmt.Errorf("employee %s: parse salary: %w", employeeID, err)
	}
	return p, nil
}

// SeedWriter implements seed.Writer.
type SeedWriter struct {
	DB *sql.DB
}

func (w *SeedWriter) EnsureCompany(ctx context.Context, id, name string) error {
	_, err := w.DB.ExecContext(ctx, "INSERT INTO companies (id, name) VALUES (?, ?) ON CONFLICT (id) DO NOTHING", id, name)
	return err
}

func (w *SeedWriter) EnsureDepartment(ctx context.Context, id, companyID, name string) error {
	_, err := w.DB.ExecContext(ctx, "INSERT INTO departments (id, company_id, name) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING", id, companyID, name)
	return err
}

func (w *SeedWriter) EnsureEmployee(ctx context.Context, p employee.Profile, code string) error {
	_, err := w.DB.ExecContext(ctx, `
    INSERT INTO employees (id, company_id, department_id, full_name, code_employe, brut_salary, seniority_in_months)
    VALUES (?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT (id) DO NOTHING
  `, p.ID, p.CompanyID, p.DepartmentID, p.FullName, code, p.BrutSalary.String(), p.SeniorityMonths)
	return err
}
