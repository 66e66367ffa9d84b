package seed

import (
	"context"

	"hrflow/internal/domain/employee"
	"hrflow/internal/platform/querier"
)

// PGWriter is the Postgres Writer.
type PGWriter struct {
	DB querier.Querier
}

func NewPGWriter(db querier.Querier) *PGWriter {
	return &PGWriter{DB: db}
}

func (w *PGWriter) EnsureCompany(ctx context.Context, id, name string) error {
	_, err := w.DB.Exec(ctx, "INSERT INTO companies (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING", id, name)
	return err
}

func (w *PGWriter) EnsureDepartment(ctx context.Context, id, companyID, name string) error {
	_, err := w.DB.Exec(ctx, "INSERT INTO departments (id, company_id, name) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING", id, companyID, name)
	return err
}

func (w *PGWriter) EnsureEmployee(ctx context.Context, p employee.Profile, code string) error {
	_, err := w.DB.Exec(ctx, `
    INSERT INTO employees (id, company_id, department_id, full_name, code_employe, brut_salary, seniority_in_months)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    ON CONFLICT (id) DO NOTHING
  `, p.ID, p.CompanyID, p.DepartmentID, p.FullName, code, p.BrutSalary.String(), p.SeniorityMonths)
	return err
}
