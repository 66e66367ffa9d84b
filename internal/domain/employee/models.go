package employee

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrEmployeeNotFound = errors.New("employee not found")

// Profile is the read-only view of an employee used by eligibility checks.
type Profile struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	DepartmentID    *string         `json:"department_id"`
	FullName        string          `json:"full_name"`
	BrutSalary      decimal.Decimal `json:"brut_salary"`
	SeniorityMonths int             `json:"seniority_in_months"`
}
