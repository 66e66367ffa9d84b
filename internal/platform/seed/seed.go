// Package seed provisions companies, departments, employees and policies from
// a YAML fixture. Applying the same fixture twice is a no-op.
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"hrflow/internal/domain/employee"
	"hrflow/internal/domain/policy"
)

type Fixture struct {
	Companies []Company `yaml:"companies"`
}

type Company struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Departments []Department `yaml:"departments"`
	Employees   []Employee   `yaml:"employees"`
	Policies    []PolicySpec `yaml:"policies"`
}

type Department struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type Employee struct {
	ID              string `yaml:"id"`
	FullName        string `yaml:"full_name"`
	Code            string `yaml:"code"`
	DepartmentID    string `yaml:"department_id"`
	BrutSalary      string `yaml:"brut_salary"`
	SeniorityMonths int    `yaml:"seniority_in_months"`
}

type PolicySpec struct {
	Type                string `yaml:"type"`
	DepartmentID        string `yaml:"department_id"`
	Inactive            bool   `yaml:"inactive"`
	MinMonthsSeniority  int    `yaml:"min_months_seniority"`
	MaxPercentageSalary string `yaml:"max_percentage_salary"`
	MaxSalaryMultiplier string `yaml:"max_salary_multiplier"`
	DaysPerMonthWorked  string `yaml:"days_per_month_worked"`
	MaxDaysPerYear      int    `yaml:"max_days_per_year"`
	CooldownMonths      int    `yaml:"cooldown_months"`
	CooldownDays        int    `yaml:"cooldown_days"`
}

// Writer persists collaborator rows, leaving existing rows untouched.
type Writer interface {
	EnsureCompany(ctx context.Context, id, name string) error
	EnsureDepartment(ctx context.Context, id, companyID, name string) error
	EnsureEmployee(ctx context.Context, p employee.Profile, code string) error
}

type PolicyCreator interface {
	EnsureCreated(ctx context.Context, p policy.Policy) (bool, error)
}

type Summary struct {
	Companies       int
	Employees       int
	PoliciesCreated int
}

func LoadFile(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, err
	}
	return Parse(data)
}

func Parse(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

func Apply(ctx context.Context, f Fixture, w Writer, policies PolicyCreator) (Summary, error) {
	var sum Summary
	for _, c := range f.Companies {
		if err := w.EnsureCompany(ctx, c.ID, c.Name); err != nil {
			return sum, fmt.Errorf("company %s: %w", c.ID, err)
		}
		sum.Companies++
		for _, d := range c.Departments {
			if err := w.EnsureDepartment(ctx, d.ID, c.ID, d.Name); err != nil {
				return sum, fmt.Errorf("department %s: %w", d.ID, err)
			}
		}
		for _, e := range c.Employees {
			profile, err := e.profile(c.ID)
			if err != nil {
				return sum, err
			}
			if err := w.EnsureEmployee(ctx, profile, e.Code); err != nil {
				return sum, fmt.Errorf("employee %s: %w", e.ID, err)
			}
			sum.Employees++
		}
		for i, spec := range c.Policies {
			p, err := spec.policy(c.ID)
			if err != nil {
				return sum, fmt.Errorf("company %s policy %d: %w", c.ID, i, err)
			}
			created, err := policies.EnsureCreated(ctx, p)
			if err != nil {
				return sum, fmt.Errorf("company %s policy %d: %w", c.ID, i, err)
			}
			if created {
				sum.PoliciesCreated++
			}
		}
	}
	log.Info().Int("companies", sum.Companies).Int("employees", sum.Employees).Int("policies_created", sum.PoliciesCreated).Msg("seed applied")
	return sum, nil
}

func (e Employee) profile(companyID string) (employee.Profile, error) {
	salary, err := decimal.NewFromString(e.BrutSalary)
	if err != nil {
		return employee.Profile{}, fmt.Errorf("employee %s: brut_salary: %w", e.ID, err)
	}
	return employee.Profile{
		ID:              e.ID,
		CompanyID:       companyID,
		DepartmentID:    optional(e.DepartmentID),
		FullName:        e.FullName,
		BrutSalary:      salary,
		SeniorityMonths: e.SeniorityMonths,
	}, nil
}

func (s PolicySpec) policy(companyID string) (policy.Policy, error) {
	t, ok := policy.ParseType(s.Type)
	if !ok {
		return policy.Policy{}, fmt.Errorf("unknown policy type %q", s.Type)
	}
	p := policy.Policy{
		Type:               t,
		CompanyID:          companyID,
		DepartmentID:       optional(s.DepartmentID),
		IsActive:           !s.Inactive,
		MinMonthsSeniority: s.MinMonthsSeniority,
	}
	var err error
	switch t {
	case policy.TypeAdvance:
		var pct decimal.Decimal
		pct, err = decimal.NewFromString(s.MaxPercentageSalary)
		p.Advance = &policy.AdvanceTerms{MaxPercentageSalary: pct, CooldownMonths: s.CooldownMonths}
	case policy.TypeCredit:
		var mult decimal.Decimal
		mult, err = decimal.NewFromString(s.MaxSalaryMultiplier)
		p.Credit = &policy.CreditTerms{MaxSalaryMultiplier: mult, CooldownMonths: s.CooldownMonths}
	case policy.TypeLeave:
		var rate decimal.Decimal
		rate, err = decimal.NewFromString(s.DaysPerMonthWorked)
		p.Leave = &policy.LeaveTerms{DaysPerMonthWorked: rate, MaxDaysPerYear: s.MaxDaysPerYear, CooldownDays: s.CooldownDays}
	}
	if err != nil {
		return policy.Policy{}, fmt.Errorf("%s terms: %w", t, err)
	}
	return p, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
