package policy

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeAdvance Type = "advance"
	TypeCredit  Type = "credit"
	TypeLeave   Type = "leave"
)

var Types = []Type{TypeAdvance, TypeCredit, TypeLeave}

func ParseType(raw string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeAdvance:
		return TypeAdvance, true
	case TypeCredit:
		return TypeCredit, true
	case TypeLeave:
		return TypeLeave, true
	}
	return "", false
}

// Policy is the rule set for one request type, scoped to a company and
// optionally narrowed to one department. Exactly one of the term blocks is
// set, matching Type.
type Policy struct {
	ID                 string        `json:"id"`
	Type               Type          `json:"type"`
	CompanyID          string        `json:"company_id"`
	DepartmentID       *string       `json:"department_id"`
	IsActive           bool          `json:"is_active"`
	MinMonthsSeniority int           `json:"min_months_seniority"`
	Advance            *AdvanceTerms `json:"advance,omitempty"`
	Credit             *CreditTerms  `json:"credit,omitempty"`
	Leave              *LeaveTerms   `json:"leave,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type AdvanceTerms struct {
	MaxPercentageSalary decimal.Decimal `json:"max_percentage_salary"`
	CooldownMonths      int             `json:"cooldown_months_between_advance"`
}

type CreditTerms struct {
	MaxSalaryMultiplier decimal.Decimal `json:"max_salary_multiplier"`
	CooldownMonths      int             `json:"cooldown_months"`
}

type LeaveTerms struct {
	DaysPerMonthWorked decimal.Decimal `json:"days_per_month_worked"`
	MaxDaysPerYear     int             `json:"max_days_per_year"`
	CooldownDays       int             `json:"cooldown_days_between_requests"`
}

// Scope describes what the store knows about a policy's company and department.
// DepartmentCompanyID is empty when the department does not exist.
type Scope struct {
	CompanyExists       bool
	DepartmentCompanyID string
}

// DepartmentScoped reports whether the policy overrides the company default.
func (p Policy) DepartmentScoped() bool {
	return p.DepartmentID != nil && *p.DepartmentID != ""
}

// Cooldown returns the configured cooldown in the unit of the policy type:
// months for advance and credit, days for leave.
func (p Policy) Cooldown() int {
	switch {
	case p.Advance != nil:
		return p.Advance.CooldownMonths
	case p.Credit != nil:
		return p.Credit.CooldownMonths
	case p.Leave != nil:
		return p.Leave.CooldownDays
	}
	return 0
}

// Patch carries the mutable fields of an update; nil fields are left as is.
type Patch struct {
	IsActive           *bool
	MinMonthsSeniority *int
	Advance            *AdvanceTerms
	Credit             *CreditTerms
	Leave              *LeaveTerms
}
