package policy

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)

	// Upper bounds of the NUMERIC(6,2) multiplier and a calendar month.
	maxMultiplier   = decimal.RequireFromString("9999.99")
	maxDaysPerMonth = decimal.NewFromInt(31)
)

// Validate checks scope and per-type term ranges.
func Validate(p Policy) error {
	verr := &ValidationError{}
	if strings.TrimSpace(p.CompanyID) == "" {
		verr.add("company_id", "is required")
	}
	if p.DepartmentID != nil && strings.TrimSpace(*p.DepartmentID) == "" {
		verr.add("department_id", "must not be blank when provided")
	}

	switch p.Type {
	case TypeAdvance:
		intRange(verr, "min_months_seniority", p.MinMonthsSeniority, 0, 60)
		if p.Advance == nil {
			verr.add("max_percentage_salary", "is required")
			break
		}
		if p.Advance.MaxPercentageSalary.LessThan(one) || p.Advance.MaxPercentageSalary.GreaterThan(hundred) {
			verr.add("max_percentage_salary", "must be between 1 and 100")
		}
		scale(verr, "max_percentage_salary", p.Advance.MaxPercentageSalary)
		intRange(verr, "cooldown_months_between_advance", p.Advance.CooldownMonths, 0, 24)
	case TypeCredit:
		intRange(verr, "min_months_seniority", p.MinMonthsSeniority, 0, 600)
		if p.Credit == nil {
			verr.add("max_salary_multiplier", "is required")
			break
		}
		switch m := p.Credit.MaxSalaryMultiplier; {
		case !m.IsPositive():
			verr.add("max_salary_multiplier", "must be greater than 0")
		case m.GreaterThan(maxMultiplier):
			verr.add("max_salary_multiplier", "must not exceed 9999.99")
		}
		scale(verr, "max_salary_multiplier", p.Credit.MaxSalaryMultiplier)
		intRange(verr, "cooldown_months", p.Credit.CooldownMonths, 0, 120)
	case TypeLeave:
		intRange(verr, "min_months_seniority", p.MinMonthsSeniority, 0, 600)
		if p.Leave == nil {
			verr.add("days_per_month_worked", "is required")
			break
		}
		switch d := p.Leave.DaysPerMonthWorked; {
		case d.IsNegative():
			verr.add("days_per_month_worked", "must not be negative")
		case d.GreaterThan(maxDaysPerMonth):
			verr.add("days_per_month_worked", "must not exceed 31")
		}
		scale(verr, "days_per_month_worked", p.Leave.DaysPerMonthWorked)
		intRange(verr, "max_days_per_year", p.Leave.MaxDaysPerYear, 0, 366)
		intRange(verr, "cooldown_days_between_requests", p.Leave.CooldownDays, 0, 366)
	default:
		verr.add("type", "must be one of advance, credit, leave")
	}
	return verr.orNil()
}

func intRange(verr *ValidationError, field string, value, lo, hi int) {
	if value < lo || value > hi {
		verr.add(field, fmt.Sprintf("must be between %d and %d", lo, hi))
	}
}

// scale rejects values with more than two decimal places; the columns are NUMERIC(_,2).
func scale(verr *ValidationError, field string, value decimal.Decimal) {
	if !value.Equal(value.Truncate(2)) {
		verr.add(field, "must have at most 2 decimal places")
	}
}
