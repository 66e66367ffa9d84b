package requests

import (
	"strings"

	"github.com/shopspring/decimal"

	"hrflow/internal/domain/policy"
)

// Column limits: amounts are NUMERIC(14,2); a credit runs at most 50 years.
var maxAmount = decimal.RequireFromString("999999999999.99")

const maxMonths = 600

// Validate checks the shape of a creation payload. Business rules are left to eligibility.
func Validate(in CreateInput) error {
	verr := &ValidationError{}
	if strings.TrimSpace(in.EmployeeID) == "" {
		verr.add("employee_id", "is required")
	}
	if in.IsExceptional && strings.TrimSpace(in.ExceptionReason) == "" {
		verr.add("exception_reason", "is required when is_exceptional is true")
	}

	switch in.Type {
	case policy.TypeAdvance:
		checkAmount(verr, in.Amount)
	case policy.TypeCredit:
		checkAmount(verr, in.Amount)
		switch {
		case in.Months <= 0:
			verr.add("months", "must be greater than 0")
		case in.Months > maxMonths:
			verr.add("months", "must not exceed 600")
		}
	case policy.TypeLeave:
		if in.StartDate.IsZero() {
			verr.add("start_date", "is required")
		}
		if in.EndDate.IsZero() {
			verr.add("end_date", "is required")
		}
		if strings.TrimSpace(in.LeaveType) == "" {
			verr.add("leave_type", "is required")
		}
	default:
		verr.add("type", "must be one of advance, credit, leave")
	}
	return verr.orNil()
}

func checkAmount(verr *ValidationError, amount decimal.Decimal) {
	switch {
	case !amount.IsPositive():
		verr.add("amount", "must be greater than 0")
	case amount.GreaterThan(maxAmount):
		verr.add("amount", "must not exceed 999999999999.99")
	case !amount.Equal(amount.Truncate(2)):
		verr.add("amount", "must have at most 2 decimal places")
	}
}
