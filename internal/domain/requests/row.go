package requests

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row mirrors the joined request/detail select shared by the Store implementations.
type Row struct {
	ID              string
	EmployeeID      string
	CompanyID       string
	Type            string
	Service         *string
	Status          string
	Result          string
	SubmissionDate  time.Time
	ResultDate      *time.Time
	IsExceptional   bool
	ExceptionReason *string
	PolicyID        *string

	AdvanceAmount *string
	AdvanceReason *string

	CreditAmount      *string
	CreditMonths      *int
	CreditDescription *string

	LeaveStart  *time.Time
	LeaveEnd    *time.Time
	LeaveType   *string
	LeaveReason *string
}

// SelectColumns lists the joined columns in Targets order. cast renders a
// numeric column as text for the dialect at hand.
func SelectColumns(cast func(col string) string) string {
	cols := []string{
		"r.id", "r.employee_id", "r.company_id", "r.type", "r.service", "r.status", "r.result",
		"r.submission_date", "r.result_date", "r.is_exceptional", "r.exception_reason",
		"COALESCE(a.policy_id, c.policy_id, l.policy_id)",
		cast("a.amount"), "a.reason",
		cast("c.amount"), "c.months", "c.description",
		"l.start_date", "l.end_date", "l.leave_type", "l.reason",
	}
	return strings.Join(cols, ", ")
}

const FromJoined = `
    FROM requests r
    LEFT JOIN advance_request_details a ON a.request_id = r.id
    LEFT JOIN credit_request_details c ON c.request_id = r.id
    LEFT JOIN leave_request_details l ON l.request_id = r.id`

func (r *Row) Targets() []any {
	return []any{
		&r.ID, &r.EmployeeID, &r.CompanyID, &r.Type, &r.Service, &r.Status, &r.Result,
		&r.SubmissionDate, &r.ResultDate, &r.IsExceptional, &r.ExceptionReason,
		&r.PolicyID,
		&r.AdvanceAmount, &r.AdvanceReason,
		&r.CreditAmount, &r.CreditMonths, &r.CreditDescription,
		&r.LeaveStart, &r.LeaveEnd, &r.LeaveType, &r.LeaveReason,
	}
}

func (r Row) Build() (Request, error) {
	out := Request{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		CompanyID:       r.CompanyID,
		Type:            Type(r.Type),
		Service:         r.Service,
		Status:          Status(r.Status),
		Result:          Result(r.Result),
		SubmissionDate:  r.SubmissionDate.UTC(),
		ResultDate:      r.ResultDate,
		IsExceptional:   r.IsExceptional,
		ExceptionReason: r.ExceptionReason,
		PolicyID:        r.PolicyID,
	}
	switch {
	case r.AdvanceAmount != nil:
		amount, err := decimal.NewFromString(*r.AdvanceAmount)
		if err != nil {
			return Request{}, fmt.Errorf("request %s: parse amount: %w", r.ID, err)
		}
		out.Advance = &AdvanceDetail{Amount: amount, Reason: deref(r.AdvanceReason)}
	case r.CreditAmount != nil:
		amount, err := decimal.NewFromString(*r.CreditAmount)
		if err != nil {
			return Request{}, fmt.Errorf("request %s: parse amount: %w", r.ID, err)
		}
		months := 0
		if r.CreditMonths != nil {
			months = *r.CreditMonths
		}
		out.Credit = &CreditDetail{Amount: amount, Months: months, Description: deref(r.CreditDescription)}
	case r.LeaveStart != nil && r.LeaveEnd != nil:
		out.Leave = &LeaveDetail{
			StartDate: r.LeaveStart.UTC(),
			EndDate:   r.LeaveEnd.UTC(),
			LeaveType: deref(r.LeaveType),
			Reason:    deref(r.LeaveReason),
		}
	}
	return out, nil
}

// DetailValues returns the detail table and its insert columns and values for r.
func DetailValues(r Request) (table string, cols []string, args []any, err error) {
	switch {
	case r.Advance != nil:
		return "advance_request_details",
			[]string{"request_id", "policy_id", "amount", "reason"},
			[]any{r.ID, r.PolicyID, r.Advance.Amount.String(), r.Advance.Reason}, nil
	case r.Credit != nil:
		return "credit_request_details",
			[]string{"request_id", "policy_id", "amount", "months", "description"},
			[]any{r.ID, r.PolicyID, r.Credit.Amount.String(), r.Credit.Months, r.Credit.Description}, nil
	case r.Leave != nil:
		return "leave_request_details",
			[]string{"request_id", "policy_id", "start_date", "end_date", "leave_type", "reason"},
			[]any{r.ID, r.PolicyID, r.Leave.StartDate, r.Leave.EndDate, r.Leave.LeaveType, r.Leave.Reason}, nil
	}
	return "", nil, nil, fmt.Errorf("request %s has no detail", r.ID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
