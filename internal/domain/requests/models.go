package requests

import (
	"time"

	"github.com/shopspring/decimal"

	"hrflow/internal/domain/eligibility"
	"hrflow/internal/domain/employee"
	"hrflow/internal/domain/policy"
)

type Type string

const (
	TypeAdvance     Type = "advance"
	TypeCredit      Type = "credit"
	TypeLeave       Type = "leave"
	TypeDocument    Type = "document"
	TypeReclamation Type = "reclamation"
)

type Status string

const (
	StatusPending  Status = "en_cours"
	StatusResolved Status = "traite"
)

type Result string

const (
	ResultNone     Result = "neant"
	ResultApproved Result = "valide"
	ResultRefused  Result = "refused"
)

// ActiveIndex is the partial unique index allowing one en_cours request per employee and type.
const ActiveIndex = "requests_one_active_per_type"

type Request struct {
	ID              string         `json:"id"`
	EmployeeID      string         `json:"employee_id"`
	CompanyID       string         `json:"company_id"`
	Type            Type           `json:"type"`
	Service         *string        `json:"service,omitempty"`
	Status          Status         `json:"status"`
	Result          Result         `json:"result"`
	SubmissionDate  time.Time      `json:"submission_date"`
	ResultDate      *time.Time     `json:"result_date,omitempty"`
	IsExceptional   bool           `json:"is_exceptional"`
	ExceptionReason *string        `json:"exception_reason,omitempty"`
	PolicyID        *string        `json:"policy_id,omitempty"`
	Advance         *AdvanceDetail `json:"advance,omitempty"`
	Credit          *CreditDetail  `json:"credit,omitempty"`
	Leave           *LeaveDetail   `json:"leave,omitempty"`
}

type AdvanceDetail struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

type CreditDetail struct {
	Amount      decimal.Decimal `json:"amount"`
	Months      int             `json:"months"`
	Description string          `json:"description,omitempty"`
}

type LeaveDetail struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	LeaveType string    `json:"leave_type"`
	Reason    string    `json:"reason,omitempty"`
}

// Amount is the monetary amount of an advance or credit request.
func (r Request) Amount() (decimal.Decimal, bool) {
	switch {
	case r.Advance != nil:
		return r.Advance.Amount, true
	case r.Credit != nil:
		return r.Credit.Amount, true
	}
	return decimal.Zero, false
}

type CreateInput struct {
	Type            policy.Type
	EmployeeID      string
	CompanyID       string
	Service         string
	IsExceptional   bool
	ExceptionReason string

	Amount      decimal.Decimal
	Months      int
	Reason      string
	Description string

	StartDate time.Time
	EndDate   time.Time
	LeaveType string
}

// Evaluation is the outcome of a dry-run eligibility check.
type Evaluation struct {
	Decision eligibility.Decision `json:"decision"`
	Policy   *policy.Policy       `json:"policy"`
	Profile  employee.Profile     `json:"profile"`
}

// ListFilter narrows a per-type listing; empty fields match everything.
type ListFilter struct {
	Type      Type
	Status    Status
	CompanyID string
	Limit     int
	Offset    int
}

type ExceptionalFilter struct {
	CompanyID string
	Type      Type
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

type Stats struct {
	Type           Type            `json:"type"`
	Total          int             `json:"total"`
	Pending        int             `json:"pending"`
	Approved       int             `json:"approved"`
	Rejected       int             `json:"rejected"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
	// Leave only.
	ApprovedDays            int            `json:"approved_days,omitempty"`
	ApprovedDaysByLeaveType map[string]int `json:"approved_days_by_leave_type,omitempty"`
}

// AddApprovedLeave counts the inclusive days of one approved leave.
func (st *Stats) AddApprovedLeave(leaveType string, start, end time.Time) {
	days := eligibility.InclusiveDays(start, end)
	if st.ApprovedDaysByLeaveType == nil {
		st.ApprovedDaysByLeaveType = map[string]int{}
	}
	st.ApprovedDays += days
	st.ApprovedDaysByLeaveType[leaveType] += days
}
