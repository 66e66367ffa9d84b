package shared

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"hrflow/internal/domain/policy"
	"hrflow/internal/domain/requests"
)

// RequestPayload is the body accepted by request creation and eligibility
// checks. Amounts may be sent as JSON numbers or strings.
type RequestPayload struct {
	EmployeeID      string           `json:"employee_id"`
	CompanyID       string           `json:"company_id"`
	Service         string           `json:"service"`
	IsExceptional   bool             `json:"is_exceptional"`
	ExceptionReason string           `json:"exception_reason"`
	Amount          *decimal.Decimal `json:"amount"`
	Months          int              `json:"months"`
	Reason          string           `json:"reason"`
	Description     string           `json:"description"`
	StartDate       string           `json:"start_date"`
	EndDate         string           `json:"end_date"`
	LeaveType       string           `json:"leave_type"`
}

// DecodeRequest reads a creation payload for t. A false return means the
// response has already been written.
func DecodeRequest(w http.ResponseWriter, r *http.Request, t policy.Type, requestID string) (requests.CreateInput, bool) {
	var payload RequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		FailValidation(w, requestID, []ValidationIssue{{Field: "body", Reason: "must be a valid JSON object"}})
		return requests.CreateInput{}, false
	}

	v := NewValidator()
	v.Required("employee_id", payload.EmployeeID, "is required")
	in := requests.CreateInput{
		Type:            t,
		EmployeeID:      payload.EmployeeID,
		CompanyID:       payload.CompanyID,
		Service:         payload.Service,
		IsExceptional:   payload.IsExceptional,
		ExceptionReason: payload.ExceptionReason,
		Months:          payload.Months,
		Reason:          payload.Reason,
		Description:     payload.Description,
		LeaveType:       payload.LeaveType,
	}
	if payload.Amount != nil {
		in.Amount = *payload.Amount
	}
	if t == policy.TypeLeave {
		in.StartDate, _ = v.Date("start_date", payload.StartDate)
		in.EndDate, _ = v.Date("end_date", payload.EndDate)
	}
	if v.Reject(w, requestID) {
		return requests.CreateInput{}, false
	}
	return in, true
}
