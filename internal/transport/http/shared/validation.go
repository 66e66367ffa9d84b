package shared

import (
	"net/http"
	"slices"
	"sort"
	"strings"
	"time"

	"hrflow/internal/domain/requests"
	"hrflow/internal/transport/http/api"
)

// ValidationIssue has the same shape as domain validation errors so both
// render identically under details.fields.
type ValidationIssue = requests.FieldError

// Validator collects handler-level payload problems before the domain is called.
type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Add(field, reason string) {
	v.issues = append(v.issues, ValidationIssue{Field: field, Reason: reason})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// Enum flags a non-empty value outside allowed. Matching is exact; stored
// statuses and types are lowercase.
func (v *Validator) Enum(field, value string, allowed []string, reason string) {
	if value == "" || slices.Contains(allowed, value) {
		return
	}
	v.Add(field, reason)
}

func (v *Validator) Date(field, raw string) (time.Time, bool) {
	parsed, err := ParseDate(raw)
	if err != nil {
		v.Add(field, "must be a date (YYYY-MM-DD or RFC3339)")
		return time.Time{}, false
	}
	return parsed, true
}

func (v *Validator) HasIssues() bool {
	return len(v.issues) > 0
}

// Issues returns the collected problems ordered by field.
func (v *Validator) Issues() []ValidationIssue {
	out := slices.Clone(v.issues)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// Reject writes a 400 envelope when anything was collected and reports whether it did.
func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
		map[string]any{"fields": issues}, requestID)
}
