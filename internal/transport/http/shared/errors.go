package shared

import (
	"errors"
	"net/http"

	"hrflow/internal/domain/employee"
	"hrflow/internal/domain/notifications"
	"hrflow/internal/domain/policy"
	"hrflow/internal/domain/requests"
	"hrflow/internal/platform/logger"
	"hrflow/internal/requestctx"
	"hrflow/internal/transport/http/api"
)

// WriteError maps domain errors onto the response envelope. Anything
// unrecognised is logged and reported as an opaque 500 with fallbackCode.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallbackCode string) {
	reqID := requestctx.GetRequestID(r.Context())

	var rejected *requests.RejectedError
	var reqInvalid *requests.ValidationError
	var policyInvalid *policy.ValidationError
	switch {
	case errors.As(err, &rejected):
		api.FailWithDetails(w, http.StatusBadRequest, "not_eligible", "request is not eligible", map[string]any{"reasons": rejected.Reasons}, reqID)
	case errors.As(err, &reqInvalid):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed", map[string]any{"fields": reqInvalid.Fields}, reqID)
	case errors.As(err, &policyInvalid):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed", map[string]any{"fields": policyInvalid.Fields}, reqID)
	case errors.Is(err, employee.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
	case errors.Is(err, policy.ErrPolicyNotFound):
		api.Fail(w, http.StatusNotFound, "policy_not_found", "no policy found for this employee's company", reqID)
	case errors.Is(err, requests.ErrRequestNotFound):
		api.Fail(w, http.StatusNotFound, "request_not_found", "request not found", reqID)
	case errors.Is(err, notifications.ErrNotificationNotFound):
		api.Fail(w, http.StatusNotFound, "notification_not_found", "notification not found", reqID)
	case errors.Is(err, policy.ErrDuplicatePolicy):
		api.Fail(w, http.StatusConflict, "duplicate_policy", err.Error(), reqID)
	case errors.Is(err, requests.ErrAlreadyResolved):
		api.Fail(w, http.StatusConflict, "already_resolved", "request already resolved", reqID)
	default:
		logger.FromContext(r.Context()).Error().Err(err).Str("code", fallbackCode).Msg("request failed")
		api.Fail(w, http.StatusInternalServerError, fallbackCode, "internal error", reqID)
	}
}

// IsRejection reports whether err is an eligibility rejection.
func IsRejection(err error) bool {
	var rejected *requests.RejectedError
	return errors.As(err, &rejected)
}
