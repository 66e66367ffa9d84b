package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrflow/internal/domain/employee"
	"hrflow/internal/domain/policy"
	"hrflow/internal/domain/requests"
	"hrflow/internal/transport/http/api"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-07-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2025-07-01T23:30:00-02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("01/07/2025")
	assert.Error(t, err)
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=900&offset=20", nil)
	assert.Equal(t, Page{Limit: 500, Offset: 20}, ParsePagination(r, 50, 500))

	r = httptest.NewRequest(http.MethodGet, "/?limit=0&offset=-3", nil)
	assert.Equal(t, Page{Limit: 50, Offset: 0}, ParsePagination(r, 50, 500))
}

func TestValidatorOrdersIssues(t *testing.T) {
	v := NewValidator()
	v.Required("employee_id", " ", "is required")
	v.Enum("result", "VALIDE", []string{"valide", "refused"}, "must be valide or refused")
	v.Date("end_date", "tomorrow")
	require.True(t, v.HasIssues())

	issues := v.Issues()
	require.Len(t, issues, 3)
	assert.Equal(t, "employee_id", issues[0].Field)
	assert.Equal(t, "end_date", issues[1].Field)
	assert.Equal(t, "result", issues[2].Field)
}

func TestWriteErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&requests.RejectedError{Reasons: []string{"a", "b"}}, http.StatusBadRequest, "not_eligible"},
		{fmt.Errorf("load: %w", employee.ErrEmployeeNotFound), http.StatusNotFound, "employee_not_found"},
		{policy.ErrPolicyNotFound, http.StatusNotFound, "policy_not_found"},
		{policy.ErrDuplicatePolicy, http.StatusConflict, "duplicate_policy"},
		{requests.ErrAlreadyResolved, http.StatusConflict, "already_resolved"},
		{errors.New("boom"), http.StatusInternalServerError, "fallback"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		WriteError(rr, httptest.NewRequest(http.MethodPost, "/", nil), tc.err, "fallback")
		assert.Equal(t, tc.status, rr.Code, tc.code)

		var env api.Envelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
		require.NotNil(t, env.Error)
		assert.Equal(t, tc.code, env.Error.Code)
	}
}

func TestRejectionCarriesReasons(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, httptest.NewRequest(http.MethodPost, "/", nil), &requests.RejectedError{Reasons: []string{"too soon"}}, "x")

	var body struct {
		Error struct {
			Details struct {
				Reasons []string `json:"reasons"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"too soon"}, body.Error.Details.Reasons)
	assert.True(t, IsRejection(fmt.Errorf("wrap: %w", &requests.RejectedError{})))
}
