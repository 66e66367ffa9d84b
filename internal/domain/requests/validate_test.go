package requests_test

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrflow/internal/domain/policy"
	"hrflow/internal/domain/requests"
)

func TestValidateAmountAndMonthsLimits(t *testing.T) {
	cases := []struct {
		name   string
		in     requests.CreateInput
		field  string
		reason string
	}{
		{
			name:   "sub-cent amount",
			in:     requests.CreateInput{Type: policy.TypeAdvance, EmployeeID: "e1", Amount: decimal.RequireFromString("0.001")},
			field:  "amount",
			reason: "must have at most 2 decimal places",
		},
		{
			name:   "three decimals on a large amount",
			in:     requests.CreateInput{Type: policy.TypeAdvance, EmployeeID: "e1", Amount: decimal.RequireFromString("100.125")},
			field:  "amount",
			reason: "must have at most 2 decimal places",
		},
		{
			name:   "amount overflows the column",
			in:     requests.CreateInput{Type: policy.TypeCredit, EmployeeID: "e1", Amount: decimal.RequireFromString("1e13"), Months: 12},
			field:  "amount",
			reason: "must not exceed 999999999999.99",
		},
		{
			name:   "months beyond int32",
			in:     requests.CreateInput{Type: policy.TypeCredit, EmployeeID: "e1", Amount: decimal.NewFromInt(1000), Months: math.MaxInt32 + 1},
			field:  "months",
			reason: "must not exceed 600",
		},
		{
			name:   "zero months",
			in:     requests.CreateInput{Type: policy.TypeCredit, EmployeeID: "e1", Amount: decimal.NewFromInt(1000)},
			field:  "months",
			reason: "must be greater than 0",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var verr *requests.ValidationError
			require.ErrorAs(t, requests.Validate(tc.in), &verr)
			assert.Equal(t, []requests.FieldError{{Field: tc.field, Reason: tc.reason}}, verr.Fields)
		})
	}
}

func TestValidateAcceptsBoundaryValues(t *testing.T) {
	assert.NoError(t, requests.Validate(requests.CreateInput{
		Type: policy.TypeCredit, EmployeeID: "e1", Amount: decimal.RequireFromString("999999999999.99"), Months: 600,
	}))
	assert.NoError(t, requests.Validate(requests.CreateInput{
		Type: policy.TypeAdvance, EmployeeID: "e1", Amount: decimal.RequireFromString("0.01"),
	}))
	assert.NoError(t, requests.Validate(requests.CreateInput{
		Type: policy.TypeLeave, EmployeeID: "e1", LeaveType: "annual",
		StartDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC),
	}))
}
