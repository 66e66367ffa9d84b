package eligibility

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrflow/internal/domain/employee"
	"hrflow/internal/domain/policy"
)

var now = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func profile() employee.Profile {
	return employee.Profile{ID: "e1", CompanyID: "c1", BrutSalary: decimal.NewFromInt(2000), SeniorityMonths: 12}
}

func advancePolicy() *policy.Policy {
	return &policy.Policy{
		Type:               policy.TypeAdvance,
		IsActive:           true,
		MinMonthsSeniority: 6,
		Advance:            &policy.AdvanceTerms{MaxPercentageSalary: decimal.NewFromInt(30), CooldownMonths: 2},
	}
}

func creditPolicy() *policy.Policy {
	return &policy.Policy{
		Type:               policy.TypeCredit,
		IsActive:           true,
		MinMonthsSeniority: 12,
		Credit:             &policy.CreditTerms{MaxSalaryMultiplier: decimal.NewFromInt(3), CooldownMonths: 6},
	}
}

func leavePolicy() *policy.Policy {
	return &policy.Policy{
		Type:               policy.TypeLeave,
		IsActive:           true,
		MinMonthsSeniority: 0,
		Leave:              &policy.LeaveTerms{DaysPerMonthWorked: decimal.RequireFromString("1.5"), MaxDaysPerYear: 10, CooldownDays: 7},
	}
}

func advanceInput(amount string) Input {
	return Input{
		Type:    policy.TypeAdvance,
		Policy:  advancePolicy(),
		Profile: profile(),
		Payload: Payload{Amount: decimal.RequireFromString(amount)},
		Now:     now,
	}
}

func leaveInput(start, end time.Time, leaveType string) Input {
	return Input{
		Type:    policy.TypeLeave,
		Policy:  leavePolicy(),
		Profile: profile(),
		Payload: Payload{StartDate: start, EndDate: end, LeaveType: leaveType},
		Now:     now,
	}
}

func TestAdvanceWithinCap(t *testing.T) {
	d := Evaluate(advanceInput("500"))
	assert.True(t, d.Eligible)
	assert.Empty(t, d.Reasons)
	require.NotNil(t, d.MaxAmount)
	assert.True(t, d.MaxAmount.Equal(decimal.NewFromInt(600)))
}

func TestAdvanceCapBoundary(t *testing.T) {
	at := Evaluate(advanceInput("600"))
	assert.True(t, at.Eligible, "amount equal to the cap is allowed")

	over := Evaluate(advanceInput("600.01"))
	assert.False(t, over.Eligible)
	require.Len(t, over.Reasons, 1)
	assert.Equal(t, "Amount exceeds maximum allowed (600.00)", over.Reasons[0])

	big := Evaluate(advanceInput("700"))
	assert.False(t, big.Eligible)
	assert.Contains(t, big.Reasons[0], "600")
}

func TestSeniorityReasonCitesMinimum(t *testing.T) {
	in := advanceInput("100")
	in.Profile.SeniorityMonths = 3
	d := Evaluate(in)
	assert.False(t, d.Eligible)
	assert.Equal(t, []string{"Employee must have at least 6 months of seniority"}, d.Reasons)
}

func TestInactivePolicy(t *testing.T) {
	in := advanceInput("100")
	in.Policy.IsActive = false
	d := Evaluate(in)
	assert.False(t, d.Eligible)
	assert.Equal(t, []string{"Advance policy is not active"}, d.Reasons)
}

func TestReasonsAreCollected(t *testing.T) {
	in := advanceInput("900")
	in.Policy.IsActive = false
	in.Profile.SeniorityMonths = 1
	in.History.HasActive = true
	last := now.AddDate(0, -1, 0)
	in.History.LastResolvedAt = &last

	d := Evaluate(in)
	assert.False(t, d.Eligible)
	assert.Len(t, d.Reasons, 5)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	in := advanceInput("700")
	first := Evaluate(in)
	second := Evaluate(in)
	assert.Equal(t, first, second)
}

func TestActiveRequestBlocks(t *testing.T) {
	in := advanceInput("100")
	in.History.HasActive = true
	d := Evaluate(in)
	assert.False(t, d.Eligible)
	require.Len(t, d.Reasons, 1)
	assert.Contains(t, d.Reasons[0], "already has an active request")
}

func TestMonthCooldownBoundary(t *testing.T) {
	cases := []struct {
		name     string
		last     time.Time
		eligible bool
	}{
		{"one month short", day(2025, 5, 1), false},
		{"exactly the cooldown", day(2025, 4, 28), true},
		{"well past", day(2024, 12, 1), true},
		{"same month", day(2025, 6, 1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := advanceInput("100")
			last := tc.last
			in.History.LastResolvedAt = &last
			d := Evaluate(in)
			assert.Equal(t, tc.eligible, d.Eligible, d.Reasons)
			if !tc.eligible {
				assert.Equal(t, []string{"Must wait 2 months between advance requests"}, d.Reasons)
			}
		})
	}
}

func TestNoPriorResolvedRequestPassesCooldown(t *testing.T) {
	in := advanceInput("100")
	in.Policy.Advance.CooldownMonths = 24
	assert.True(t, Evaluate(in).Eligible)
}

func TestCreditCapUsesMultiplier(t *testing.T) {
	in := Input{
		Type:    policy.TypeCredit,
		Policy:  creditPolicy(),
		Profile: profile(),
		Payload: Payload{Amount: decimal.NewFromInt(6000)},
		Now:     now,
	}
	d := Evaluate(in)
	assert.True(t, d.Eligible)

	in.Payload.Amount = decimal.NewFromInt(6001)
	d = Evaluate(in)
	assert.False(t, d.Eligible)
	assert.Equal(t, []string{"Amount exceeds maximum allowed (6000.00)"}, d.Reasons)
}

func TestCreditCooldown(t *testing.T) {
	in := Input{
		Type:    policy.TypeCredit,
		Policy:  creditPolicy(),
		Profile: profile(),
		Payload: Payload{Amount: decimal.NewFromInt(100)},
		Now:     now,
	}
	last := day(2025, 1, 20)
	in.History.LastResolvedAt = &last
	assert.False(t, Evaluate(in).Eligible)

	last = day(2024, 12, 20)
	assert.True(t, Evaluate(in).Eligible)
}

func TestLeaveSingleDayAndToday(t *testing.T) {
	d := Evaluate(leaveInput(DateOf(now), DateOf(now), "annual"))
	assert.True(t, d.Eligible, d.Reasons)
	require.NotNil(t, d.RequestedDays)
	assert.Equal(t, 1, *d.RequestedDays)
}

func TestLeaveStartInPast(t *testing.T) {
	d := Evaluate(leaveInput(day(2025, 6, 14), day(2025, 6, 16), "annual"))
	assert.False(t, d.Eligible)
	assert.Equal(t, []string{"Start date cannot be in the past"}, d.Reasons)
}

func TestLeaveInvertedRangeSkipsBalance(t *testing.T) {
	d := Evaluate(leaveInput(day(2025, 7, 10), day(2025, 7, 5), "annual"))
	assert.False(t, d.Eligible)
	assert.Equal(t, []string{"Start date must be before end date"}, d.Reasons)
	assert.Nil(t, d.RequestedDays)
}

func TestLeaveOverlapIgnoresLeaveType(t *testing.T) {
	in := leaveInput(day(2025, 7, 10), day(2025, 7, 12), "annual")
	in.History.Leaves = []LeaveWindow{{Start: day(2025, 7, 12), End: day(2025, 7, 14), LeaveType: "sick", Approved: false}}
	d := Evaluate(in)
	assert.False(t, d.Eligible)
	assert.Equal(t, []string{"Leave request overlaps with existing approved or pending leave"}, d.Reasons)
}

func TestLeaveAdjacentIsNotOverlap(t *testing.T) {
	in := leaveInput(day(2025, 7, 10), day(2025, 7, 12), "annual")
	in.History.Leaves = []LeaveWindow{{Start: day(2025, 7, 13), End: day(2025, 7, 14), LeaveType: "annual"}}
	assert.True(t, Evaluate(in).Eligible)
}

func TestLeaveBalanceBoundary(t *testing.T) {
	approved := []LeaveWindow{
		{Start: day(2025, 2, 3), End: day(2025, 2, 5), LeaveType: "annual", Approved: true},
		{Start: day(2025, 3, 10), End: day(2025, 3, 12), LeaveType: "annual", Approved: true},
		{Start: day(2025, 4, 1), End: day(2025, 4, 4), LeaveType: "sick", Approved: true},
		{Start: day(2024, 12, 1), End: day(2024, 12, 10), LeaveType: "annual", Approved: true},
	}

	exact := leaveInput(day(2025, 8, 4), day(2025, 8, 7), "annual")
	exact.History.Leaves = approved
	d := Evaluate(exact)
	assert.True(t, d.Eligible, d.Reasons)
	assert.Equal(t, 6, *d.UsedDays)
	assert.Equal(t, 0, *d.RemainingDays)

	over := leaveInput(day(2025, 8, 4), day(2025, 8, 8), "annual")
	over.History.Leaves = approved
	d = Evaluate(over)
	assert.False(t, d.Eligible)
	assert.Equal(t, []string{"Leave request exceeds available balance. You have used 6 days. Max allowed is 10."}, d.Reasons)
}

func TestLeaveDayCooldownBoundary(t *testing.T) {
	in := leaveInput(day(2025, 7, 1), day(2025, 7, 1), "annual")
	last := day(2025, 6, 9)
	in.History.LastResolvedAt = &last
	d := Evaluate(in)
	assert.False(t, d.Eligible)
	assert.Equal(t, []string{"Must wait 7 days between leave requests"}, d.Reasons)

	last = day(2025, 6, 8)
	assert.True(t, Evaluate(in).Eligible)
}

func TestExceptionalBypassesAllButActive(t *testing.T) {
	in := advanceInput("5000")
	in.Policy.IsActive = false
	in.Profile.SeniorityMonths = 0
	last := now
	in.History.LastResolvedAt = &last
	in.Exceptional = true
	assert.True(t, Evaluate(in).Eligible)

	in.History.HasActive = true
	d := Evaluate(in)
	assert.False(t, d.Eligible)
	require.Len(t, d.Reasons, 1)
	assert.Contains(t, d.Reasons[0], "already has an active request")
}

func TestExceptionalWithoutPolicy(t *testing.T) {
	in := advanceInput("5000")
	in.Policy = nil
	in.Exceptional = true
	d := Evaluate(in)
	assert.True(t, d.Eligible)
	assert.Nil(t, d.MaxAmount)
}

func TestBalance(t *testing.T) {
	terms := *leavePolicy().Leave
	leaves := []LeaveWindow{
		{Start: day(2025, 2, 3), End: day(2025, 2, 5), LeaveType: "annual", Approved: true},
		{Start: day(2025, 4, 1), End: day(2025, 4, 2), LeaveType: "sick", Approved: true},
		{Start: day(2025, 5, 1), End: day(2025, 5, 9), LeaveType: "annual", Approved: false},
		{Start: day(2024, 5, 1), End: day(2024, 5, 9), LeaveType: "annual", Approved: true},
	}

	b := Balance(terms, 4, leaves, 2025)
	assert.True(t, b.EarnedDays.Equal(decimal.NewFromInt(6)))
	assert.True(t, b.AvailableDays.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, 5, b.DaysUsed)
	assert.True(t, b.RemainingDays.Equal(decimal.NewFromInt(1)))

	capped := Balance(terms, 24, leaves, 2025)
	assert.True(t, capped.EarnedDays.Equal(decimal.NewFromInt(36)))
	assert.True(t, capped.AvailableDays.Equal(decimal.NewFromInt(10)))
}
