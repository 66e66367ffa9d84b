package requests_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrflow/internal/domain/eligibility"
	"hrflow/internal/domain/employee"
	"hrflow/internal/domain/policy"
	"hrflow/internal/domain/requests"
	"hrflow/internal/platform/seed"
	"hrflow/internal/platform/sqlite"
)

const fixture = `
companies:
  - id: c1
    name: Acme
    departments:
      - id: d1
        name: Operations
    employees:
      - id: e1
        full_name: Salma Idrissi
        brut_salary: "2000"
        seniority_in_months: 12
      - id: e2
        full_name: Yassine Amrani
        brut_salary: "2000"
        seniority_in_months: 3
      - id: e3
        full_name: Nadia Berrada
        department_id: d1
        brut_salary: "2000"
        seniority_in_months: 12
    policies:
      - type: advance
        min_months_seniority: 6
        max_percentage_salary: "30"
        cooldown_months: 2
      - type: advance
        department_id: d1
        min_months_seniority: 0
        max_percentage_salary: "50"
        cooldown_months: 0
      - type: credit
        min_months_seniority: 6
        max_salary_multiplier: "3"
        cooldown_months: 6
      - type: leave
        min_months_seniority: 0
        days_per_month_worked: "1.5"
        max_days_per_year: 10
        cooldown_days: 0
  - id: c2
    name: Empty Co
    employees:
      - id: e4
        full_name: Omar Tazi
        brut_salary: "3000"
        seniority_in_months: 24
`

var now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type env struct {
	svc   *requests.Service
	store *sqlite.Requests
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "hrflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db))

	policies := policy.NewService(&sqlite.Policies{DB: db})
	f, err := seed.Parse([]byte(fixture))
	require.NoError(t, err)
	_, err = seed.Apply(ctx, f, &sqlite.SeedWriter{DB: db}, policies)
	require.NoError(t, err)

	store := &sqlite.Requests{DB: db}
	svc := requests.NewService(store, employee.NewService(&sqlite.Employees{DB: db}), policies, time.Second)
	svc.Now = func() time.Time { return now }
	return &env{svc: svc, store: store}
}

func advance(employeeID, amount string) requests.CreateInput {
	return requests.CreateInput{Type: policy.TypeAdvance, EmployeeID: employeeID, Amount: decimal.RequireFromString(amount)}
}

func leave(employeeID, start, end, leaveType string) requests.CreateInput {
	s, _ := time.Parse(time.DateOnly, start)
	e, _ := time.Parse(time.DateOnly, end)
	return requests.CreateInput{Type: policy.TypeLeave, EmployeeID: employeeID, StartDate: s, EndDate: e, LeaveType: leaveType}
}

func rejection(t *testing.T, err error) []string {
	t.Helper()
	var rej *requests.RejectedError
	require.ErrorAs(t, err, &rej)
	return rej.Reasons
}

func TestCreateAdvanceWithinCapThenOverCap(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, advance("e1", "500"))
	require.NoError(t, err)
	assert.Equal(t, requests.StatusPending, created.Status)
	assert.Equal(t, requests.ResultNone, created.Result)
	assert.Equal(t, "c1", created.CompanyID)
	require.NotNil(t, created.PolicyID)

	stored, err := e.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Advance)
	assert.True(t, stored.Advance.Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, *created.PolicyID, *stored.PolicyID)
	assert.True(t, stored.SubmissionDate.Equal(now))

	_, err = e.svc.Create(ctx, advance("e1", "700"))
	reasons := rejection(t, err)
	assert.Contains(t, reasons, "Amount exceeds maximum allowed (600.00)")
	assert.Contains(t, reasons, eligibility.ActiveRequestReason(policy.TypeAdvance))
}

func TestCreateCapBoundary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, advance("e1", "600.01"))
	rejection(t, err)

	_, err = e.svc.Create(ctx, advance("e1", "600"))
	require.NoError(t, err)
}

func TestRejectionIsIdempotentAndWritesNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, advance("e2", "100"))
	first := rejection(t, err)
	_, err = e.svc.Create(ctx, advance("e2", "100"))
	second := rejection(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"Employee must have at least 6 months of seniority"}, first)

	list, err := e.svc.ListByEmployee(ctx, "e2", requests.TypeAdvance)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConcurrentCreateAllowsOneActiveRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.svc.Create(ctx, advance("e1", "500"))
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Contains(t, rejection(t, err), eligibility.ActiveRequestReason(policy.TypeAdvance))
		rejected++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)

	list, err := e.svc.ListByEmployee(ctx, "e1", requests.TypeAdvance)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

type failingDetailStore struct {
	*sqlite.Requests
}

func (s failingDetailStore) InTx(ctx context.Context, fn func(requests.TxStore) error) error {
	return s.Requests.InTx(ctx, func(tx requests.TxStore) error {
		return fn(failingDetailTx{tx})
	})
}

type failingDetailTx struct {
	requests.TxStore
}

func (failingDetailTx) InsertDetail(context.Context, requests.Request) error {
	return errors.New("disk full")
}

func TestCreateRollsBackWhenDetailInsertFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.svc.Store = failingDetailStore{e.store}

	_, err := e.svc.Create(ctx, advance("e1", "500"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	list, err := e.store.ListByEmployee(ctx, "e1", requests.TypeAdvance)
	require.NoError(t, err)
	assert.Empty(t, list)

	e.svc.Store = e.store
	_, err = e.svc.Create(ctx, advance("e1", "500"))
	require.NoError(t, err)
}

func TestCreateNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, advance("missing", "100"))
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = e.svc.Create(ctx, advance("e4", "100"))
	assert.ErrorIs(t, err, policy.ErrPolicyNotFound)
}

func TestCreateValidation(t *testing.T) {
	e := newEnv(t)

	in := advance("e1", "0")
	in.IsExceptional = true
	_, err := e.svc.Create(context.Background(), in)
	var verr *requests.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	in = advance("e1", "100")
	in.CompanyID = "c2"
	_, err = e.svc.Create(context.Background(), in)
	require.ErrorAs(t, err, &verr)
}

func TestDepartmentPolicyWins(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Create(context.Background(), advance("e3", "1000"))
	require.NoError(t, err)
}

func TestExceptionalBypassesRulesExceptActive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	in := advance("e2", "5000")
	in.IsExceptional = true
	in.ExceptionReason = "family emergency"
	created, err := e.svc.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, created.IsExceptional)
	require.NotNil(t, created.ExceptionReason)
	assert.Equal(t, "family emergency", *created.ExceptionReason)

	_, err = e.svc.Create(ctx, in)
	assert.Equal(t, []string{eligibility.ActiveRequestReason(policy.TypeAdvance)}, rejection(t, err))

	noPolicy := advance("e4", "100")
	noPolicy.IsExceptional = true
	noPolicy.ExceptionReason = "no policy configured yet"
	orphan, err := e.svc.Create(ctx, noPolicy)
	require.NoError(t, err)
	assert.Nil(t, orphan.PolicyID)

	list, err := e.svc.ListExceptional(ctx, requests.ExceptionalFilter{CompanyID: "c1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestResolve(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.svc.Create(ctx, advance("e1", "500"))
	require.NoError(t, err)

	_, err = e.svc.Resolve(ctx, created.ID, requests.ResultNone)
	var verr *requests.ValidationError
	require.ErrorAs(t, err, &verr)

	resolved, err := e.svc.Resolve(ctx, created.ID, requests.ResultApproved)
	require.NoError(t, err)
	assert.Equal(t, requests.StatusResolved, resolved.Status)
	assert.Equal(t, requests.ResultApproved, resolved.Result)
	require.NotNil(t, resolved.ResultDate)

	_, err = e.svc.Resolve(ctx, created.ID, requests.ResultRefused)
	assert.ErrorIs(t, err, requests.ErrAlreadyResolved)

	_, err = e.svc.Resolve(ctx, "missing", requests.ResultRefused)
	assert.ErrorIs(t, err, requests.ErrRequestNotFound)

	stats, err := e.svc.Stats(ctx, requests.TypeAdvance)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 0, stats.Pending)
	assert.True(t, stats.ApprovedAmount.Equal(decimal.NewFromInt(500)))
}

func TestListFiltersByStatusAndCompany(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.svc.Create(ctx, advance("e1", "500"))
	require.NoError(t, err)
	second, err := e.svc.Create(ctx, advance("e3", "700"))
	require.NoError(t, err)
	_, err = e.svc.Create(ctx, leave("e1", "2025-07-01", "2025-07-02", "annual"))
	require.NoError(t, err)
	_, err = e.svc.Resolve(ctx, first.ID, requests.ResultApproved)
	require.NoError(t, err)

	ids := func(f requests.ListFilter) []string {
		t.Helper()
		list, err := e.svc.List(ctx, f)
		require.NoError(t, err)
		out := []string{}
		for _, r := range list {
			out = append(out, r.ID)
		}
		return out
	}

	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids(requests.ListFilter{Type: requests.TypeAdvance}))
	assert.Equal(t, []string{second.ID}, ids(requests.ListFilter{Type: requests.TypeAdvance, Status: requests.StatusPending}))
	assert.Equal(t, []string{first.ID}, ids(requests.ListFilter{Type: requests.TypeAdvance, Status: requests.StatusResolved, CompanyID: "c1"}))
	assert.Empty(t, ids(requests.ListFilter{Type: requests.TypeAdvance, CompanyID: "c2"}))
	assert.Empty(t, ids(requests.ListFilter{Type: requests.TypeCredit}))
	assert.Len(t, ids(requests.ListFilter{Type: requests.TypeAdvance, Limit: 1}), 1)
	assert.Len(t, ids(requests.ListFilter{Type: requests.TypeAdvance, Limit: 1, Offset: 1}), 1)
	assert.Empty(t, ids(requests.ListFilter{Type: requests.TypeAdvance, Limit: 1, Offset: 2}))
}

func TestStatsCountsApprovedLeaveDays(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	approved, err := e.svc.Create(ctx, leave("e1", "2025-07-01", "2025-07-03", "annual"))
	require.NoError(t, err)
	_, err = e.svc.Resolve(ctx, approved.ID, requests.ResultApproved)
	require.NoError(t, err)

	refused, err := e.svc.Create(ctx, leave("e3", "2025-07-10", "2025-07-11", "sick"))
	require.NoError(t, err)
	_, err = e.svc.Resolve(ctx, refused.ID, requests.ResultRefused)
	require.NoError(t, err)

	stats, err := e.svc.Stats(ctx, requests.TypeLeave)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 3, stats.ApprovedDays)
	assert.Equal(t, map[string]int{"annual": 3}, stats.ApprovedDaysByLeaveType)

	stats, err = e.svc.Stats(ctx, requests.TypeAdvance)
	require.NoError(t, err)
	assert.Zero(t, stats.ApprovedDays)
	assert.Nil(t, stats.ApprovedDaysByLeaveType)
}

func TestCooldownAfterResolution(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.svc.Now = func() time.Time { return time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC) }
	created, err := e.svc.Create(ctx, advance("e1", "500"))
	require.NoError(t, err)
	_, err = e.svc.Resolve(ctx, created.ID, requests.ResultApproved)
	require.NoError(t, err)

	e.svc.Now = func() time.Time { return time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC) }
	_, err = e.svc.Create(ctx, advance("e1", "500"))
	assert.Equal(t, []string{"Must wait 2 months between advance requests"}, rejection(t, err))

	e.svc.Now = func() time.Time { return time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC) }
	_, err = e.svc.Create(ctx, advance("e1", "500"))
	require.NoError(t, err)
}

func TestLeaveOverlapAndBalance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.svc.Create(ctx, leave("e1", "2025-07-01", "2025-07-10", "annual"))
	require.NoError(t, err)
	require.NotNil(t, first.Leave)
	assert.Equal(t, "2025-07-01", first.Leave.StartDate.Format(time.DateOnly))

	_, err = e.svc.Resolve(ctx, first.ID, requests.ResultApproved)
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, leave("e1", "2025-07-10", "2025-07-12", "sick"))
	assert.Contains(t, rejection(t, err), "Leave request overlaps with existing approved or pending leave")

	_, err = e.svc.Create(ctx, leave("e1", "2025-08-01", "2025-08-01", "annual"))
	assert.Equal(t, []string{"Leave request exceeds available balance. You have used 10 days. Max allowed is 10."}, rejection(t, err))

	bal, pol, err := e.svc.LeaveBalance(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, policy.TypeLeave, pol.Type)
	assert.Equal(t, 2025, bal.Year)
	assert.Equal(t, 10, bal.DaysUsed)
	assert.True(t, bal.EarnedDays.Equal(decimal.NewFromInt(18)))
	assert.True(t, bal.RemainingDays.IsZero())
}

func TestCheckEligibilityWritesNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	eval, err := e.svc.CheckEligibility(ctx, advance("e1", "700"))
	require.NoError(t, err)
	assert.False(t, eval.Decision.Eligible)
	require.NotNil(t, eval.Decision.MaxAmount)
	assert.Equal(t, "600.00", eval.Decision.MaxAmount.StringFixed(2))
	require.NotNil(t, eval.Policy)
	assert.Equal(t, "e1", eval.Profile.ID)

	eval, err = e.svc.CheckEligibility(ctx, advance("e1", "500"))
	require.NoError(t, err)
	assert.True(t, eval.Decision.Eligible)

	list, err := e.svc.ListByEmployee(ctx, "e1", requests.TypeAdvance)
	require.NoError(t, err)
	assert.Empty(t, list)
}
