// Package eligibility decides whether an employee may submit an advance,
// credit or leave request under a policy. Evaluation is pure: callers load
// the policy, profile and history and pass them in.
package eligibility

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hrflow/internal/domain/employee"
	"hrflow/internal/domain/policy"
)

var hundred = decimal.NewFromInt(100)

type Payload struct {
	Amount    decimal.Decimal
	StartDate time.Time
	EndDate   time.Time
	LeaveType string
}

// LeaveWindow is an existing leave of the employee that was not refused.
type LeaveWindow struct {
	Start     time.Time
	End       time.Time
	LeaveType string
	Approved  bool
}

type History struct {
	// HasActive is true when a same-type request is still en_cours.
	HasActive bool
	// LastResolvedAt is the submission date of the latest resolved same-type request.
	LastResolvedAt *time.Time
	Leaves         []LeaveWindow
}

type Input struct {
	Type        policy.Type
	Policy      *policy.Policy
	Profile     employee.Profile
	Payload     Payload
	History     History
	Exceptional bool
	Now         time.Time
}

type Decision struct {
	Eligible      bool             `json:"is_eligible"`
	Reasons       []string         `json:"reasons"`
	MaxAmount     *decimal.Decimal `json:"max_allowed_amount,omitempty"`
	RequestedDays *int             `json:"requested_days,omitempty"`
	UsedDays      *int             `json:"used_days,omitempty"`
	RemainingDays *int             `json:"remaining_days,omitempty"`
}

func (d *Decision) reject(format string, args ...any) {
	d.Eligible = false
	d.Reasons = append(d.Reasons, fmt.Sprintf(format, args...))
}

// Evaluate applies every rule and collects all violations.
// An exceptional request is only subject to the single-active-request rule.
func Evaluate(in Input) Decision {
	d := Decision{Eligible: true, Reasons: []string{}}

	if in.History.HasActive {
		d.reject("%s", ActiveRequestReason(in.Type))
	}
	if in.Exceptional || in.Policy == nil {
		return d
	}
	p := in.Policy

	if !p.IsActive {
		d.reject("%s policy is not active", titleCase(string(in.Type)))
	}
	if in.Profile.SeniorityMonths < p.MinMonthsSeniority {
		d.reject("Employee must have at least %d months of seniority", p.MinMonthsSeniority)
	}

	switch in.Type {
	case policy.TypeAdvance, policy.TypeCredit:
		evaluateAmount(&d, in)
		if in.History.LastResolvedAt != nil {
			cooldown := p.Cooldown()
			if MonthsBetween(*in.History.LastResolvedAt, in.Now) < cooldown {
				d.reject("Must wait %d months between %s requests", cooldown, in.Type)
			}
		}
	case policy.TypeLeave:
		evaluateLeave(&d, in)
	}
	return d
}

func ActiveRequestReason(t policy.Type) string {
	return fmt.Sprintf("Employee already has an active request of this type (%s)", t)
}

// MaxAmount is the cap for advance (salary * pct / 100) and credit (salary * multiplier).
func MaxAmount(p policy.Policy, salary decimal.Decimal) (decimal.Decimal, bool) {
	switch {
	case p.Advance != nil:
		return salary.Mul(p.Advance.MaxPercentageSalary).Div(hundred), true
	case p.Credit != nil:
		return salary.Mul(p.Credit.MaxSalaryMultiplier), true
	}
	return decimal.Zero, false
}

func evaluateAmount(d *Decision, in Input) {
	limit, ok := MaxAmount(*in.Policy, in.Profile.BrutSalary)
	if !ok {
		return
	}
	d.MaxAmount = &limit
	if in.Payload.Amount.GreaterThan(limit) {
		d.reject("Amount exceeds maximum allowed (%s)", limit.StringFixed(2))
	}
}

func evaluateLeave(d *Decision, in Input) {
	p := in.Policy
	start, end := DateOf(in.Payload.StartDate), DateOf(in.Payload.EndDate)

	if in.History.LastResolvedAt != nil && p.Leave != nil {
		cooldown := p.Leave.CooldownDays
		if DaysBetween(*in.History.LastResolvedAt, in.Now) < cooldown {
			d.reject("Must wait %d days between leave requests", cooldown)
		}
	}
	if start.Before(DateOf(in.Now)) {
		d.reject("Start date cannot be in the past")
	}
	if end.Before(start) {
		d.reject("Start date must be before end date")
		return
	}

	for _, w := range in.History.Leaves {
		if Overlaps(start, end, w.Start, w.End) {
			d.reject("Leave request overlaps with existing approved or pending leave")
			break
		}
	}

	if p.Leave == nil {
		return
	}
	requested := InclusiveDays(start, end)
	used := UsedDays(in.History.Leaves, in.Payload.LeaveType, start.Year())
	remaining := p.Leave.MaxDaysPerYear - used - requested
	if remaining < 0 {
		remaining = 0
	}
	d.RequestedDays, d.UsedDays, d.RemainingDays = &requested, &used, &remaining
	if used+requested > p.Leave.MaxDaysPerYear {
		d.reject("Leave request exceeds available balance. You have used %d days. Max allowed is %d.", used, p.Leave.MaxDaysPerYear)
	}
}

// UsedDays sums the inclusive spans of approved leaves of leaveType starting in year.
func UsedDays(leaves []LeaveWindow, leaveType string, year int) int {
	total := 0
	for _, w := range leaves {
		if !w.Approved || w.LeaveType != leaveType || DateOf(w.Start).Year() != year {
			continue
		}
		total += InclusiveDays(w.Start, w.End)
	}
	return total
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type LeaveBalance struct {
	Year           int             `json:"year"`
	MonthsWorked   int             `json:"months_worked"`
	EarnedDays     decimal.Decimal `json:"earned_days"`
	MaxDaysPerYear int             `json:"max_days_per_year"`
	AvailableDays  decimal.Decimal `json:"available_days"`
	DaysUsed       int             `json:"days_used"`
	RemainingDays  decimal.Decimal `json:"remaining_days"`
}

// Balance accrues DaysPerMonthWorked over the employee's seniority, capped at
// MaxDaysPerYear, minus approved leave of any type starting in year.
func Balance(terms policy.LeaveTerms, seniorityMonths int, leaves []LeaveWindow, year int) LeaveBalance {
	earned := terms.DaysPerMonthWorked.Mul(decimal.NewFromInt(int64(seniorityMonths)))
	available := decimal.Min(earned, decimal.NewFromInt(int64(terms.MaxDaysPerYear)))
	used := 0
	for _, w := range leaves {
		if w.Approved && DateOf(w.Start).Year() == year {
			used += InclusiveDays(w.Start, w.End)
		}
	}
	return LeaveBalance{
		Year:           year,
		MonthsWorked:   seniorityMonths,
		EarnedDays:     earned,
		MaxDaysPerYear: terms.MaxDaysPerYear,
		AvailableDays:  available,
		DaysUsed:       used,
		RemainingDays:  available.Sub(decimal.NewFromInt(int64(used))),
	}
}
