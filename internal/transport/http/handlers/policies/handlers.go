package policieshandler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/eligibility"
	"hrflow/internal/domain/policy"
	"hrflow/internal/domain/requests"
	"hrflow/internal/platform/logger"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

// Evaluator answers dry-run eligibility and leave balance queries.
type Evaluator interface {
	CheckEligibility(ctx context.Context, in requests.CreateInput) (requests.Evaluation, error)
	LeaveBalance(ctx context.Context, employeeID string) (eligibility.LeaveBalance, policy.Policy, error)
}

type Handler struct {
	Service   *policy.Service
	Evaluator Evaluator
	Audit     *audit.Service
}

func NewHandler(service *policy.Service, evaluator Evaluator, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Evaluator: evaluator, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	for _, kind := range policy.Types {
		r.Route("/"+string(kind)+"-policy", func(r chi.Router) {
			r.Post("/", h.handleCreate(kind))
			r.Get("/company/{companyID}", h.handleListByCompany(kind))
			r.Post("/check-eligibility", h.handleCheckEligibility(kind))
			if kind == policy.TypeLeave {
				r.Get("/employee/{employeeID}/balance", h.handleLeaveBalance)
			}
			r.Get("/{policyID}", h.handleGet(kind))
			r.Put("/{policyID}", h.handleUpdate(kind))
			r.Delete("/{policyID}", h.handleDelete(kind))
		})
	}
}

// policyPayload carries the fields of every policy type; only those of the
// route's type are read.
type policyPayload struct {
	CompanyID          string  `json:"company_id"`
	DepartmentID       *string `json:"department_id"`
	IsActive           *bool   `json:"is_active"`
	MinMonthsSeniority *int    `json:"min_months_seniority"`

	MaxPercentageSalary          *decimal.Decimal `json:"max_percentage_salary"`
	CooldownMonthsBetweenAdvance *int             `json:"cooldown_months_between_advance"`

	MaxSalaryMultiplier *decimal.Decimal `json:"max_salary_multiplier"`
	CooldownMonths      *int             `json:"cooldown_months"`

	DaysPerMonthWorked          *decimal.Decimal `json:"days_per_month_worked"`
	MaxDaysPerYear              *int             `json:"max_days_per_year"`
	CooldownDaysBetweenRequests *int             `json:"cooldown_days_between_requests"`
}

func (h *Handler) handleCreate(kind policy.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetRequestID(r.Context())
		var payload policyPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
			return
		}

		v := shared.NewValidator()
		v.Required("company_id", payload.CompanyID, "is required")
		requireTerms(v, kind, payload)
		if v.Reject(w, reqID) {
			return
		}

		p := policy.Policy{
			Type:               kind,
			CompanyID:          payload.CompanyID,
			DepartmentID:       payload.DepartmentID,
			IsActive:           payload.IsActive == nil || *payload.IsActive,
			MinMonthsSeniority: deref(payload.MinMonthsSeniority),
		}
		applyTerms(&p, payload)

		created, err := h.Service.Create(r.Context(), p)
		if err != nil {
			shared.WriteError(w, r, err, string(kind)+"_policy_create_failed")
			return
		}
		h.record(r, string(kind)+"_policy.create", created.ID, nil, created)
		api.Created(w, created, reqID)
	}
}

func (h *Handler) handleGet(kind policy.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.Service.Get(r.Context(), kind, chi.URLParam(r, "policyID"))
		if err != nil {
			shared.WriteError(w, r, err, string(kind)+"_policy_get_failed")
			return
		}
		api.Success(w, p, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleListByCompany(kind policy.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.Service.ListByCompany(r.Context(), kind, chi.URLParam(r, "companyID"))
		if err != nil {
			shared.WriteError(w, r, err, string(kind)+"_policy_list_failed")
			return
		}
		api.Success(w, items, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleUpdate(kind policy.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetRequestID(r.Context())
		var payload policyPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
			return
		}
		id := chi.URLParam(r, "policyID")
		current, err := h.Service.Get(r.Context(), kind, id)
		if err != nil {
			shared.WriteError(w, r, err, string(kind)+"_policy_update_failed")
			return
		}

		merged := current
		applyTerms(&merged, payload)
		patch := policy.Patch{
			IsActive:           payload.IsActive,
			MinMonthsSeniority: payload.MinMonthsSeniority,
			Advance:            merged.Advance,
			Credit:             merged.Credit,
			Leave:              merged.Leave,
		}
		before, after, err := h.Service.Update(r.Context(), kind, id, patch)
		if err != nil {
			shared.WriteError(w, r, err, string(kind)+"_policy_update_failed")
			return
		}
		h.record(r, string(kind)+"_policy.update", id, before, after)
		api.Success(w, after, reqID)
	}
}

func (h *Handler) handleDelete(kind policy.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "policyID")
		deleted, err := h.Service.Delete(r.Context(), kind, id)
		if err != nil {
			shared.WriteError(w, r, err, string(kind)+"_policy_delete_failed")
			return
		}
		h.record(r, string(kind)+"_policy.delete", id, deleted, nil)
		api.Success(w, map[string]string{"id": id, "status": "deleted"}, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleCheckEligibility(kind policy.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetRequestID(r.Context())
		in, ok := shared.DecodeRequest(w, r, kind, reqID)
		if !ok {
			return
		}
		eval, err := h.Evaluator.CheckEligibility(r.Context(), in)
		if err != nil {
			shared.WriteError(w, r, err, string(kind)+"_eligibility_failed")
			return
		}
		api.Success(w, eval, reqID)
	}
}

func (h *Handler) handleLeaveBalance(w http.ResponseWriter, r *http.Request) {
	balance, p, err := h.Evaluator.LeaveBalance(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.WriteError(w, r, err, "leave_balance_failed")
		return
	}
	api.Success(w, map[string]any{"balance": balance, "policy_id": p.ID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) record(r *http.Request, action, id string, before, after any) {
	err := h.Audit.Record(r.Context(), shared.AuditMeta(r), action, "policy", id, before, after)
	if err != nil {
		logger.FromContext(r.Context()).Warn().Err(err).Str("action", action).Msg("audit failed")
	}
}

func requireTerms(v *shared.Validator, kind policy.Type, p policyPayload) {
	missing := func(field string, present bool) {
		if !present {
			v.Add(field, "is required")
		}
	}
	missing("min_months_seniority", p.MinMonthsSeniority != nil)
	switch kind {
	case policy.TypeAdvance:
		missing("max_percentage_salary", p.MaxPercentageSalary != nil)
		missing("cooldown_months_between_advance", p.CooldownMonthsBetweenAdvance != nil)
	case policy.TypeCredit:
		missing("max_salary_multiplier", p.MaxSalaryMultiplier != nil)
		missing("cooldown_months", p.CooldownMonths != nil)
	case policy.TypeLeave:
		missing("days_per_month_worked", p.DaysPerMonthWorked != nil)
		missing("max_days_per_year", p.MaxDaysPerYear != nil)
		missing("cooldown_days_between_requests", p.CooldownDaysBetweenRequests != nil)
	}
}

// applyTerms overlays the payload's term fields onto p, keeping unset ones.
func applyTerms(p *policy.Policy, payload policyPayload) {
	switch p.Type {
	case policy.TypeAdvance:
		terms := policy.AdvanceTerms{}
		if p.Advance != nil {
			terms = *p.Advance
		}
		setDecimal(&terms.MaxPercentageSalary, payload.MaxPercentageSalary)
		setInt(&terms.CooldownMonths, payload.CooldownMonthsBetweenAdvance)
		p.Advance = &terms
	case policy.TypeCredit:
		terms := policy.CreditTerms{}
		if p.Credit != nil {
			terms = *p.Credit
		}
		setDecimal(&terms.MaxSalaryMultiplier, payload.MaxSalaryMultiplier)
		setInt(&terms.CooldownMonths, payload.CooldownMonths)
		p.Credit = &terms
	case policy.TypeLeave:
		terms := policy.LeaveTerms{}
		if p.Leave != nil {
			terms = *p.Leave
		}
		setDecimal(&terms.DaysPerMonthWorked, payload.DaysPerMonthWorked)
		setInt(&terms.MaxDaysPerYear, payload.MaxDaysPerYear)
		setInt(&terms.CooldownDays, payload.CooldownDaysBetweenRequests)
		p.Leave = &terms
	}
}

func setDecimal(dst *decimal.Decimal, src *decimal.Decimal) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
