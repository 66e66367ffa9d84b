package requestshandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/notifications"
	"hrflow/internal/domain/policy"
	"hrflow/internal/domain/reports"
	"hrflow/internal/domain/requests"
	"hrflow/internal/platform/jobs"
	"hrflow/internal/platform/logger"
	"hrflow/internal/platform/metrics"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

type Handler struct {
	Service *requests.Service
	Reports *reports.Service
	Audit   *audit.Service
	Notify  *notifications.Service
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

func NewHandler(service *requests.Service, reportsSvc *reports.Service, auditSvc *audit.Service, notify *notifications.Service, jobsSvc *jobs.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Reports: reportsSvc, Audit: auditSvc, Notify: notify, Jobs: jobsSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	for _, kind := range policy.Types {
		r.Route("/"+string(kind)+"-requests", func(r chi.Router) {
			r.Get("/", h.handleList(kind))
			r.Post("/", h.handleCreate(kind))
			r.Get("/employee/{employeeID}", h.handleListByEmployee(kind))
			r.Get("/stats/overview", h.handleStats(kind))
			r.Get("/{requestID}", h.handleGet(kind))
		})
	}
	r.Route("/requests", func(r chi.Router) {
		r.Get("/exceptional", h.handleListExceptional)
		r.Get("/exceptional/export", h.handleExportExceptional)
		r.Post("/{requestID}/resolve", h.handleResolve)
	})
}

type createdResponse struct {
	ID      string           `json:"id"`
	Message string           `json:"message"`
	Request requests.Request `json:"request"`
}

func (h *Handler) handleCreate(kind policy.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetRequestID(r.Context())
		in, ok := shared.DecodeRequest(w, r, kind, reqID)
		if !ok {
			return
		}

		created, err := h.Service.Create(r.Context(), in)
		if err != nil {
			if shared.IsRejection(err) {
				h.Metrics.Count(metrics.OutcomeRejected)
			}
			shared.WriteError(w, r, err, string(kind)+"_request_create_failed")
			return
		}

		h.Metrics.Count(metrics.OutcomeCreated)
		action := string(kind) + ".create"
		if created.IsExceptional {
			h.Metrics.Count(metrics.OutcomeExceptional)
			action += ".exceptional"
		}
		if err := h.Audit.Record(r.Context(), shared.AuditMeta(r), action, "request", created.ID, nil, created); err != nil {
			logger.FromContext(r.Context()).Warn().Err(err).Str("action", action).Msg("audit failed")
		}
		h.notify(jobs.JobNotifySubmitted, created, notifications.TypeRequestSubmitted,
			fmt.Sprintf("%s request submitted", titleCase(string(kind))),
			fmt.Sprintf("Your %s request was submitted and is awaiting review.", kind))

		api.Created(w, createdResponse{
			ID:      created.ID,
			Message: fmt.Sprintf("%s request submitted successfully", titleCase(string(kind))),
			Request: created,
		}, reqID)
	}
}

func (h *Handler) handleGet(kind policy.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := h.Service.Get(r.Context(), chi.URLParam(r, "requestID"))
		if err == nil && req.Type != requests.Type(kind) {
			err = requests.ErrRequestNotFound
		}
		if err != nil {
			shared.WriteError(w, r, err, string(kind)+"_request_get_failed")
			return
		}
		api.Success(w, req, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleList(kind policy.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := shared.ParsePagination(r, 50, 500)
		filter := requests.ListFilter{
			Type:      requests.Type(kind),
			CompanyID: q.Get("company_id"),
			Limit:     page.Limit,
			Offset:    page.Offset,
		}
		v := shared.NewValidator()
		if raw := q.Get("status"); raw != "" {
			v.Enum("status", raw, []string{string(requests.StatusPending), string(requests.StatusResolved)}, "must be en_cours or traite")
			filter.Status = requests.Status(raw)
		}
		if v.Reject(w, middleware.GetRequestID(r.Context())) {
			return
		}

		items, err := h.Service.List(r.Context(), filter)
		if err != nil {
			shared.WriteError(w, r, err, string(kind)+"_request_list_failed")
			return
		}
		shared.SetTotalCount(w, len(items))
		api.Success(w, items, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleListByEmployee(kind policy.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.Service.ListByEmployee(r.Context(), chi.URLParam(r, "employeeID"), requests.Type(kind))
		if err != nil {
			shared.WriteError(w, r, err, string(kind)+"_request_list_failed")
			return
		}
		shared.SetTotalCount(w, len(items))
		api.Success(w, items, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleStats(kind policy.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.Service.Stats(r.Context(), requests.Type(kind))
		if err != nil {
			shared.WriteError(w, r, err, string(kind)+"_request_stats_failed")
			return
		}
		api.Success(w, stats, middleware.GetRequestID(r.Context()))
	}
}

type resolvePayload struct {
	Result string `json:"result"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload resolvePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("result", payload.Result, "is required")
	v.Enum("result", payload.Result, []string{string(requests.ResultApproved), string(requests.ResultRefused)}, "must be valide or refused")
	if v.Reject(w, reqID) {
		return
	}

	id := chi.URLParam(r, "requestID")
	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, r, err, "request_resolve_failed")
		return
	}
	after, err := h.Service.Resolve(r.Context(), id, requests.Result(payload.Result))
	if err != nil {
		shared.WriteError(w, r, err, "request_resolve_failed")
		return
	}

	h.Metrics.Count(metrics.OutcomeResolved)
	if err := h.Audit.Record(r.Context(), shared.AuditMeta(r), string(after.Type)+".resolve", "request", id, before, after); err != nil {
		logger.FromContext(r.Context()).Warn().Err(err).Msg("audit request.resolve failed")
	}
	ntype, verb := notifications.TypeRequestApproved, "approved"
	if after.Result == requests.ResultRefused {
		ntype, verb = notifications.TypeRequestRefused, "refused"
	}
	h.notify(jobs.JobNotifyResolved, after, ntype,
		fmt.Sprintf("%s request %s", titleCase(string(after.Type)), verb),
		fmt.Sprintf("Your %s request was %s.", after.Type, verb))

	api.Success(w, after, reqID)
}

func (h *Handler) handleListExceptional(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.exceptionalFilter(w, r)
	if !ok {
		return
	}
	items, err := h.Service.ListExceptional(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, r, err, "exceptional_list_failed")
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportExceptional(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.exceptionalFilter(w, r)
	if !ok {
		return
	}
	filter.Limit, filter.Offset = 0, 0

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=exceptional-requests.xlsx")
	n, err := h.Reports.ExportExceptional(r.Context(), filter, w)
	if err != nil {
		w.Header().Del("Content-Disposition")
		shared.WriteError(w, r, err, "exceptional_export_failed")
		return
	}
	logger.FromContext(r.Context()).Info().Int("rows", n).Msg("exceptional requests exported")
}

func (h *Handler) exceptionalFilter(w http.ResponseWriter, r *http.Request) (requests.ExceptionalFilter, bool) {
	q := r.URL.Query()
	page := shared.ParsePagination(r, 50, 500)
	filter := requests.ExceptionalFilter{
		CompanyID: q.Get("company_id"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}

	v := shared.NewValidator()
	if raw := q.Get("type"); raw != "" {
		v.Enum("type", raw, []string{string(policy.TypeAdvance), string(policy.TypeCredit), string(policy.TypeLeave)}, "must be advance, credit or leave")
		filter.Type = requests.Type(raw)
	}
	if raw := q.Get("from"); raw != "" {
		if from, ok := v.Date("from", raw); ok {
			filter.From = &from
		}
	}
	if raw := q.Get("to"); raw != "" {
		if to, ok := v.Date("to", raw); ok {
			// to is inclusive for callers; the store compares with <.
			end := to.AddDate(0, 0, 1)
			filter.To = &end
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return requests.ExceptionalFilter{}, false
	}
	return filter, true
}

// notify queues a notification for the request owner; failures are logged by the job runner.
func (h *Handler) notify(jobType string, req requests.Request, ntype, title, body string) {
	employeeID := req.EmployeeID
	h.Jobs.Enqueue(jobType, req.ID, func(ctx context.Context) error {
		_, err := h.Notify.Create(ctx, employeeID, ntype, title, body)
		return err
	})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
