package requestshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"timeoff/internal/domain/auth"
	"timeoff/internal/domain/requests"
	"timeoff/internal/transport/http/api"
	"timeoff/internal/transport/http/middleware"
	"timeoff/internal/transport/http/shared"
)

type Handler struct {
	Service *requests.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *requests.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermRequestsRead, h.Perms)).Get("/dashboard", h.handleDashboard)
	r.Route("/requests", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermRequestsWrite, h.Perms)).Post("/", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermRequestsRead, h.Perms)).Get("/", h.handleManage)
		r.With(middleware.RequirePermission(auth.PermRequestsRead, h.Perms)).Get("/history", h.handleHistory)
		r.With(middleware.RequirePermission(auth.PermRequestsReview, h.Perms)).Get("/review", h.handleReviewQueue)
		r.With(middleware.RequirePermission(auth.PermRequestsReview, h.Perms)).Post("/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermRequestsReview, h.Perms)).Post("/{requestID}/reject", h.handleReject)
	})
}

type submitPayload struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	count, err := h.Service.PendingCountFor(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to load dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]int{"pendingCount": count}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	// The ledger stores lowercase type values; accept any casing on the way in.
	kind := strings.ToLower(strings.TrimSpace(payload.Type))

	v := shared.NewValidator()
	v.Required("type", kind, "type is required")
	v.Enum("type", kind, requests.Types, "must be one of vacation, sick, personal, other")
	v.Required("reason", payload.Reason, "reason is required")
	startDate, _ := v.Date("startDate", payload.StartDate)
	endDate, _ := v.Date("endDate", payload.EndDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.Submit(r.Context(), user.UserID, kind, startDate, endDate, payload.Reason)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "submit_failed", "failed to submit request", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id, "status": requests.StatusPending}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleManage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	list, err := h.Service.ListFor(r.Context(), user.RoleName, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	list, err := h.Service.HistoryFor(r.Context(), user.RoleName, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "history_failed", "failed to list request history", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReviewQueue(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.PendingQueue(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_failed", "failed to list pending requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, requests.StatusApproved)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, requests.StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status string) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	// A malformed id can never match a row; reject it before the store turns
	// the failed uuid cast into a 500.
	requestID := chi.URLParam(r, "requestID")
	if uuid.Validate(requestID) != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", middleware.GetRequestID(r.Context()))
		return
	}

	var err error
	if status == requests.StatusApproved {
		err = h.Service.Approve(r.Context(), requestID, user.UserID, user.RoleName)
	} else {
		err = h.Service.Reject(r.Context(), requestID, user.UserID, user.RoleName)
	}

	switch {
	case errors.Is(err, requests.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "request not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, requests.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "manager or admin role required", middleware.GetRequestID(r.Context()))
	case errors.Is(err, requests.ErrAlreadyDecided):
		api.Fail(w, http.StatusConflict, "already_decided", "request has already been decided", middleware.GetRequestID(r.Context()))
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "decision_failed", "failed to update request", middleware.GetRequestID(r.Context()))
	default:
		api.Success(w, map[string]string{"id": requestID, "status": status}, middleware.GetRequestID(r.Context()))
	}
}
