package reportshandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"timeoff/internal/domain/auth"
	"timeoff/internal/domain/reports"
	"timeoff/internal/transport/http/api"
	"timeoff/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/work-data", h.handleWorkData)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/work-data/pdf", h.handleWorkDataPDF)
	})
}

func (h *Handler) handleWorkData(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.WorkData(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to compute work data", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleWorkDataPDF(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.WorkData(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to compute work data", middleware.GetRequestID(r.Context()))
		return
	}

	now := time.Now()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+reports.FileName(now)+`"`)
	if err := reports.WritePDF(w, rows, now); err != nil {
		// Headers are already out; nothing useful left to send.
		return
	}
}
