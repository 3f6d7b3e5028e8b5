package holidayshandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"timeoff/internal/domain/auth"
	"timeoff/internal/domain/holidays"
	"timeoff/internal/transport/http/api"
	"timeoff/internal/transport/http/middleware"
	"timeoff/internal/transport/http/shared"
)

type Handler struct {
	Service *holidays.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *holidays.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/holidays", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermHolidaysRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermHolidaysWrite, h.Perms)).Post("/", h.handleAdd)
	})
}

type holidayPayload struct {
	Country  string `json:"country"`
	Location string `json:"location"`
	Name     string `json:"name"`
	Date     string `json:"date"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Service.List(r.Context(), r.URL.Query().Get("country"), r.URL.Query().Get("location"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_list_failed", "failed to list holidays", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, listing, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var payload holidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	date, _ := v.Date("date", payload.Date)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.Add(r.Context(), payload.Country, payload.Location, payload.Name, date)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_create_failed", "failed to create holiday", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}
