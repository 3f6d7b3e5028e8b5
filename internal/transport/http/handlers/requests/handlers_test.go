package requestshandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"timeoff/internal/domain/auth"
	"timeoff/internal/transport/http/middleware"
)

func decideRequest(t *testing.T, h *Handler, requestID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/requests/"+requestID+"/approve", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("requestID", requestID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = middleware.WithUser(ctx, auth.UserContext{UserID: "u1", RoleID: "r1", RoleName: auth.RoleAdmin})

	rec := httptest.NewRecorder()
	h.handleApprove(rec, req.WithContext(ctx))
	return rec
}

func TestDecideRejectsMalformedRequestID(t *testing.T) {
	// The store is never reached, so a nil service is fine here.
	h := NewHandler(nil, nil)

	for _, id := range []string{"not-a-uuid", "123", "3f7e0000-zzzz-4d00-8000-000000000000"} {
		rec := decideRequest(t, h, id)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("id %q: expected 404, got %d", id, rec.Code)
		}
	}
}

func TestDecideWithoutUser(t *testing.T) {
	h := NewHandler(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/requests/3f7/approve", nil)
	rec := httptest.NewRecorder()
	h.handleApprove(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
