package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"earnings/internal/auth"
)

type stubRoleStore struct {
	getRoleFn func(ctx context.Context, userID string) (string, error)
}

func (s stubRoleStore) GetRole(ctx context.Context, userID string) (string, error) {
	return s.getRoleFn(ctx, userID)
}

func contextWithClaims(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, claimsKey, &auth.Claims{UserID: userID})
}

func TestRequireAdminMissingUser(t *testing.T) {
	handler := RequireAdmin(stubRoleStore{
		getRoleFn: func(context.Context, string) (string, error) {
			t.Fatalf("unexpected call")
			return "", nil
		},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called")
	}))
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	assertErrorBody(t, rr, "unauthorized")
}

func TestRequireAdminNotAdmin(t *testing.T) {
	handler := RequireAdmin(stubRoleStore{
		getRoleFn: func(context.Context, string) (string, error) {
			return "user", nil
		},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called")
	}))
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(contextWithClaims(req.Context(), "user-1"))
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	assertErrorBody(t, rr, "admin privileges required")
}

func TestRequireAdminStoreError(t *testing.T) {
	handler := RequireAdmin(stubRoleStore{
		getRoleFn: func(context.Context, string) (string, error) {
			return "", errors.New("boom")
		},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called")
	}))
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(contextWithClaims(req.Context(), "user-1"))
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	assertErrorBody(t, rr, "unable to verify role")
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	handler := RequireAdmin(stubRoleStore{
		getRoleFn: func(_ context.Context, userID string) (string, error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user: %s", userID)
			}
			return "admin", nil
		},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(contextWithClaims(req.Context(), "user-1"))
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
