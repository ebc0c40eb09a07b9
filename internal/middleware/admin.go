package middleware

import (
	"context"
	"net/http"

	"earnings/internal/models"
)

type RoleStore interface {
	GetRole(ctx context.Context, userID string) (string, error)
}

// RequireAdmin re-reads the role from the database rather than trusting the
// token claim, so demoting an admin takes effect before their token expires.
func RequireAdmin(roles RoleStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			role, err := roles.GetRole(r.Context(), userID)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "unable to verify role")
				return
			}
			if role != models.RoleAdmin {
				respondError(w, http.StatusForbidden, "admin privileges required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
