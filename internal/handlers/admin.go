package handlers

import (
	"net/http"
	"strings"
	"time"

	"earnings/internal/auth"
	"earnings/internal/websocket"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) AdminListUserEarnings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	earnings, err := h.earnings.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load earnings")
		return
	}
	payloads := make([]map[string]any, 0, len(earnings))
	for _, earning := range earnings {
		payloads = append(payloads, earningPayload(earning))
	}
	respondJSON(w, http.StatusOK, payloads)
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)
	logs, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

// TriggerSweep runs the expiry sweep on demand instead of waiting for the
// scheduled run.
func (h *Handler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	closed, err := h.periodSvc.Sweep(r.Context(), time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "sweep failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"closed": closed})
}

// WSStats upgrades to a websocket that receives the user's live weekly
// aggregate. Browsers cannot set headers on websocket requests, so the token
// may come in the query string.
func (h *Handler) WSStats(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
