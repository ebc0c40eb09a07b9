package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"earnings/internal/models"
	"earnings/internal/money"

	"github.com/jmoiron/sqlx"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// auditLog writes an audit row in its own transaction, after the primary
// operation has committed. Best-effort: a failed write is logged and dropped,
// never surfaced to the caller.
func (h *Handler) auditLog(ctx context.Context, actorID *string, action, entityType, entityID, data, ipAddress string) {
	err := h.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return h.audit.Log(ctx, tx, actorID, action, entityType, entityID, data, ipAddress)
	})
	if err != nil {
		log.Printf("audit: %s %s/%s: %v", action, entityType, entityID, err)
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

// earningPayload exposes both the raw minor-unit columns and a single
// amount/currency pair derived from whichever column is set.
func earningPayload(e models.Earning) map[string]any {
	amount, currency := primaryAmount(e)
	return map[string]any{
		"id":               e.ID,
		"user_id":          e.UserID,
		"amount":           money.FormatMinor(amount),
		"currency":         currency,
		"gbp_amount":       e.GbpAmount,
		"eur_amount":       e.EurAmount,
		"usd_amount":       e.UsdAmount,
		"duration_minutes": e.DurationMinutes,
		"payment_method":   e.PaymentMethod,
		"description":      e.Description,
		"date":             e.Date,
		"created_at":       e.CreatedAt,
		"updated_at":       e.UpdatedAt,
	}
}

func primaryAmount(e models.Earning) (int64, string) {
	switch {
	case e.EurAmount != 0:
		return e.EurAmount, "EUR"
	case e.UsdAmount != 0:
		return e.UsdAmount, "USD"
	default:
		return e.GbpAmount, "GBP"
	}
}
