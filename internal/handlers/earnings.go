package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"earnings/internal/middleware"
	"earnings/internal/models"
	"earnings/internal/money"
	"earnings/internal/store"
	"earnings/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type earningRequest struct {
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	DurationMinutes int     `json:"duration_minutes"`
	PaymentMethod   string  `json:"payment_method"`
	Description     *string `json:"description"`
	Date            string  `json:"date"`
}

// parseEarning validates the request and converts the decimal amount into the
// minor-unit column for its currency. The other two columns stay zero.
func parseEarning(req earningRequest) (store.EarningInput, error) {
	if err := validator.ValidateCurrency(req.Currency); err != nil {
		return store.EarningInput{}, err
	}
	if err := validator.ValidatePaymentMethod(req.PaymentMethod); err != nil {
		return store.EarningInput{}, err
	}
	if err := validator.ValidateDuration(req.DurationMinutes); err != nil {
		return store.EarningInput{}, err
	}
	if err := validator.ValidateDate(req.Date); err != nil {
		return store.EarningInput{}, err
	}
	minor, err := money.ParseMinor(req.Amount)
	if err != nil || minor <= 0 {
		return store.EarningInput{}, errors.New("amount must be a positive decimal")
	}
	input := store.EarningInput{
		DurationMinutes: req.DurationMinutes,
		PaymentMethod:   req.PaymentMethod,
		Description:     req.Description,
		Date:            req.Date,
	}
	switch req.Currency {
	case "GBP":
		input.GbpAmount = minor
	case "EUR":
		input.EurAmount = minor
	case "USD":
		input.UsdAmount = minor
	}
	return input, nil
}

func (h *Handler) CreateEarning(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req earningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	input, err := parseEarning(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	input.ID = uuid.NewString()
	input.UserID = userID
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.earnings.Create(r.Context(), tx, input)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save earning")
		return
	}
	data, _ := json.Marshal(map[string]any{
		"amount":   req.Amount,
		"currency": req.Currency,
		"date":     req.Date,
	})
	h.auditLog(r.Context(), &userID, "create_earning", "earning", input.ID, string(data), r.RemoteAddr)
	if _, err := h.statsSvc.RecomputeWeek(r.Context(), userID, input.Date); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to refresh stats")
		return
	}
	earning, err := h.earnings.GetByID(r.Context(), input.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load earning")
		return
	}
	respondJSON(w, http.StatusCreated, earningPayload(earning))
}

func (h *Handler) ListEarnings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
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

func (h *Handler) GetEarning(w http.ResponseWriter, r *http.Request) {
	earning, ok := h.loadOwnedEarning(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, earningPayload(earning))
}

func (h *Handler) UpdateEarning(w http.ResponseWriter, r *http.Request) {
	earning, ok := h.loadOwnedEarning(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	var req earningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	input, err := parseEarning(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.earnings.Update(r.Context(), tx, earning.ID, input)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update earning")
		return
	}
	data, _ := json.Marshal(map[string]any{
		"amount":   req.Amount,
		"currency": req.Currency,
		"date":     req.Date,
	})
	h.auditLog(r.Context(), &userID, "update_earning", "earning", earning.ID, string(data), r.RemoteAddr)
	// Moving an entry across weeks touches two aggregates.
	if _, err := h.statsSvc.RecomputeWeek(r.Context(), earning.UserID, input.Date); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to refresh stats")
		return
	}
	if earning.Date != input.Date {
		if _, err := h.statsSvc.RecomputeWeek(r.Context(), earning.UserID, earning.Date); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to refresh stats")
			return
		}
	}
	updated, err := h.earnings.GetByID(r.Context(), earning.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load earning")
		return
	}
	respondJSON(w, http.StatusOK, earningPayload(updated))
}

func (h *Handler) DeleteEarning(w http.ResponseWriter, r *http.Request) {
	earning, ok := h.loadOwnedEarning(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.earnings.Delete(r.Context(), tx, earning.ID)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete earning")
		return
	}
	data, _ := json.Marshal(map[string]string{"date": earning.Date})
	h.auditLog(r.Context(), &userID, "delete_earning", "earning", earning.ID, string(data), r.RemoteAddr)
	if _, err := h.statsSvc.RecomputeWeek(r.Context(), earning.UserID, earning.Date); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to refresh stats")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// loadOwnedEarning fetches the entry from the URL and enforces ownership.
// Admins may act on any entry; the role comes from the database, not the
// token claim.
func (h *Handler) loadOwnedEarning(w http.ResponseWriter, r *http.Request) (models.Earning, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return models.Earning{}, false
	}
	earning, err := h.earnings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "earning not found")
			return models.Earning{}, false
		}
		respondError(w, http.StatusInternalServerError, "unable to load earning")
		return models.Earning{}, false
	}
	if earning.UserID != userID {
		role, err := h.users.GetRole(r.Context(), userID)
		if err != nil || role != models.RoleAdmin {
			respondError(w, http.StatusForbidden, "access denied")
			return models.Earning{}, false
		}
	}
	return earning, true
}
