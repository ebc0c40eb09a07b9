package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"earnings/internal/middleware"
	"earnings/internal/services"
	"earnings/internal/validator"
)

func (h *Handler) StartPeriod(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	period, err := h.periodSvc.Start(r.Context(), userID, time.Now().UTC(), r.RemoteAddr)
	if err != nil {
		if errors.Is(err, services.ErrActivePeriodExists) {
			respondError(w, http.StatusConflict, "an active period already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to start period")
		return
	}
	respondJSON(w, http.StatusCreated, period)
}

func (h *Handler) StopPeriod(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	stopped, err := h.periodSvc.Stop(r.Context(), userID, time.Now().UTC(), r.RemoteAddr)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to stop period")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{
		"success": true,
		"stopped": stopped,
	})
}

type setDayRequest struct {
	Day int `json:"day"`
}

func (h *Handler) SetPeriodDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req setDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateDay(req.Day); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.periodSvc.SetDay(r.Context(), userID, req.Day, r.RemoteAddr); err != nil {
		if errors.Is(err, services.ErrNoActivePeriod) {
			respondError(w, http.StatusBadRequest, "no active period")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to set day")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"day":     req.Day,
	})
}

// CurrentPeriod returns the active period together with its live aggregate.
func (h *Handler) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	period, err := h.periodSvc.Current(r.Context(), userID, time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load period")
		return
	}
	if period == nil {
		respondJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	week, err := h.periodSvc.AggregatePeriod(r.Context(), *period)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to aggregate period")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"active": true,
		"period": period,
		"stats":  week,
	})
}

func (h *Handler) PeriodHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	periods, err := h.periods.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load periods")
		return
	}
	respondJSON(w, http.StatusOK, periods)
}
