package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"earnings/internal/middleware"
	"earnings/internal/stats"
	"earnings/internal/validator"

	"github.com/go-chi/chi/v5"
)

// WeeklyStats returns the live aggregate for the calendar week containing
// ?date= (default today), recomputed from the entry rows, together with the
// most recent frozen snapshots.
func (h *Handler) WeeklyStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format(stats.DateLayout)
	}
	if err := validator.ValidateDate(date); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	week, err := h.statsSvc.LiveWeek(r.Context(), userID, date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to compute stats")
		return
	}
	snapshots, err := h.snapshots.ListByUser(r.Context(), userID, queryInt(r, "limit", 10))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load snapshots")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"current":   week,
		"snapshots": snapshots,
	})
}

func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := queryInt(r, "limit", 52)
	snapshots, err := h.snapshots.ListByUser(r.Context(), userID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load snapshots")
		return
	}
	respondJSON(w, http.StatusOK, snapshots)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	weekStart := chi.URLParam(r, "weekStart")
	if err := validator.ValidateDate(weekStart); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	snapshot, err := h.snapshots.GetByUserAndWeek(r.Context(), userID, weekStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load snapshot")
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}
