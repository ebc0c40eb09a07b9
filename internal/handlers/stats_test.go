package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"earnings/internal/models"
	"earnings/internal/stats"
)

func TestWeeklyStatsDefaultsToToday(t *testing.T) {
	requested := ""
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubEarningStore{}, stubPeriodStore{}, stubSnapshotStore{
		listByUserFn: func(_ context.Context, _ string, limit int) ([]models.WeekSnapshot, error) {
			if limit != 10 {
				t.Fatalf("unexpected limit: %d", limit)
			}
			return []models.WeekSnapshot{{ID: "snap-1", WeekStart: "2024-02-26"}}, nil
		},
	}, stubAuditStore{}, stubPeriodService{}, stubStatsService{
		liveWeekFn: func(_ context.Context, _, date string) (stats.Week, error) {
			requested = date
			return stats.Week{WeekStart: "2024-03-04", TotalGbp: 500}, nil
		},
	})

	rr := serve(handler.WeeklyStats, authedRequest(t, http.MethodGet, "/stats/weekly", nil, "user-1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if requested == "" {
		t.Fatal("expected a date to be requested")
	}
	var payload struct {
		Current   stats.Week            `json:"current"`
		Snapshots []models.WeekSnapshot `json:"snapshots"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Current.TotalGbp != 500 || len(payload.Snapshots) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestWeeklyStatsWithExplicitDate(t *testing.T) {
	requested := ""
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubEarningStore{}, stubPeriodStore{}, stubSnapshotStore{}, stubAuditStore{}, stubPeriodService{}, stubStatsService{
		liveWeekFn: func(_ context.Context, _, date string) (stats.Week, error) {
			requested = date
			return stats.Week{}, nil
		},
	})

	rr := serve(handler.WeeklyStats, authedRequest(t, http.MethodGet, "/stats/weekly?date=2024-03-06", nil, "user-1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if requested != "2024-03-06" {
		t.Fatalf("expected 2024-03-06, got %q", requested)
	}
}

func TestWeeklyStatsRejectsBadDate(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubEarningStore{}, stubPeriodStore{}, stubSnapshotStore{}, stubAuditStore{}, stubPeriodService{}, stubStatsService{
		liveWeekFn: func(context.Context, string, string) (stats.Week, error) {
			t.Fatal("live week should not be called")
			return stats.Week{}, nil
		},
	})

	rr := serve(handler.WeeklyStats, authedRequest(t, http.MethodGet, "/stats/weekly?date=06-03-2024", nil, "user-1", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListSnapshots(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubEarningStore{}, stubPeriodStore{}, stubSnapshotStore{
		listByUserFn: func(_ context.Context, userID string, limit int) ([]models.WeekSnapshot, error) {
			if limit != 52 {
				t.Fatalf("unexpected limit: %d", limit)
			}
			return []models.WeekSnapshot{
				{ID: "snap-1", UserID: userID, WeekStart: "2024-03-04", WeekEnd: "2024-03-11", TotalEur: 1000},
			}, nil
		},
	}, stubAuditStore{}, stubPeriodService{}, stubStatsService{})

	rr := serve(handler.ListSnapshots, authedRequest(t, http.MethodGet, "/snapshots", nil, "user-1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []models.WeekSnapshot
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 1 || payload[0].TotalEur != 1000 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestGetSnapshotNotFound(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubEarningStore{}, stubPeriodStore{}, stubSnapshotStore{
		getByUserAndWeekFn: func(context.Context, string, string) (models.WeekSnapshot, error) {
			return models.WeekSnapshot{}, sql.ErrNoRows
		},
	}, stubAuditStore{}, stubPeriodService{}, stubStatsService{})

	rr := serve(handler.GetSnapshot, authedRequest(t, http.MethodGet, "/snapshots/2024-03-04", nil, "user-1", map[string]string{"weekStart": "2024-03-04"}))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
