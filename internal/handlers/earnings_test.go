package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"earnings/internal/middleware"
	"earnings/internal/models"
	"earnings/internal/stats"
	"earnings/internal/store"

	"github.com/go-chi/chi/v5"
)

func authedRequest(t *testing.T, method, target string, body []byte, userID string, params map[string]string) *http.Request {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Authorization", "Bearer "+testToken(t, userID))
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range params {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
	return rr
}

func TestCreateEarningConvertsToMinorUnits(t *testing.T) {
	var created store.EarningInput
	recomputed := ""
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubEarningStore{
		createFn: func(_ context.Context, _ store.Execer, input store.EarningInput) error {
			created = input
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (models.Earning, error) {
			return models.Earning{ID: id, UserID: "user-1", EurAmount: created.EurAmount, Date: created.Date}, nil
		},
	}, stubPeriodStore{}, stubSnapshotStore{}, stubAuditStore{}, stubPeriodService{}, stubStatsService{
		recomputeFn: func(_ context.Context, _, date string) (stats.Week, error) {
			recomputed = date
			return stats.Week{}, nil
		},
	})

	body := []byte(`{"amount":"12.50","currency":"EUR","duration_minutes":45,"payment_method":"Revolut","date":"2024-03-05"}`)
	rr := serve(handler.CreateEarning, authedRequest(t, http.MethodPost, "/earnings", body, "user-1", nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if created.EurAmount != 1250 || created.GbpAmount != 0 || created.UsdAmount != 0 {
		t.Fatalf("unexpected amounts: %+v", created)
	}
	if created.UserID != "user-1" || created.Date != "2024-03-05" {
		t.Fatalf("unexpected input: %+v", created)
	}
	if recomputed != "2024-03-05" {
		t.Fatalf("expected recompute for 2024-03-05, got %q", recomputed)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["amount"] != "12.50" || payload["currency"] != "EUR" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestCreateEarningSucceedsWhenAuditFails(t *testing.T) {
	saved := false
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubEarningStore{
		createFn: func(context.Context, store.Execer, store.EarningInput) error {
			saved = true
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (models.Earning, error) {
			return models.Earning{ID: id, UserID: "user-1", EurAmount: 1250, Date: "2024-03-05"}, nil
		},
	}, stubPeriodStore{}, stubSnapshotStore{}, stubAuditStore{
		logFn: func(context.Context, store.Execer, *string, string, string, string, string, string) error {
			return errors.New("audit insert failed")
		},
	}, stubPeriodService{}, stubStatsService{})

	body := []byte(`{"amount":"12.50","currency":"EUR","duration_minutes":45,"payment_method":"Revolut","date":"2024-03-05"}`)
	rr := serve(handler.CreateEarning, authedRequest(t, http.MethodPost, "/earnings", body, "user-1", nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if !saved {
		t.Fatal("expected the earning to be saved")
	}
}

func TestCreateEarningRejectsUnknownCurrency(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubEarningStore{
		createFn: func(context.Context, store.Execer, store.EarningInput) error {
			t.Fatal("create should not be called")
			return nil
		},
	}, stubPeriodStore{}, stubSnapshotStore{}, stubAuditStore{}, stubPeriodService{}, stubStatsService{})

	body := []byte(`{"amount":"12.50","currency":"CHF","duration_minutes":45,"payment_method":"Cash","date":"2024-03-05"}`)
	rr := serve(handler.CreateEarning, authedRequest(t, http.MethodPost, "/earnings", body, "user-1", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateEarningRejectsNonPositiveAmount(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubEarningStore{}, stubPeriodStore{}, stubSnapshotStore{}, stubAuditStore{}, stubPeriodService{}, stubStatsService{})

	for _, amount := range []string{"0", "-5.00", "abc"} {
		body := []byte(`{"amount":"` + amount + `","currency":"GBP","duration_minutes":30,"payment_method":"Cash","date":"2024-03-05"}`)
		rr := serve(handler.CreateEarning, authedRequest(t, http.MethodPost, "/earnings", body, "user-1", nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("amount %q: expected 400, got %d", amount, rr.Code)
		}
	}
}

func TestListEarnings(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubEarningStore{
		listByUserFn: func(_ context.Context, userID string) ([]models.Earning, error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user: %s", userID)
			}
			return []models.Earning{
				{ID: "e1", UserID: "user-1", GbpAmount: 500, Date: "2024-03-05", PaymentMethod: "Cash"},
			}, nil
		},
	}, stubPeriodStore{}, stubSnapshotStore{}, stubAuditStore{}, stubPeriodService{}, stubStatsService{})

	rr := serve(handler.ListEarnings, authedRequest(t, http.MethodGet, "/earnings", nil, "user-1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 1 || payload[0]["amount"] != "5.00" || payload[0]["currency"] != "GBP" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestGetEarningForbiddenForOtherUser(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{
		getRoleFn: func(context.Context, string) (string, error) {
			return models.RoleUser, nil
		},
	}, stubEarningStore{
		getByIDFn: func(_ context.Context, id string) (models.Earning, error) {
			return models.Earning{ID: id, UserID: "someone-else"}, nil
		},
	}, stubPeriodStore{}, stubSnapshotStore{}, stubAuditStore{}, stubPeriodService{}, stubStatsService{})

	rr := serve(handler.GetEarning, authedRequest(t, http.MethodGet, "/earnings/e1", nil, "user-1", map[string]string{"id": "e1"}))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestGetEarningAdminCanReadAny(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{
		getRoleFn: func(context.Context, string) (string, error) {
			return models.RoleAdmin, nil
		},
	}, stubEarningStore{
		getByIDFn: func(_ context.Context, id string) (models.Earning, error) {
			return models.Earning{ID: id, UserID: "someone-else", UsdAmount: 100}, nil
		},
	}, stubPeriodStore{}, stubSnapshotStore{}, stubAuditStore{}, stubPeriodService{}, stubStatsService{})

	rr := serve(handler.GetEarning, authedRequest(t, http.MethodGet, "/earnings/e1", nil, "admin-1", map[string]string{"id": "e1"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestUpdateEarningRecomputesBothWeeks(t *testing.T) {
	recomputed := []string{}
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubEarningStore{
		getByIDFn: func(_ context.Context, id string) (models.Earning, error) {
			return models.Earning{ID: id, UserID: "user-1", GbpAmount: 500, Date: "2024-03-05"}, nil
		},
		updateFn: func(_ context.Context, _ store.Execer, id string, input store.EarningInput) error {
			if input.Date != "2024-03-12" {
				t.Fatalf("unexpected date: %s", input.Date)
			}
			return nil
		},
	}, stubPeriodStore{}, stubSnapshotStore{}, stubAuditStore{}, stubPeriodService{}, stubStatsService{
		recomputeFn: func(_ context.Context, _, date string) (stats.Week, error) {
			recomputed = append(recomputed, date)
			return stats.Week{}, nil
		},
	})

	body := []byte(`{"amount":"7.00","currency":"GBP","duration_minutes":30,"payment_method":"Cash","date":"2024-03-12"}`)
	rr := serve(handler.UpdateEarning, authedRequest(t, http.MethodPut, "/earnings/e1", body, "user-1", map[string]string{"id": "e1"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(recomputed) != 2 || recomputed[0] != "2024-03-12" || recomputed[1] != "2024-03-05" {
		t.Fatalf("unexpected recomputes: %v", recomputed)
	}
}

func TestDeleteEarning(t *testing.T) {
	deleted := false
	recomputed := ""
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubEarningStore{
		getByIDFn: func(_ context.Context, id string) (models.Earning, error) {
			return models.Earning{ID: id, UserID: "user-1", Date: "2024-03-05"}, nil
		},
		deleteFn: func(_ context.Context, _ store.Execer, id string) error {
			deleted = true
			return nil
		},
	}, stubPeriodStore{}, stubSnapshotStore{}, stubAuditStore{}, stubPeriodService{}, stubStatsService{
		recomputeFn: func(_ context.Context, _, date string) (stats.Week, error) {
			recomputed = date
			return stats.Week{}, nil
		},
	})

	rr := serve(handler.DeleteEarning, authedRequest(t, http.MethodDelete, "/earnings/e1", nil, "user-1", map[string]string{"id": "e1"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !deleted {
		t.Fatal("expected delete")
	}
	if recomputed != "2024-03-05" {
		t.Fatalf("expected recompute for the entry's week, got %q", recomputed)
	}
}
