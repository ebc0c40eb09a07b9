package handlers

import (
	"context"
	"testing"
	"time"

	"earnings/internal/auth"
	"earnings/internal/config"
	"earnings/internal/db"
	"earnings/internal/models"
	"earnings/internal/stats"
	"earnings/internal/store"
	"earnings/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn            func(ctx context.Context, tx store.Execer, input store.UserInput) error
	getByIdentifierFn   func(ctx context.Context, identifier string) (models.User, error)
	getByIDFn           func(ctx context.Context, userID string) (models.User, error)
	getRoleFn           func(ctx context.Context, userID string) (string, error)
	listFn              func(ctx context.Context) ([]models.User, error)
	touchLastSignedInFn func(ctx context.Context, tx store.Execer, userID string) error
	hasAnyAdminFn       func(ctx context.Context, q store.Getter) (bool, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, input store.UserInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubUserStore) GetByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	if s.getByIdentifierFn == nil {
		return models.User{}, nil
	}
	return s.getByIdentifierFn(ctx, identifier)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) GetRole(ctx context.Context, userID string) (string, error) {
	if s.getRoleFn == nil {
		return models.RoleUser, nil
	}
	return s.getRoleFn(ctx, userID)
}

func (s stubUserStore) List(ctx context.Context) ([]models.User, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubUserStore) TouchLastSignedIn(ctx context.Context, tx store.Execer, userID string) error {
	if s.touchLastSignedInFn == nil {
		return nil
	}
	return s.touchLastSignedInFn(ctx, tx, userID)
}

func (s stubUserStore) HasAnyAdmin(ctx context.Context, q store.Getter) (bool, error) {
	if s.hasAnyAdminFn == nil {
		return true, nil
	}
	return s.hasAnyAdminFn(ctx, q)
}

type stubEarningStore struct {
	createFn     func(ctx context.Context, tx store.Execer, input store.EarningInput) error
	getByIDFn    func(ctx context.Context, id string) (models.Earning, error)
	listByUserFn func(ctx context.Context, userID string) ([]models.Earning, error)
	updateFn     func(ctx context.Context, tx store.Execer, id string, input store.EarningInput) error
	deleteFn     func(ctx context.Context, tx store.Execer, id string) error
}

func (s stubEarningStore) Create(ctx context.Context, tx store.Execer, input store.EarningInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubEarningStore) GetByID(ctx context.Context, id string) (models.Earning, error) {
	if s.getByIDFn == nil {
		return models.Earning{}, nil
	}
	return s.getByIDFn(ctx, id)
}

func (s stubEarningStore) ListByUser(ctx context.Context, userID string) ([]models.Earning, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubEarningStore) Update(ctx context.Context, tx store.Execer, id string, input store.EarningInput) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, id, input)
}

func (s stubEarningStore) Delete(ctx context.Context, tx store.Execer, id string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, id)
}

type stubPeriodStore struct {
	listByUserFn func(ctx context.Context, userID string) ([]models.Period, error)
}

func (s stubPeriodStore) ListByUser(ctx context.Context, userID string) ([]models.Period, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

type stubSnapshotStore struct {
	listByUserFn       func(ctx context.Context, userID string, limit int) ([]models.WeekSnapshot, error)
	getByUserAndWeekFn func(ctx context.Context, userID, weekStart string) (models.WeekSnapshot, error)
}

func (s stubSnapshotStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.WeekSnapshot, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit)
}

func (s stubSnapshotStore) GetByUserAndWeek(ctx context.Context, userID, weekStart string) (models.WeekSnapshot, error) {
	if s.getByUserAndWeekFn == nil {
		return models.WeekSnapshot{}, nil
	}
	return s.getByUserAndWeekFn(ctx, userID, weekStart)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID *string, action, entityType, entityID, data, ipAddress string) error
	listFn func(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID *string, action, entityType, entityID, data, ipAddress string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data, ipAddress)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]models.AuditLog, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubPeriodService struct {
	startFn     func(ctx context.Context, userID string, now time.Time, ipAddress string) (models.Period, error)
	stopFn      func(ctx context.Context, userID string, now time.Time, ipAddress string) (bool, error)
	setDayFn    func(ctx context.Context, userID string, day int, ipAddress string) error
	currentFn   func(ctx context.Context, userID string, now time.Time) (*models.Period, error)
	aggregateFn func(ctx context.Context, period models.Period) (stats.Week, error)
	sweepFn     func(ctx context.Context, now time.Time) (int, error)
}

func (s stubPeriodService) Start(ctx context.Context, userID string, now time.Time, ipAddress string) (models.Period, error) {
	if s.startFn == nil {
		return models.Period{}, nil
	}
	return s.startFn(ctx, userID, now, ipAddress)
}

func (s stubPeriodService) Stop(ctx context.Context, userID string, now time.Time, ipAddress string) (bool, error) {
	if s.stopFn == nil {
		return false, nil
	}
	return s.stopFn(ctx, userID, now, ipAddress)
}

func (s stubPeriodService) SetDay(ctx context.Context, userID string, day int, ipAddress string) error {
	if s.setDayFn == nil {
		return nil
	}
	return s.setDayFn(ctx, userID, day, ipAddress)
}

func (s stubPeriodService) Current(ctx context.Context, userID string, now time.Time) (*models.Period, error) {
	if s.currentFn == nil {
		return nil, nil
	}
	return s.currentFn(ctx, userID, now)
}

func (s stubPeriodService) AggregatePeriod(ctx context.Context, period models.Period) (stats.Week, error) {
	if s.aggregateFn == nil {
		return stats.Week{}, nil
	}
	return s.aggregateFn(ctx, period)
}

func (s stubPeriodService) Sweep(ctx context.Context, now time.Time) (int, error) {
	if s.sweepFn == nil {
		return 0, nil
	}
	return s.sweepFn(ctx, now)
}

type stubStatsService struct {
	liveWeekFn  func(ctx context.Context, userID, date string) (stats.Week, error)
	recomputeFn func(ctx context.Context, userID, date string) (stats.Week, error)
}

func (s stubStatsService) LiveWeek(ctx context.Context, userID, date string) (stats.Week, error) {
	if s.liveWeekFn == nil {
		return stats.Week{}, nil
	}
	return s.liveWeekFn(ctx, userID, date)
}

func (s stubStatsService) RecomputeWeek(ctx context.Context, userID, date string) (stats.Week, error) {
	if s.recomputeFn == nil {
		return stats.Week{}, nil
	}
	return s.recomputeFn(ctx, userID, date)
}

func newTestHandler(txRunner db.TxRunner, users UserStore, earnings EarningStore, periods PeriodStore, snapshots SnapshotStore, audit AuditStore, periodSvc PeriodService, statsSvc StatsService) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(txRunner, cfg, users, earnings, periods, snapshots, audit, periodSvc, statsSvc, websocket.NewHub())
}

func testToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken("secret", userID, "user@example.com", "Test User", models.RoleUser, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func stringPtr(value string) *string {
	return &value
}
