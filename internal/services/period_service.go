package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"earnings/internal/db"
	"earnings/internal/models"
	"earnings/internal/money"
	"earnings/internal/stats"
	"earnings/internal/store"
	"earnings/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrActivePeriodExists = errors.New("an active period already exists")
	ErrNoActivePeriod     = errors.New("no active period")
)

const periodDays = 7

type PeriodStore interface {
	Create(ctx context.Context, tx store.Execer, input store.PeriodInput) error
	GetActiveByUser(ctx context.Context, userID string) (models.Period, error)
	ListExpiredActive(ctx context.Context, cutoff time.Time) ([]models.Period, error)
	SetCurrentDay(ctx context.Context, tx store.Execer, periodID string, day int) error
	CloseIfActive(ctx context.Context, tx store.Execer, periodID, status string, end time.Time) (bool, error)
}

type EarningStore interface {
	ListByUserAndRange(ctx context.Context, userID, start, end string) ([]models.Earning, error)
}

type SnapshotStore interface {
	Upsert(ctx context.Context, tx store.Execer, input store.SnapshotInput) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID *string, action, entityType, entityID, data, ipAddress string) error
}

type StatsHub interface {
	BroadcastStats(userID string, update websocket.StatsUpdate)
}

// PeriodService owns the 7-day period lifecycle: start, stop, day override,
// expiry sweep, and the snapshot written when a period closes.
type PeriodService struct {
	txRunner  db.TxRunner
	periods   PeriodStore
	earnings  EarningStore
	snapshots SnapshotStore
	audit     AuditStore
	hub       StatsHub
}

func NewPeriodService(txRunner db.TxRunner, periods PeriodStore, earnings EarningStore, snapshots SnapshotStore, audit AuditStore, hub StatsHub) *PeriodService {
	return &PeriodService{
		txRunner:  txRunner,
		periods:   periods,
		earnings:  earnings,
		snapshots: snapshots,
		audit:     audit,
		hub:       hub,
	}
}

// CurrentDay reports which day of the period (1..7) the given instant falls
// in. Clamped to 7; the sweep is expected to close the period before the
// clock overruns, but a late sweep must not produce day 8.
func CurrentDay(start, now time.Time) int {
	if now.Before(start) {
		return 1
	}
	day := int(now.Sub(start).Hours()/24) + 1
	if day > periodDays {
		return periodDays
	}
	return day
}

func (s *PeriodService) Start(ctx context.Context, userID string, now time.Time, ipAddress string) (models.Period, error) {
	if _, err := s.periods.GetActiveByUser(ctx, userID); err == nil {
		return models.Period{}, ErrActivePeriodExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return models.Period{}, err
	}
	period := models.Period{
		ID:         uuid.NewString(),
		UserID:     userID,
		StartDate:  now,
		CurrentDay: 1,
		Status:     models.PeriodActive,
	}
	end := now.AddDate(0, 0, periodDays)
	period.EndDate = &end
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.periods.Create(ctx, tx, store.PeriodInput{
			ID:         period.ID,
			UserID:     userID,
			StartDate:  now,
			EndDate:    end,
			CurrentDay: 1,
			Status:     models.PeriodActive,
		})
	})
	if err != nil {
		// The partial unique index on active periods turns a start/start race
		// into a unique violation for the loser.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.Period{}, ErrActivePeriodExists
		}
		return models.Period{}, err
	}
	data, _ := json.Marshal(map[string]string{"period_id": period.ID})
	s.auditLog(ctx, &userID, "start_period", "period", period.ID, string(data), ipAddress)
	return period, nil
}

// auditLog writes an audit row in its own transaction, after the primary
// operation has committed. Best-effort: a failed write is logged and dropped,
// never surfaced to the caller.
func (s *PeriodService) auditLog(ctx context.Context, actorID *string, action, entityType, entityID, data, ipAddress string) {
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.audit.Log(ctx, tx, actorID, action, entityType, entityID, data, ipAddress)
	})
	if err != nil {
		log.Printf("audit: %s %s/%s: %v", action, entityType, entityID, err)
	}
}

// Stop closes the user's active period and freezes its aggregate. Returns
// false with no error when there is nothing to stop.
func (s *PeriodService) Stop(ctx context.Context, userID string, now time.Time, ipAddress string) (bool, error) {
	period, err := s.periods.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return s.closeAndSnapshot(ctx, period, models.PeriodStopped, now, &userID, ipAddress)
}

func (s *PeriodService) SetDay(ctx context.Context, userID string, day int, ipAddress string) error {
	period, err := s.periods.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoActivePeriod
		}
		return err
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.periods.SetCurrentDay(ctx, tx, period.ID, day)
	})
	if err != nil {
		return err
	}
	data, _ := json.Marshal(map[string]int{"day": day})
	s.auditLog(ctx, &userID, "set_period_day", "period", period.ID, string(data), ipAddress)
	return nil
}

// Current returns the user's active period with its day counter computed from
// the clock, or nil when no period is active.
func (s *PeriodService) Current(ctx context.Context, userID string, now time.Time) (*models.Period, error) {
	period, err := s.periods.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	period.CurrentDay = CurrentDay(period.StartDate, now)
	return &period, nil
}

// AggregatePeriod computes the live aggregate for a period's date range.
func (s *PeriodService) AggregatePeriod(ctx context.Context, period models.Period) (stats.Week, error) {
	weekStart, weekEnd := stats.PeriodBounds(period.StartDate)
	entries, err := s.earnings.ListByUserAndRange(ctx, period.UserID, weekStart, weekEnd)
	if err != nil {
		return stats.Week{}, err
	}
	return stats.Compute(weekStart, weekEnd, entries), nil
}

// Sweep closes every active period that started at least 7 days ago. Periods
// already closed by a concurrent sweep are skipped; a failure on one period
// does not stop the rest. Returns the number of periods closed.
func (s *PeriodService) Sweep(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.AddDate(0, 0, -periodDays)
	expired, err := s.periods.ListExpiredActive(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	closed := 0
	for _, period := range expired {
		done, err := s.closeAndSnapshot(ctx, period, models.PeriodCompleted, now, nil, "SYSTEM_JOB")
		if err != nil {
			log.Printf("sweep: failed to close period %s: %v", period.ID, err)
			continue
		}
		if done {
			closed++
		}
	}
	return closed, nil
}

func (s *PeriodService) closeAndSnapshot(ctx context.Context, period models.Period, status string, now time.Time, actorID *string, ipAddress string) (bool, error) {
	weekStart, weekEnd := stats.PeriodBounds(period.StartDate)
	entries, err := s.earnings.ListByUserAndRange(ctx, period.UserID, weekStart, weekEnd)
	if err != nil {
		return false, err
	}
	week := stats.Compute(weekStart, weekEnd, entries)
	detailsByDay, _ := json.Marshal(week.ByDay)
	totalsByMethod, _ := json.Marshal(week.ByPaymentMethod)

	closed := false
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		closed, err = s.periods.CloseIfActive(ctx, tx, period.ID, status, now)
		if err != nil {
			return err
		}
		if !closed {
			return nil
		}
		return s.snapshots.Upsert(ctx, tx, store.SnapshotInput{
			ID:                    uuid.NewString(),
			UserID:                period.UserID,
			WeekStart:             weekStart,
			WeekEnd:               weekEnd,
			TotalGbp:              week.TotalGbp,
			TotalEur:              week.TotalEur,
			TotalUsd:              week.TotalUsd,
			TotalDurationMinutes:  week.TotalDurationMinutes,
			DaysWorked:            week.DaysWorked,
			EntryCount:            week.EntryCount,
			DetailsByDay:          string(detailsByDay),
			TotalsByPaymentMethod: string(totalsByMethod),
		})
	})
	if err != nil {
		return false, err
	}
	if closed {
		data, _ := json.Marshal(map[string]any{
			"week_start":  weekStart,
			"week_end":    weekEnd,
			"total_gbp":   money.FormatMinor(week.TotalGbp),
			"total_eur":   money.FormatMinor(week.TotalEur),
			"total_usd":   money.FormatMinor(week.TotalUsd),
			"entry_count": week.EntryCount,
			"status":      status,
		})
		s.auditLog(ctx, actorID, "WEEKLY_SNAPSHOT_CREATED", "period", period.ID, string(data), ipAddress)
		s.hub.BroadcastStats(period.UserID, websocket.StatsUpdate{
			WeekStart:       weekStart,
			TotalGbp:        money.FormatMinor(week.TotalGbp),
			TotalEur:        money.FormatMinor(week.TotalEur),
			TotalUsd:        money.FormatMinor(week.TotalUsd),
			DurationMinutes: week.TotalDurationMinutes,
			EntryCount:      week.EntryCount,
			DaysWorked:      week.DaysWorked,
		})
	}
	return closed, nil
}
