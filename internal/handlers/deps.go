package handlers

import (
	"context"
	"time"

	"earnings/internal/models"
	"earnings/internal/stats"
	"earnings/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, input store.UserInput) error
	GetByIdentifier(ctx context.Context, identifier string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetRole(ctx context.Context, userID string) (string, error)
	List(ctx context.Context) ([]models.User, error)
	TouchLastSignedIn(ctx context.Context, tx store.Execer, userID string) error
	HasAnyAdmin(ctx context.Context, q store.Getter) (bool, error)
}

type EarningStore interface {
	Create(ctx context.Context, tx store.Execer, input store.EarningInput) error
	GetByID(ctx context.Context, id string) (models.Earning, error)
	ListByUser(ctx context.Context, userID string) ([]models.Earning, error)
	Update(ctx context.Context, tx store.Execer, id string, input store.EarningInput) error
	Delete(ctx context.Context, tx store.Execer, id string) error
}

type PeriodStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Period, error)
}

type SnapshotStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.WeekSnapshot, error)
	GetByUserAndWeek(ctx context.Context, userID, weekStart string) (models.WeekSnapshot, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID *string, action, entityType, entityID, data, ipAddress string) error
	List(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}

type PeriodService interface {
	Start(ctx context.Context, userID string, now time.Time, ipAddress string) (models.Period, error)
	Stop(ctx context.Context, userID string, now time.Time, ipAddress string) (bool, error)
	SetDay(ctx context.Context, userID string, day int, ipAddress string) error
	Current(ctx context.Context, userID string, now time.Time) (*models.Period, error)
	AggregatePeriod(ctx context.Context, period models.Period) (stats.Week, error)
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type StatsService interface {
	LiveWeek(ctx context.Context, userID, date string) (stats.Week, error)
	RecomputeWeek(ctx context.Context, userID, date string) (stats.Week, error)
}
