package services

import (
	"context"

	"earnings/internal/money"
	"earnings/internal/stats"
	"earnings/internal/websocket"
)

// StatsService is the single owner of derived weekly aggregates: every
// earning mutation funnels through RecomputeWeek instead of each endpoint
// maintaining its own cached totals.
type StatsService struct {
	earnings EarningStore
	hub      StatsHub
}

func NewStatsService(earnings EarningStore, hub StatsHub) *StatsService {
	return &StatsService{earnings: earnings, hub: hub}
}

// LiveWeek computes the aggregate for the calendar week containing the given
// date, straight from the entry rows.
func (s *StatsService) LiveWeek(ctx context.Context, userID, date string) (stats.Week, error) {
	weekStart, weekEnd, err := stats.WeekBounds(date)
	if err != nil {
		return stats.Week{}, err
	}
	entries, err := s.earnings.ListByUserAndRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return stats.Week{}, err
	}
	return stats.Compute(weekStart, weekEnd, entries), nil
}

// RecomputeWeek recomputes the week containing date and pushes the result to
// the user's connected clients. Called after every entry mutation that
// touches that week.
func (s *StatsService) RecomputeWeek(ctx context.Context, userID, date string) (stats.Week, error) {
	week, err := s.LiveWeek(ctx, userID, date)
	if err != nil {
		return stats.Week{}, err
	}
	s.hub.BroadcastStats(userID, websocket.StatsUpdate{
		WeekStart:       week.WeekStart,
		TotalGbp:        money.FormatMinor(week.TotalGbp),
		TotalEur:        money.FormatMinor(week.TotalEur),
		TotalUsd:        money.FormatMinor(week.TotalUsd),
		DurationMinutes: week.TotalDurationMinutes,
		EntryCount:      week.EntryCount,
		DaysWorked:      week.DaysWorked,
	})
	return week, nil
}
