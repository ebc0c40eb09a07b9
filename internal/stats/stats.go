// Package stats computes derived weekly aggregates over earning rows. All
// computation is integer minor-unit arithmetic; given the same rows and range
// the output is identical regardless of row order.
package stats

import (
	"sort"

	"earnings/internal/models"
)

// EntrySummary is the per-entry slice of a day breakdown, as persisted into
// snapshots.
type EntrySummary struct {
	ID              string `json:"id"`
	GbpAmount       int64  `json:"gbp_amount"`
	EurAmount       int64  `json:"eur_amount"`
	UsdAmount       int64  `json:"usd_amount"`
	DurationMinutes int    `json:"duration_minutes"`
	PaymentMethod   string `json:"payment_method"`
}

type DayBreakdown struct {
	TotalGbp   int64          `json:"total_gbp"`
	TotalEur   int64          `json:"total_eur"`
	TotalUsd   int64          `json:"total_usd"`
	EntryCount int            `json:"entry_count"`
	Entries    []EntrySummary `json:"entries"`
}

// MethodTotals keeps per-currency sums separate per payment method; currencies
// are never mixed or converted.
type MethodTotals struct {
	Gbp int64 `json:"gbp"`
	Eur int64 `json:"eur"`
	Usd int64 `json:"usd"`
}

type Week struct {
	WeekStart            string                   `json:"week_start"`
	WeekEnd              string                   `json:"week_end"`
	TotalGbp             int64                    `json:"total_gbp"`
	TotalEur             int64                    `json:"total_eur"`
	TotalUsd             int64                    `json:"total_usd"`
	TotalDurationMinutes int                      `json:"total_duration_minutes"`
	EntryCount           int                      `json:"entry_count"`
	DaysWorked           int                      `json:"days_worked"`
	ByDay                map[string]*DayBreakdown `json:"by_day"`
	ByPaymentMethod      map[string]*MethodTotals `json:"by_payment_method"`
}

// Compute aggregates the entries whose date falls in [weekStart, weekEnd).
// Dates are YYYY-MM-DD strings, so the range check is a lexical comparison.
// Entries outside the range are ignored, which lets callers pass an unfiltered
// set when closing a period.
func Compute(weekStart, weekEnd string, entries []models.Earning) Week {
	week := Week{
		WeekStart:       weekStart,
		WeekEnd:         weekEnd,
		ByDay:           make(map[string]*DayBreakdown),
		ByPaymentMethod: make(map[string]*MethodTotals),
	}
	for _, entry := range entries {
		if entry.Date < weekStart || entry.Date >= weekEnd {
			continue
		}
		week.TotalGbp += entry.GbpAmount
		week.TotalEur += entry.EurAmount
		week.TotalUsd += entry.UsdAmount
		week.TotalDurationMinutes += entry.DurationMinutes
		week.EntryCount++

		day := week.ByDay[entry.Date]
		if day == nil {
			day = &DayBreakdown{}
			week.ByDay[entry.Date] = day
		}
		day.TotalGbp += entry.GbpAmount
		day.TotalEur += entry.EurAmount
		day.TotalUsd += entry.UsdAmount
		day.EntryCount++
		day.Entries = append(day.Entries, EntrySummary{
			ID:              entry.ID,
			GbpAmount:       entry.GbpAmount,
			EurAmount:       entry.EurAmount,
			UsdAmount:       entry.UsdAmount,
			DurationMinutes: entry.DurationMinutes,
			PaymentMethod:   entry.PaymentMethod,
		})

		method := week.ByPaymentMethod[entry.PaymentMethod]
		if method == nil {
			method = &MethodTotals{}
			week.ByPaymentMethod[entry.PaymentMethod] = method
		}
		method.Gbp += entry.GbpAmount
		method.Eur += entry.EurAmount
		method.Usd += entry.UsdAmount
	}
	for _, day := range week.ByDay {
		sortEntries(day.Entries)
	}
	week.DaysWorked = len(week.ByDay)
	return week
}

// sortEntries orders a day's entries by id so the persisted breakdown does not
// depend on query order.
func sortEntries(entries []EntrySummary) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})
}

// Days returns the dates with at least one entry, ascending.
func (w Week) Days() []string {
	dates := make([]string, 0, len(w.ByDay))
	for date := range w.ByDay {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
