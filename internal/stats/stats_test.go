package stats

import (
	"encoding/json"
	"testing"

	"earnings/internal/models"
)

func entry(id, date, method string, gbp, eur, usd int64, minutes int) models.Earning {
	return models.Earning{
		ID:              id,
		UserID:          "user-1",
		GbpAmount:       gbp,
		EurAmount:       eur,
		UsdAmount:       usd,
		DurationMinutes: minutes,
		PaymentMethod:   method,
		Date:            date,
	}
}

func TestComputeTotals(t *testing.T) {
	entries := []models.Earning{
		entry("e1", "2024-03-05", "Cash", 0, 1000, 0, 60),
		entry("e2", "2024-03-05", "Revolut", 500, 0, 0, 30),
		entry("e3", "2024-03-06", "Revolut", 0, 0, 350, 45),
	}
	week := Compute("2024-03-04", "2024-03-11", entries)

	if week.TotalEur != 1000 || week.TotalGbp != 500 || week.TotalUsd != 350 {
		t.Fatalf("unexpected totals: %+v", week)
	}
	if week.TotalDurationMinutes != 135 {
		t.Fatalf("expected 135 minutes, got %d", week.TotalDurationMinutes)
	}
	if week.DaysWorked != 2 {
		t.Fatalf("expected 2 days worked, got %d", week.DaysWorked)
	}
	if week.EntryCount != 3 {
		t.Fatalf("expected 3 entries, got %d", week.EntryCount)
	}
	cash := week.ByPaymentMethod["Cash"]
	if cash == nil || cash.Eur != 1000 || cash.Gbp != 0 {
		t.Fatalf("unexpected Cash bucket: %+v", cash)
	}
	revolut := week.ByPaymentMethod["Revolut"]
	if revolut == nil || revolut.Gbp != 500 || revolut.Usd != 350 || revolut.Eur != 0 {
		t.Fatalf("unexpected Revolut bucket: %+v", revolut)
	}
}

func TestComputeFiltersRange(t *testing.T) {
	entries := []models.Earning{
		entry("e1", "2024-03-03", "Cash", 100, 0, 0, 10), // day before
		entry("e2", "2024-03-04", "Cash", 200, 0, 0, 10), // first day
		entry("e3", "2024-03-10", "Cash", 400, 0, 0, 10), // last day
		entry("e4", "2024-03-11", "Cash", 800, 0, 0, 10), // day after
	}
	week := Compute("2024-03-04", "2024-03-11", entries)
	if week.TotalGbp != 600 {
		t.Fatalf("expected 600, got %d", week.TotalGbp)
	}
	if week.EntryCount != 2 {
		t.Fatalf("expected 2 entries, got %d", week.EntryCount)
	}
}

func TestComputeDeterministic(t *testing.T) {
	entries := []models.Earning{
		entry("e1", "2024-03-05", "Cash", 0, 1000, 0, 60),
		entry("e2", "2024-03-05", "Revolut", 500, 0, 0, 30),
		entry("e3", "2024-03-06", "Wise", 0, 0, 350, 45),
	}
	reversed := []models.Earning{entries[2], entries[1], entries[0]}

	first, err := json.Marshal(Compute("2024-03-04", "2024-03-11", entries))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := json.Marshal(Compute("2024-03-04", "2024-03-11", reversed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("aggregate depends on input order:\n%s\n%s", first, second)
	}
}

func TestComputeDayBreakdown(t *testing.T) {
	entries := []models.Earning{
		entry("e2", "2024-03-05", "Revolut", 500, 0, 0, 30),
		entry("e1", "2024-03-05", "Cash", 0, 1000, 0, 60),
	}
	week := Compute("2024-03-04", "2024-03-11", entries)
	day := week.ByDay["2024-03-05"]
	if day == nil {
		t.Fatal("expected a breakdown for 2024-03-05")
	}
	if day.EntryCount != 2 || day.TotalEur != 1000 || day.TotalGbp != 500 {
		t.Fatalf("unexpected day breakdown: %+v", day)
	}
	if day.Entries[0].ID != "e1" || day.Entries[1].ID != "e2" {
		t.Fatalf("expected entries sorted by id, got %+v", day.Entries)
	}
}

func TestComputeEmpty(t *testing.T) {
	week := Compute("2024-03-04", "2024-03-11", nil)
	if week.TotalGbp != 0 || week.DaysWorked != 0 || week.EntryCount != 0 {
		t.Fatalf("unexpected empty week: %+v", week)
	}
	if len(week.Days()) != 0 {
		t.Fatalf("expected no days, got %v", week.Days())
	}
}

func TestDaysSorted(t *testing.T) {
	entries := []models.Earning{
		entry("e1", "2024-03-09", "Cash", 100, 0, 0, 10),
		entry("e2", "2024-03-05", "Cash", 100, 0, 0, 10),
		entry("e3", "2024-03-07", "Cash", 100, 0, 0, 10),
	}
	week := Compute("2024-03-04", "2024-03-11", entries)
	days := week.Days()
	if len(days) != 3 || days[0] != "2024-03-05" || days[2] != "2024-03-09" {
		t.Fatalf("unexpected day order: %v", days)
	}
}
