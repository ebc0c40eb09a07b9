package stats

import "time"

const DateLayout = "2006-01-02"

// WeekBounds returns the Monday-start calendar week [start, end) containing
// the given date.
func WeekBounds(date string) (string, string, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", "", err
	}
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 7)
	return start.Format(DateLayout), end.Format(DateLayout), nil
}

// PeriodBounds returns the date range [start, end) covered by a 7-day period
// beginning at the given instant. Day boundaries follow the calendar date of
// the start in UTC.
func PeriodBounds(start time.Time) (string, string) {
	first := start.UTC().Truncate(24 * time.Hour)
	return first.Format(DateLayout), first.AddDate(0, 0, 7).Format(DateLayout)
}
