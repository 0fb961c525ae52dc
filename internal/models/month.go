package models

import (
	"errors"
	"time"
)

const monthLayout = "2006-01"

var ErrInvalidMonth = errors.New("month must be formatted as YYYY-MM")

// ParseMonth parses a YYYY-MM string into the first day of that month (UTC).
// Any other shape, including other separators, is rejected.
func ParseMonth(s string) (time.Time, error) {
	if len(s) != len(monthLayout) {
		return time.Time{}, ErrInvalidMonth
	}
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// FormatMonth renders a month as YYYY-MM.
func FormatMonth(t time.Time) string {
	return t.Format(monthLayout)
}

// MonthBounds returns [start, end) for the calendar month containing t.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
