package analytics

import (
	"time"

	"gitlab.com/yelinaung/expense-tracker/internal/models"
)

// FormatDate renders t as a calendar date (YYYY-MM-DD) in its own location.
func FormatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

// ParseDate parses a calendar date string at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(models.DateLayout, s)
}

// DayStart truncates t to midnight in its location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart returns the Monday that begins t's week.
func WeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return time.Date(t.Year(), t.Month(), t.Day()-weekday+1, 0, 0, 0, 0, t.Location())
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DayLabel names a date relative to now for list headers:
// "Today", "Yesterday", otherwise "Monday, Jan 2".
// Unparseable dates are returned unchanged.
func DayLabel(date string, now time.Time) string {
	today := FormatDate(now)
	switch date {
	case today:
		return "Today"
	case FormatDate(DayStart(now).AddDate(0, 0, -1)):
		return "Yesterday"
	}

	d, err := ParseDate(date)
	if err != nil {
		return date
	}
	return d.Format("Monday, Jan 2")
}
