package utils

import "time"

// WeekStart returns the most recent Sunday 00:00 for t in t's location.
// It keys the weekly noise sequence, so the same wall-clock week always
// maps to the same instant.
func WeekStart(t time.Time) time.Time {
	daysBack := int(t.Weekday())
	day := t.AddDate(0, 0, -daysBack)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// MinuteOfDay returns minutes since midnight for t.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
