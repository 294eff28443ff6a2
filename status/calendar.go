// Package status derives display state for orders from their fields and a
// caller supplied "now". Nothing here is cached or stored.
package status

import "time"

// civilDate strips the clock of t as observed in loc. The result is midnight
// UTC so that differences are exact multiples of 24h regardless of DST.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayDiff returns the number of calendar days from now to t, both read in
// now's location. Zero means the same day, negative means t is in the past.
func DayDiff(t, now time.Time) int {
	loc := now.Location()
	return int(civilDate(t, loc).Sub(civilDate(now, loc)).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar date in b's location.
func SameDay(a, b time.Time) bool {
	return DayDiff(a, b) == 0
}

// IsTomorrow reports whether t is the calendar day after now.
func IsTomorrow(t, now time.Time) bool {
	return DayDiff(t, now) == 1
}

// IsBeforeToday reports whether t falls on an earlier calendar day than now.
func IsBeforeToday(t, now time.Time) bool {
	return DayDiff(t, now) < 0
}

// StartOfDay returns midnight of t's date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
