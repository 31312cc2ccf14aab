package models

import "time"

// Symbolic date filter names accepted by ResolveDateRange.
const (
	DateFilterToday  = "today"
	DateFilter3Days  = "3days"
	DateFilterWeek   = "week"
	DateFilterMonth  = "month"
	DateFilterYear   = "year"
	DateFilterCustom = "custom"
)

// ResolveDateRange converts a symbolic date filter into concrete inclusive
// bounds. The clock is explicit: now is passed in and its Location decides the
// calendar; nothing here reads the wall clock.
//
// For "today" the end bound is now itself, not end-of-day; all other ranges
// extend to end-of-day. "custom" (and any unknown name) returns ok=false,
// signaling that caller-supplied bounds apply.
func ResolveDateRange(name string, now time.Time) (start, end time.Time, ok bool) {
	todayStart := StartOfDay(now)
	todayEnd := EndOfDay(now)

	switch name {
	case DateFilterToday:
		return todayStart, now, true
	case DateFilter3Days:
		// 2 days ago + today = 3 calendar days inclusive.
		return todayStart.AddDate(0, 0, -2), todayEnd, true
	case DateFilterWeek:
		// 6 days ago + today = 7 calendar days inclusive.
		return todayStart.AddDate(0, 0, -6), todayEnd, true
	case DateFilterMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, todayEnd, true
	case DateFilterYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return start, todayEnd, true
	}
	return time.Time{}, time.Time{}, false
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
