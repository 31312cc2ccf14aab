package models

import (
	"testing"
	"time"
)

// NOTE: These tests are intentionally DB-free. Date resolution is pure: the
// same name and clock always produce the same window.

func istLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestResolveDateRange_Today(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 45, 0, istLocation(t))

	start, end, ok := ResolveDateRange("today", now)
	if !ok {
		t.Fatalf("expected today to resolve")
	}
	if !start.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, istLocation(t))) {
		t.Fatalf("expected start-of-day; got %s", start)
	}
	if !end.Equal(now) {
		t.Fatalf("expected end == now (never a future bound); got %s", end)
	}
}

func TestResolveDateRange_WeekCoversSevenDays(t *testing.T) {
	now := time.Date(2026, 3, 15, 23, 59, 0, 0, istLocation(t))

	start, end, ok := ResolveDateRange("week", now)
	if !ok {
		t.Fatalf("expected week to resolve")
	}
	// Inclusive of today: start is six days back, at midnight.
	wantStart := time.Date(2026, 3, 9, 0, 0, 0, 0, istLocation(t))
	if !start.Equal(wantStart) {
		t.Fatalf("expected week start %s; got %s", wantStart, start)
	}
	if end.Before(start) {
		t.Fatalf("end %s before start %s", end, start)
	}
}

func TestResolveDateRange_MonthAndYearStartAtFirst(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, istLocation(t))

	start, _, ok := ResolveDateRange("month", now)
	if !ok || start.Day() != 1 || start.Month() != time.March {
		t.Fatalf("expected month to start at March 1; got ok=%v start=%s", ok, start)
	}

	start, _, ok = ResolveDateRange("year", now)
	if !ok || start.Day() != 1 || start.Month() != time.January {
		t.Fatalf("expected year to start at January 1; got ok=%v start=%s", ok, start)
	}
}

func TestResolveDateRange_Deterministic(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, istLocation(t))

	for _, name := range []string{"today", "3days", "week", "month", "year"} {
		s1, e1, ok1 := ResolveDateRange(name, now)
		s2, e2, ok2 := ResolveDateRange(name, now)
		if ok1 != ok2 || !s1.Equal(s2) || !e1.Equal(e2) {
			t.Fatalf("%s: same clock produced different windows", name)
		}
	}
}

func TestResolveDateRange_UnknownNames(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, istLocation(t))

	for _, name := range []string{"custom", "", "fortnight", "TODAY "} {
		if _, _, ok := ResolveDateRange(name, now); ok {
			t.Fatalf("expected %q to not resolve", name)
		}
	}
}

func TestEndOfDay_StaysOnSameDate(t *testing.T) {
	d := time.Date(2026, 3, 15, 10, 0, 0, 0, istLocation(t))
	end := EndOfDay(d)
	if end.Day() != 15 || end.Hour() != 23 || end.Minute() != 59 {
		t.Fatalf("unexpected end of day: %s", end)
	}
}
