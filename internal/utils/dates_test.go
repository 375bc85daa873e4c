package utils

import (
	"testing"
	"time"
)

func TestDateOnly_truncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	in := time.Date(2024, 3, 15, 22, 30, 0, 0, loc) // 2024-03-16 03:30 UTC
	got := DateOnly(in)
	want := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DateOnly mismatch: got %v expected %v", got, want)
	}
}

func TestAddMonthClamped(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		if got := AddMonthClamped(c.in, 1); !got.Equal(c.want) {
			t.Fatalf("AddMonthClamped(%v): got %v expected %v", c.in, got, c.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 11, 23, 59, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 10 {
		t.Fatalf("DaysBetween forward: got %d expected 10", got)
	}
	if got := DaysBetween(b, a); got != -10 {
		t.Fatalf("DaysBetween backward: got %d expected -10", got)
	}
	if got := DaysBetween(a, a); got != 0 {
		t.Fatalf("DaysBetween same day: got %d expected 0", got)
	}
}
