package daily

import (
	"testing"
	"time"
)

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	loc := time.UTC
	base := time.Date(2026, 5, 10, 23, 59, 0, 0, loc)
	cases := []struct {
		to   time.Time
		want int
	}{
		{time.Date(2026, 5, 10, 0, 1, 0, 0, loc), 0},
		{time.Date(2026, 5, 11, 0, 0, 1, 0, loc), 1},
		{time.Date(2026, 5, 13, 12, 0, 0, 0, loc), 3},
		{time.Date(2026, 5, 9, 12, 0, 0, 0, loc), -1},
	}
	for _, tc := range cases {
		if got := DaysBetween(base, tc.to, loc); got != tc.want {
			t.Fatalf("DaysBetween(%v, %v): expected %d, got %d", base, tc.to, tc.want, got)
		}
	}
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	from := time.Date(2026, 3, 7, 22, 0, 0, 0, loc)
	to := time.Date(2026, 3, 8, 23, 0, 0, 0, loc)
	if got := DaysBetween(from, to, loc); got != 1 {
		t.Fatalf("expected 1 day across DST change, got %d", got)
	}
}

func TestDateKeyUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	ts := time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)
	if got := DateKey(ts, tokyo); got != "2026-01-02" {
		t.Fatalf("expected 2026-01-02, got %s", got)
	}
	if got := DateKey(ts, time.UTC); got != "2026-01-01" {
		t.Fatalf("expected 2026-01-01, got %s", got)
	}
}

func TestWordIndexDeterministic(t *testing.T) {
	d := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	a := WordIndex(d, time.UTC, "salt", 30)
	b := WordIndex(d.Add(10*time.Hour), time.UTC, "salt", 30)
	if a != b {
		t.Fatalf("expected same index within a day, got %d and %d", a, b)
	}
	if a < 0 || a >= 30 {
		t.Fatalf("index out of range: %d", a)
	}
	if got := WordIndex(d, time.UTC, "salt", 0); got != 0 {
		t.Fatalf("expected 0 for empty list, got %d", got)
	}
}
