package dateutil

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"plain month", date(2025, time.January, 15), 1, date(2025, time.February, 15)},
		{"jan 31 to feb", date(2025, time.January, 31), 1, date(2025, time.February, 28)},
		{"jan 31 to feb leap", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"jan 31 to march", date(2025, time.January, 31), 2, date(2025, time.March, 31)},
		{"year rollover", date(2025, time.November, 30), 3, date(2026, time.February, 28)},
		{"twelve months", date(2025, time.January, 15), 12, date(2026, time.January, 15)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddMonths(tc.start, tc.n)
			if !got.Equal(tc.want) {
				t.Fatalf("AddMonths(%s, %d) = %s, want %s", tc.start, tc.n, got, tc.want)
			}
		})
	}
}

func TestMonthsBetweenTruncatesPartialMonths(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"exact year", date(2025, time.January, 15), date(2026, time.January, 15), 12},
		{"one day short", date(2025, time.January, 15), date(2026, time.January, 14), 11},
		{"one day over", date(2025, time.January, 15), date(2026, time.January, 16), 12},
		{"six and a half months", date(2025, time.January, 1), date(2025, time.July, 20), 6},
		{"under a month", date(2025, time.January, 15), date(2025, time.February, 10), 0},
		{"end before start", date(2025, time.March, 1), date(2025, time.January, 1), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MonthsBetween(tc.start, tc.end); got != tc.want {
				t.Fatalf("MonthsBetween(%s, %s) = %d, want %d", tc.start, tc.end, got, tc.want)
			}
		})
	}
}
