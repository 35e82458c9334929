// Package dateutil holds the calendar-month arithmetic used by contract
// duration and installment scheduling.
package dateutil

import "time"

// AddMonths moves t forward n calendar months, clamping the day to the last
// day of the target month (Jan 31 + 1 month = Feb 28/29, never Mar 2).
func AddMonths(t time.Time, n int) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	target := firstOfMonth.AddDate(0, n, 0)
	day := t.Day()
	if last := lastDayOfMonth(target); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, t.Location())
}

// MonthsBetween returns the number of whole calendar months from start to end,
// truncating any partial month. Returns 0 when end is before start.
func MonthsBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).
		AddDate(0, 1, -1).Day()
}
