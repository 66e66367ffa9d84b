package eligibility

import "time"

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween is the calendar-month difference (year*12+month) from from to to.
// Days of month are ignored: Jan 31 to Feb 1 is one month.
func MonthsBetween(from, to time.Time) int {
	from, to = from.UTC(), to.UTC()
	return (to.Year()*12 + int(to.Month())) - (from.Year()*12 + int(from.Month()))
}

// DaysBetween is the whole-day difference between the calendar dates of from and to.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// InclusiveDays counts calendar days in [start, end]. Returns 0 when end precedes start.
func InclusiveDays(start, end time.Time) int {
	n := DaysBetween(start, end) + 1
	if n < 0 {
		return 0
	}
	return n
}

// Overlaps reports whether the inclusive date ranges [aStart, aEnd] and
// [bStart, bEnd] share at least one day. Ranges are compared as half-open
// [start, end+1d).
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	aFrom, aTo := DateOf(aStart), DateOf(aEnd).AddDate(0, 0, 1)
	bFrom, bTo := DateOf(bStart), DateOf(bEnd).AddDate(0, 0, 1)
	return aFrom.Before(bTo) && bFrom.Before(aTo)
}
