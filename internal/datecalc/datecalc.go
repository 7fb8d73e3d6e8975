// Package datecalc does calendar arithmetic on timezone-naive dates.
package datecalc

import (
	"time"

	"cloud.google.com/go/civil"
)

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LastDayOfMonth returns the last calendar day of the month containing d.
func LastDayOfMonth(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: d.Month, Day: DaysIn(d.Year, d.Month)}
}

// AddMonths moves d by n months keeping the day, clamped to the target month's length.
func AddMonths(d civil.Date, n int) civil.Date {
	first := time.Date(d.Year, d.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return DayOfMonth(first.Year(), first.Month(), d.Day)
}

// DayOfMonth returns the date for day in the given month, clamping days past
// the end of the month to its last day and days below 1 to the first.
func DayOfMonth(year int, month time.Month, day int) civil.Date {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return civil.Date{Year: year, Month: month, Day: day}
}

// DaysBetween returns the number of calendar days from a to b (negative when b is before a).
func DaysBetween(a, b civil.Date) int {
	return b.DaysSince(a)
}

// Midnight returns d at 00:00 in loc.
func Midnight(d civil.Date, loc *time.Location) time.Time {
	return d.In(loc)
}

// Today returns the calendar date of t in its own location.
func Today(t time.Time) civil.Date {
	return civil.DateOf(t)
}
