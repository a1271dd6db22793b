// Package dates holds the calendar-day arithmetic shared by the streak and
// daily reward engines. Days are YYYY-MM-DD strings in UTC; both engines must
// agree on where a day boundary falls, so neither implements its own.
package dates

import "time"

const layout = "2006-01-02"

// Day formats t as a UTC calendar-day string.
func Day(t time.Time) string {
	return t.UTC().Format(layout)
}

// Yesterday is the calendar day immediately before t, in UTC.
func Yesterday(t time.Time) string {
	return Day(t.UTC().AddDate(0, 0, -1))
}

// AddDays shifts a day string by n calendar days. Invalid input yields the
// zero string; callers only pass values produced by Day.
func AddDays(day string, n int) string {
	t, err := time.Parse(layout, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, n).Format(layout)
}

// WeekStart is the Sunday that opens the week containing t, in UTC.
func WeekStart(t time.Time) string {
	u := t.UTC()
	return Day(u.AddDate(0, 0, -int(u.Weekday())))
}
