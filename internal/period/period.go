// Package period turns a named calendar period into a half-open time interval
// used to filter expenses by date.
//
// All boundaries are local midnights in the location of the reference time.
// Weeks start on Monday.
package period

import "time"

type Kind string

const (
	Today     Kind = "today"
	Week      Kind = "week"
	LastWeek  Kind = "lastWeek"
	Month     Kind = "month"
	LastMonth Kind = "lastMonth"
	Year      Kind = "year"
	LastYear  Kind = "lastYear"
	Day       Kind = "day"
)

// Params carries the optional explicit calendar coordinates. Month is 1-indexed.
type Params struct {
	Year  *int
	Month *int
	Week  *int
	Day   *int
}

// Interval is [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Resolve computes the interval for kind relative to now. The boolean is false
// when no date filter applies: an empty or unknown kind, or a parameterised
// week/month/day request with some of its coordinates missing.
func Resolve(kind Kind, p Params, now time.Time) (Interval, bool) {
	loc := now.Location()
	y, m, d := now.Date()

	switch kind {
	case Today:
		return days(time.Date(y, m, d, 0, 0, 0, 0, loc), 1), true

	case Week:
		if p.Year != nil && p.Week != nil {
			// Week 1 is anchored at Jan 1 and pulled back to its Monday.
			anchor := time.Date(*p.Year, time.January, 1+(*p.Week-1)*7, 0, 0, 0, 0, loc)
			return days(mondayOf(anchor), 7), true
		}
		// Only the week's own coordinates count; a lone year or week is incomplete.
		if p.Year != nil || p.Week != nil {
			return Interval{}, false
		}
		return days(mondayOf(time.Date(y, m, d, 0, 0, 0, 0, loc)), 7), true

	case LastWeek:
		monday := mondayOf(time.Date(y, m, d, 0, 0, 0, 0, loc))
		return days(monday.AddDate(0, 0, -7), 7), true

	case Month:
		if p.Year != nil && p.Month != nil {
			return months(time.Date(*p.Year, time.Month(*p.Month), 1, 0, 0, 0, 0, loc)), true
		}
		if p.Year != nil || p.Month != nil {
			return Interval{}, false
		}
		return months(time.Date(y, m, 1, 0, 0, 0, 0, loc)), true

	case LastMonth:
		// time.Date normalises month 0 to December of the previous year.
		return months(time.Date(y, m-1, 1, 0, 0, 0, 0, loc)), true

	case Year:
		if p.Year != nil {
			return years(time.Date(*p.Year, time.January, 1, 0, 0, 0, 0, loc)), true
		}
		return years(time.Date(y, time.January, 1, 0, 0, 0, 0, loc)), true

	case LastYear:
		return years(time.Date(y-1, time.January, 1, 0, 0, 0, 0, loc)), true

	case Day:
		if p.Year == nil || p.Month == nil || p.Day == nil {
			return Interval{}, false
		}
		return days(time.Date(*p.Year, time.Month(*p.Month), *p.Day, 0, 0, 0, 0, loc), 1), true
	}

	return Interval{}, false
}

// mondayOf returns the Monday on or before t, keeping t's clock.
func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func days(start time.Time, n int) Interval {
	return Interval{Start: start, End: start.AddDate(0, 0, n)}
}

func months(start time.Time) Interval {
	return Interval{Start: start, End: start.AddDate(0, 1, 0)}
}

func years(start time.Time) Interval {
	return Interval{Start: start, End: start.AddDate(1, 0, 0)}
}
