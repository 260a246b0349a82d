// Package calendar provides date arithmetic shared by the evaluation engine:
// epoch anchors, timezone-aware wall-clock resolution, and day-of-month
// lookups (last day, nth weekday, nearest weekday).
package calendar

import (
	"time"

	"github.com/prasrvenkat/hron/schedule"
)

// Alignment anchors for interval math. EpochMonday is the first Monday on or
// after the Unix epoch, so week numbering is Monday-based.
var (
	Epoch       = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	EpochMonday = time.Date(1970, 1, 5, 0, 0, 0, 0, time.UTC)
)

const isoDateLayout = "2006-01-02"

// LoadZone resolves an IANA timezone name. An empty name means UTC.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// ParseISODate parses a YYYY-MM-DD date string.
func ParseISODate(s string) (time.Time, error) {
	return time.Parse(isoDateLayout, s)
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ISOWeekday returns the ISO 8601 day number of t (Monday=1, Sunday=7).
func ISOWeekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

// AtTime places tod on the calendar date of d in loc.
//
// During a fall-back transition the wall time is ambiguous and the first
// (earlier UTC) occurrence is used, which is what time.Date produces. During
// a spring-forward gap the wall time does not exist; time.Date normalizes it
// backward, so the gap width is added back to land on the first valid instant
// after the transition.
func AtTime(d time.Time, tod schedule.TimeOfDay, loc *time.Location) time.Time {
	t := time.Date(d.Year(), d.Month(), d.Day(), tod.Hour, tod.Minute, 0, 0, loc)

	if t.Hour() != tod.Hour || t.Minute() != tod.Minute {
		gap := tod.Minutes() - (t.Hour()*60 + t.Minute())
		if gap > 0 {
			return t.Add(time.Duration(gap) * time.Minute)
		}
	}
	return t
}

// MatchesFilter reports whether the calendar date of d passes the day filter.
// A nil filter matches every day.
func MatchesFilter(d time.Time, f schedule.DayFilter) bool {
	if f == nil {
		return true
	}
	iso := ISOWeekday(d)
	switch f := f.(type) {
	case schedule.EveryDay:
		return true
	case schedule.WeekdayFilter:
		return iso <= 5
	case schedule.WeekendFilter:
		return iso >= 6
	case schedule.DayListFilter:
		for _, wd := range f.Days {
			if wd.ISO() == iso {
				return true
			}
		}
	}
	return false
}

// LastDayOfMonth returns midnight UTC of the last day of the month.
func LastDayOfMonth(year int, month time.Month) time.Time {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1)
}

// LastWeekdayOfMonth returns the last Monday-Friday day of the month.
func LastWeekdayOfMonth(year int, month time.Month) time.Time {
	d := LastDayOfMonth(year, month)
	for ISOWeekday(d) > 5 {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// NthWeekdayOfMonth returns the nth occurrence of weekday in the month, or
// false when the month has no nth occurrence.
func NthWeekdayOfMonth(year int, month time.Month, weekday schedule.Weekday, n int) (time.Time, bool) {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for ISOWeekday(d) != weekday.ISO() {
		d = d.AddDate(0, 0, 1)
	}
	d = d.AddDate(0, 0, (n-1)*7)
	if d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}

// LastWeekdayInMonth returns the last occurrence of weekday in the month.
func LastWeekdayInMonth(year int, month time.Month, weekday schedule.Weekday) time.Time {
	d := LastDayOfMonth(year, month)
	for ISOWeekday(d) != weekday.ISO() {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// NearestWeekday resolves the Monday-Friday day nearest to targetDay in the
// month. With DirectionNone resolution stays inside the month: a Saturday on
// the 1st shifts to Monday the 3rd, a Sunday on the last day shifts to the
// preceding Friday. An explicit direction always shifts that way and may
// cross a month boundary. Returns false when targetDay does not exist in the
// month.
func NearestWeekday(year int, month time.Month, targetDay int, dir schedule.Direction) (time.Time, bool) {
	lastDay := LastDayOfMonth(year, month).Day()
	if targetDay > lastDay {
		return time.Time{}, false
	}

	date := time.Date(year, month, targetDay, 0, 0, 0, 0, time.UTC)
	switch date.Weekday() {
	case time.Saturday:
		switch dir {
		case schedule.DirectionNext:
			return date.AddDate(0, 0, 2), true
		case schedule.DirectionPrevious:
			return date.AddDate(0, 0, -1), true
		default:
			if targetDay == 1 {
				return date.AddDate(0, 0, 2), true
			}
			return date.AddDate(0, 0, -1), true
		}
	case time.Sunday:
		switch dir {
		case schedule.DirectionNext:
			return date.AddDate(0, 0, 1), true
		case schedule.DirectionPrevious:
			return date.AddDate(0, 0, -2), true
		default:
			if targetDay >= lastDay {
				return date.AddDate(0, 0, -2), true
			}
			return date.AddDate(0, 0, 1), true
		}
	}
	return date, true
}

// DaysBetween returns the whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// WeeksBetween returns the whole weeks from a to b.
func WeeksBetween(a, b time.Time) int {
	return DaysBetween(a, b) / 7
}

// MonthsBetween returns the month difference from a to b, counting only the
// year and month components.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()*12 + int(b.Month())) - (a.Year()*12 + int(a.Month()))
}
