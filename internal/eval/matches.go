package eval

import (
	"time"

	"github.com/prasrvenkat/hron/internal/calendar"
	"github.com/prasrvenkat/hron/schedule"
)

// Matches reports whether dt, viewed in loc, is exactly an occurrence of the
// schedule. Minute precision: seconds and below are ignored for plain wall
// times but a time falling in a DST gap matches through its pushed-forward
// resolution.
func Matches(d *schedule.Data, loc *time.Location, dt time.Time) bool {
	zdt := dt.In(loc)
	day := calendar.DateOnly(zdt)

	if !matchesDuring(day, d.During) {
		return false
	}
	if isExcepted(day, d.Except) {
		return false
	}
	if d.Until != nil {
		until := resolveUntil(d.Until, dt)
		if day.After(calendar.DateOnly(until)) {
			return false
		}
	}

	timeMatches := func(times []schedule.TimeOfDay) bool {
		for _, tod := range times {
			if zdt.Hour() == tod.Hour && zdt.Minute() == tod.Minute {
				return true
			}
			// A wall time inside a spring-forward gap resolves forward; the
			// resolved instant still counts as this occurrence.
			if calendar.AtTime(day, tod, loc).Unix() == dt.Unix() {
				return true
			}
		}
		return false
	}

	switch e := d.Expr.(type) {
	case schedule.DayRepeat:
		if !calendar.MatchesFilter(day, e.Filter) || !timeMatches(e.Times) {
			return false
		}
		if e.Interval > 1 {
			anchorDay := calendar.DateOnly(anchorDate(d.Anchor, calendar.Epoch))
			offset := calendar.DaysBetween(anchorDay, day)
			return offset >= 0 && offset%e.Interval == 0
		}
		return true

	case schedule.IntervalRepeat:
		if e.Filter != nil && !calendar.MatchesFilter(day, e.Filter) {
			return false
		}
		cur := zdt.Hour()*60 + zdt.Minute()
		if cur < e.From.Minutes() || cur > e.To.Minutes() {
			return false
		}
		diff := cur - e.From.Minutes()
		return diff%stepMinutes(e.Interval, e.Unit) == 0

	case schedule.WeekRepeat:
		iso := calendar.ISOWeekday(day)
		found := false
		for _, wd := range e.Days {
			if wd.ISO() == iso {
				found = true
				break
			}
		}
		if !found || !timeMatches(e.Times) {
			return false
		}
		anchorDay := calendar.DateOnly(anchorDate(d.Anchor, calendar.EpochMonday))
		weeks := calendar.WeeksBetween(anchorDay, day)
		return weeks >= 0 && weeks%e.Interval == 0

	case schedule.MonthRepeat:
		if !timeMatches(e.Times) {
			return false
		}
		if e.Interval > 1 {
			anchorDay := calendar.DateOnly(anchorDate(d.Anchor, calendar.Epoch))
			offset := calendar.MonthsBetween(anchorDay, day)
			if offset < 0 || offset%e.Interval != 0 {
				return false
			}
		}
		switch t := e.Target.(type) {
		case schedule.MonthDays:
			for _, dayNum := range t.AllDays() {
				if day.Day() == dayNum {
					return true
				}
			}
			return false
		case schedule.LastDay:
			return day.Day() == calendar.LastDayOfMonth(day.Year(), day.Month()).Day()
		case schedule.LastWeekday:
			return day.Day() == calendar.LastWeekdayOfMonth(day.Year(), day.Month()).Day()
		case schedule.NearestWeekday:
			nwd, ok := calendar.NearestWeekday(day.Year(), day.Month(), t.Day, t.Direction)
			return ok && sameDate(day, nwd)
		}
		return false

	case schedule.OrdinalRepeat:
		if !timeMatches(e.Times) {
			return false
		}
		if e.Interval > 1 {
			anchorDay := calendar.DateOnly(anchorDate(d.Anchor, calendar.Epoch))
			offset := calendar.MonthsBetween(anchorDay, day)
			if offset < 0 || offset%e.Interval != 0 {
				return false
			}
		}
		target, ok := ordinalDateIn(e.Ordinal, e.Weekday, day.Year(), day.Month())
		return ok && day.Day() == target.Day()

	case schedule.SingleDate:
		if !timeMatches(e.Times) {
			return false
		}
		switch spec := e.Date.(type) {
		case schedule.ISODate:
			target, err := calendar.ParseISODate(spec.Value)
			return err == nil && sameDate(day, target)
		case schedule.NamedDate:
			return int(day.Month()) == spec.Month.Number() && day.Day() == spec.Day
		}
		return false

	case schedule.YearRepeat:
		if !timeMatches(e.Times) {
			return false
		}
		if e.Interval > 1 {
			anchorYear := anchorDate(d.Anchor, calendar.Epoch).Year()
			offset := day.Year() - anchorYear
			if offset < 0 || offset%e.Interval != 0 {
				return false
			}
		}
		return matchesYearTarget(e.Target, day)
	}
	return false
}

func matchesYearTarget(target schedule.YearTarget, day time.Time) bool {
	switch t := target.(type) {
	case schedule.YearDate:
		return int(day.Month()) == t.Month.Number() && day.Day() == t.Day
	case schedule.YearOrdinalWeekday:
		if int(day.Month()) != t.Month.Number() {
			return false
		}
		target, ok := ordinalDateIn(t.Ordinal, t.Weekday, day.Year(), day.Month())
		return ok && day.Day() == target.Day()
	case schedule.YearDayOfMonth:
		return int(day.Month()) == t.Month.Number() && day.Day() == t.Day
	case schedule.YearLastWeekday:
		if int(day.Month()) != t.Month.Number() {
			return false
		}
		return day.Day() == calendar.LastWeekdayOfMonth(day.Year(), day.Month()).Day()
	}
	return false
}
