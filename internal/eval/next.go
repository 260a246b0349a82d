package eval

import (
	"slices"
	"time"

	"github.com/prasrvenkat/hron/internal/calendar"
	"github.com/prasrvenkat/hron/schedule"
)

// Per-kind search horizons: wide enough that any schedule with a future
// occurrence finds it, small enough that exhausted schedules return quickly.
const (
	dayScanHorizon      = 8   // one week plus margin
	weekScanHorizon     = 54  // one year of weeks plus margin
	monthScanPerStep    = 24  // two years of months, scaled by interval
	yearScanPerStep     = 8   // scaled by interval
	intervalScanHorizon = 400 // days scanned for sub-day and day-interval repeats
)

func nextDayRepeat(e schedule.DayRepeat, loc *time.Location, anchor string, now time.Time) (time.Time, bool) {
	d := calendar.DateOnly(now.In(loc))

	if e.Interval <= 1 {
		if calendar.MatchesFilter(d, e.Filter) {
			if c, ok := earliestFutureAt(d, e.Times, loc, now); ok {
				return c, true
			}
		}
		for i := 0; i < dayScanHorizon; i++ {
			d = d.AddDate(0, 0, 1)
			if calendar.MatchesFilter(d, e.Filter) {
				if c, ok := earliestFutureAt(d, e.Times, loc, now); ok {
					return c, true
				}
			}
		}
		return time.Time{}, false
	}

	// Day intervals greater than one align to the anchor and ignore filters
	// other than every-day; the parser only produces that combination.
	anchorDay := calendar.DateOnly(anchorDate(anchor, calendar.Epoch))
	offset := calendar.DaysBetween(anchorDay, d)
	remainder := offset % e.Interval
	if remainder < 0 {
		remainder += e.Interval
	}
	aligned := d
	if remainder != 0 {
		aligned = d.AddDate(0, 0, e.Interval-remainder)
	}

	for i := 0; i < intervalScanHorizon; i++ {
		if c, ok := earliestFutureAt(aligned, e.Times, loc, now); ok {
			return c, true
		}
		aligned = aligned.AddDate(0, 0, e.Interval)
	}
	return time.Time{}, false
}

func nextIntervalRepeat(e schedule.IntervalRepeat, loc *time.Location, now time.Time) (time.Time, bool) {
	nowLocal := now.In(loc)
	step := stepMinutes(e.Interval, e.Unit)
	fromMin := e.From.Minutes()
	toMin := e.To.Minutes()

	d := calendar.DateOnly(nowLocal)
	for i := 0; i < intervalScanHorizon; i++ {
		if e.Filter != nil && !calendar.MatchesFilter(d, e.Filter) {
			d = d.AddDate(0, 0, 1)
			continue
		}

		nowMin := -1
		if sameDate(d, nowLocal) {
			nowMin = nowLocal.Hour()*60 + nowLocal.Minute()
		}

		var slot int
		if nowMin < fromMin {
			slot = fromMin
		} else {
			slot = fromMin + ((nowMin-fromMin)/step+1)*step
		}

		if slot <= toMin {
			candidate := calendar.AtTime(d, schedule.TimeOfDay{Hour: slot / 60, Minute: slot % 60}, loc)
			if candidate.After(now) {
				return candidate, true
			}
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

func nextWeekRepeat(e schedule.WeekRepeat, loc *time.Location, anchor string, now time.Time) (time.Time, bool) {
	d := calendar.DateOnly(now.In(loc))
	anchorDay := anchorDate(anchor, calendar.EpochMonday)

	days := slices.Clone(e.Days)
	slices.Sort(days)

	currentMonday := d.AddDate(0, 0, -(calendar.ISOWeekday(d) - 1))
	anchorMonday := anchorDay.AddDate(0, 0, -(calendar.ISOWeekday(anchorDay) - 1))

	for i := 0; i < weekScanHorizon; i++ {
		weeks := calendar.WeeksBetween(calendar.DateOnly(anchorMonday), currentMonday)

		// The anchor's own week is the first aligned week.
		if weeks < 0 {
			currentMonday = anchorMonday
			continue
		}

		if weeks%e.Interval == 0 {
			for _, wd := range days {
				target := currentMonday.AddDate(0, 0, wd.ISO()-1)
				if c, ok := earliestFutureAt(target, e.Times, loc, now); ok {
					return c, true
				}
			}
		}

		skip := e.Interval
		if r := weeks % e.Interval; r != 0 {
			skip = e.Interval - r
		}
		currentMonday = currentMonday.AddDate(0, 0, skip*7)
	}
	return time.Time{}, false
}

// monthTargetDates resolves the target to its candidate dates within one
// month. Days past the month's end are dropped rather than normalized.
func monthTargetDates(target schedule.MonthTarget, year int, month time.Month) []time.Time {
	var dates []time.Time
	switch t := target.(type) {
	case schedule.MonthDays:
		last := calendar.LastDayOfMonth(year, month).Day()
		for _, day := range t.AllDays() {
			if day <= last {
				dates = append(dates, time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
			}
		}
	case schedule.LastDay:
		dates = append(dates, calendar.LastDayOfMonth(year, month))
	case schedule.LastWeekday:
		dates = append(dates, calendar.LastWeekdayOfMonth(year, month))
	case schedule.NearestWeekday:
		if d, ok := calendar.NearestWeekday(year, month, t.Day, t.Direction); ok {
			dates = append(dates, d)
		}
	}
	return dates
}

func nextMonthRepeat(e schedule.MonthRepeat, loc *time.Location, anchor string, now time.Time, during []schedule.Month) (time.Time, bool) {
	nowLocal := now.In(loc)
	year, month := nowLocal.Year(), int(nowLocal.Month())

	anchorDay := calendar.DateOnly(anchorDate(anchor, calendar.Epoch))
	maxIter := monthScanPerStep
	if e.Interval > 1 {
		maxIter = monthScanPerStep * e.Interval
	}

	for i := 0; i < maxIter; i++ {
		if len(during) > 0 && !monthAllowed(month, during) {
			year, month = incMonth(year, month)
			continue
		}

		if e.Interval > 1 {
			cur := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			offset := calendar.MonthsBetween(anchorDay, cur)
			if offset < 0 || offset%e.Interval != 0 {
				year, month = incMonth(year, month)
				continue
			}
		}

		var best time.Time
		found := false
		for _, dc := range monthTargetDates(e.Target, year, time.Month(month)) {
			if c, ok := earliestFutureAt(dc, e.Times, loc, now); ok && (!found || c.Before(best)) {
				best = c
				found = true
			}
		}
		if found {
			return best, true
		}

		year, month = incMonth(year, month)
	}
	return time.Time{}, false
}

// ordinalDateIn resolves the nth (or last) weekday within a month.
func ordinalDateIn(ordinal schedule.Ordinal, weekday schedule.Weekday, year int, month time.Month) (time.Time, bool) {
	if ordinal == schedule.Last {
		return calendar.LastWeekdayInMonth(year, month, weekday), true
	}
	return calendar.NthWeekdayOfMonth(year, month, weekday, ordinal.N())
}

func nextOrdinalRepeat(e schedule.OrdinalRepeat, loc *time.Location, anchor string, now time.Time) (time.Time, bool) {
	nowLocal := now.In(loc)
	year, month := nowLocal.Year(), int(nowLocal.Month())

	anchorDay := calendar.DateOnly(anchorDate(anchor, calendar.Epoch))
	maxIter := monthScanPerStep
	if e.Interval > 1 {
		maxIter = monthScanPerStep * e.Interval
	}

	for i := 0; i < maxIter; i++ {
		if e.Interval > 1 {
			cur := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			offset := calendar.MonthsBetween(anchorDay, cur)
			if offset < 0 || offset%e.Interval != 0 {
				year, month = incMonth(year, month)
				continue
			}
		}

		if target, ok := ordinalDateIn(e.Ordinal, e.Weekday, year, time.Month(month)); ok {
			if c, ok := earliestFutureAt(target, e.Times, loc, now); ok {
				return c, true
			}
		}

		year, month = incMonth(year, month)
	}
	return time.Time{}, false
}

func nextSingleDate(e schedule.SingleDate, loc *time.Location, now time.Time) (time.Time, bool) {
	switch spec := e.Date.(type) {
	case schedule.ISODate:
		d, err := calendar.ParseISODate(spec.Value)
		if err != nil {
			return time.Time{}, false
		}
		return earliestFutureAt(d, e.Times, loc, now)
	case schedule.NamedDate:
		startYear := now.In(loc).Year()
		for y := 0; y < yearScanPerStep; y++ {
			d := time.Date(startYear+y, time.Month(spec.Month.Number()), spec.Day, 0, 0, 0, 0, time.UTC)
			if d.Month() != time.Month(spec.Month.Number()) {
				continue // date does not exist this year, e.g. feb 29
			}
			if c, ok := earliestFutureAt(d, e.Times, loc, now); ok {
				return c, true
			}
		}
	}
	return time.Time{}, false
}

// yearTargetDate resolves a year target within one year. Returns false when
// the date does not exist that year.
func yearTargetDate(target schedule.YearTarget, year int) (time.Time, bool) {
	switch t := target.(type) {
	case schedule.YearDate:
		d := time.Date(year, time.Month(t.Month.Number()), t.Day, 0, 0, 0, 0, time.UTC)
		return d, d.Month() == time.Month(t.Month.Number()) && d.Day() == t.Day
	case schedule.YearOrdinalWeekday:
		return ordinalDateIn(t.Ordinal, t.Weekday, year, time.Month(t.Month.Number()))
	case schedule.YearDayOfMonth:
		d := time.Date(year, time.Month(t.Month.Number()), t.Day, 0, 0, 0, 0, time.UTC)
		return d, d.Month() == time.Month(t.Month.Number()) && d.Day() == t.Day
	case schedule.YearLastWeekday:
		return calendar.LastWeekdayOfMonth(year, time.Month(t.Month.Number())), true
	}
	return time.Time{}, false
}

func nextYearRepeat(e schedule.YearRepeat, loc *time.Location, anchor string, now time.Time) (time.Time, bool) {
	startYear := now.In(loc).Year()
	anchorYear := anchorDate(anchor, calendar.Epoch).Year()

	maxIter := yearScanPerStep
	if e.Interval > 1 {
		maxIter = yearScanPerStep * e.Interval
	}

	for y := 0; y < maxIter; y++ {
		year := startYear + y
		if e.Interval > 1 {
			offset := year - anchorYear
			if offset < 0 || offset%e.Interval != 0 {
				continue
			}
		}
		if target, ok := yearTargetDate(e.Target, year); ok {
			if c, ok := earliestFutureAt(target, e.Times, loc, now); ok {
				return c, true
			}
		}
	}
	return time.Time{}, false
}

func monthAllowed(month int, during []schedule.Month) bool {
	for _, m := range during {
		if m.Number() == month {
			return true
		}
	}
	return false
}

func incMonth(year, month int) (int, int) {
	month++
	if month > 12 {
		return year + 1, 1
	}
	return year, month
}

func decMonth(year, month int) (int, int) {
	month--
	if month < 1 {
		return year - 1, 12
	}
	return year, month
}
