package eval

import (
	"slices"
	"time"

	"github.com/prasrvenkat/hron/internal/calendar"
	"github.com/prasrvenkat/hron/schedule"
)

func prevDayRepeat(e schedule.DayRepeat, loc *time.Location, anchor string, now time.Time) (time.Time, bool) {
	d := calendar.DateOnly(now.In(loc))

	if e.Interval <= 1 {
		if calendar.MatchesFilter(d, e.Filter) {
			if c, ok := latestPastAt(d, e.Times, loc, now); ok {
				return c, true
			}
		}
		for i := 0; i < dayScanHorizon; i++ {
			d = d.AddDate(0, 0, -1)
			if calendar.MatchesFilter(d, e.Filter) {
				if c, ok := latestAt(d, e.Times, loc); ok {
					return c, true
				}
			}
		}
		return time.Time{}, false
	}

	anchorDay := calendar.DateOnly(anchorDate(anchor, calendar.Epoch))
	offset := calendar.DaysBetween(anchorDay, d)
	remainder := offset % e.Interval
	if remainder < 0 {
		remainder += e.Interval
	}
	aligned := d
	if remainder != 0 {
		aligned = d.AddDate(0, 0, -remainder)
	}

	// Two aligned days suffice: today's aligned day may only have future
	// times, the one before necessarily has its latest time in the past.
	for i := 0; i < 2; i++ {
		if c, ok := latestPastAt(aligned, e.Times, loc, now); ok {
			return c, true
		}
		if latest, ok := latestAt(aligned, e.Times, loc); ok && latest.Before(now) {
			return latest, true
		}
		aligned = aligned.AddDate(0, 0, -e.Interval)
	}
	return time.Time{}, false
}

func prevIntervalRepeat(e schedule.IntervalRepeat, loc *time.Location, now time.Time) (time.Time, bool) {
	nowLocal := now.In(loc)
	d := calendar.DateOnly(nowLocal)

	step := stepMinutes(e.Interval, e.Unit)
	fromMin := e.From.Minutes()
	toMin := e.To.Minutes()

	for dayOffset := 0; dayOffset < dayScanHorizon; dayOffset++ {
		if e.Filter != nil && !calendar.MatchesFilter(d, e.Filter) {
			d = d.AddDate(0, 0, -1)
			continue
		}

		nowMin := toMin + 1
		if dayOffset == 0 {
			nowMin = nowLocal.Hour()*60 + nowLocal.Minute()
		}
		searchUntil := min(nowMin, toMin)

		if searchUntil >= fromMin {
			lastSlot := fromMin + ((searchUntil-fromMin)/step)*step
			if dayOffset == 0 && lastSlot >= nowMin {
				lastSlot -= step
			}
			if lastSlot >= fromMin {
				return calendar.AtTime(d, schedule.TimeOfDay{Hour: lastSlot / 60, Minute: lastSlot % 60}, loc), true
			}
		}
		d = d.AddDate(0, 0, -1)
	}
	return time.Time{}, false
}

func prevWeekRepeat(e schedule.WeekRepeat, loc *time.Location, anchor string, now time.Time) (time.Time, bool) {
	d := calendar.DateOnly(now.In(loc))
	anchorDay := anchorDate(anchor, calendar.EpochMonday)

	days := slices.Clone(e.Days)
	slices.Sort(days)
	slices.Reverse(days)

	currentMonday := d.AddDate(0, 0, -(calendar.ISOWeekday(d) - 1))
	anchorMonday := anchorDay.AddDate(0, 0, -(calendar.ISOWeekday(anchorDay) - 1))

	for i := 0; i < weekScanHorizon; i++ {
		weeks := calendar.WeeksBetween(calendar.DateOnly(anchorMonday), currentMonday)
		if weeks < 0 {
			return time.Time{}, false
		}

		if weeks%e.Interval == 0 {
			for _, wd := range days {
				target := currentMonday.AddDate(0, 0, wd.ISO()-1)
				if target.After(d) {
					continue
				}
				if sameDate(target, d) {
					if c, ok := latestPastAt(target, e.Times, loc, now); ok {
						return c, true
					}
				} else if c, ok := latestAt(target, e.Times, loc); ok {
					return c, true
				}
			}
		}

		skip := e.Interval
		if r := weeks % e.Interval; r != 0 {
			skip = r
		}
		currentMonday = currentMonday.AddDate(0, 0, -skip*7)
	}
	return time.Time{}, false
}

func prevMonthRepeat(e schedule.MonthRepeat, loc *time.Location, anchor string, now time.Time) (time.Time, bool) {
	nowLocal := now.In(loc)
	startDate := calendar.DateOnly(nowLocal)
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
				year, month = decMonth(year, month)
				continue
			}
		}

		dates := monthTargetDates(e.Target, year, time.Month(month))
		slices.SortFunc(dates, func(a, b time.Time) int { return b.Compare(a) })

		for _, dc := range dates {
			if dc.After(startDate) {
				continue
			}
			if sameDate(dc, startDate) {
				if c, ok := latestPastAt(dc, e.Times, loc, now); ok {
					return c, true
				}
			} else if c, ok := latestAt(dc, e.Times, loc); ok {
				return c, true
			}
		}

		year, month = decMonth(year, month)
	}
	return time.Time{}, false
}

func prevOrdinalRepeat(e schedule.OrdinalRepeat, loc *time.Location, anchor string, now time.Time) (time.Time, bool) {
	nowLocal := now.In(loc)
	startDate := calendar.DateOnly(nowLocal)
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
				year, month = decMonth(year, month)
				continue
			}
		}

		if target, ok := ordinalDateIn(e.Ordinal, e.Weekday, year, time.Month(month)); ok && !target.After(startDate) {
			if sameDate(target, startDate) {
				if c, ok := latestPastAt(target, e.Times, loc, now); ok {
					return c, true
				}
			} else if c, ok := latestAt(target, e.Times, loc); ok {
				return c, true
			}
		}

		year, month = decMonth(year, month)
	}
	return time.Time{}, false
}

func prevSingleDate(e schedule.SingleDate, loc *time.Location, now time.Time) (time.Time, bool) {
	nowDate := calendar.DateOnly(now.In(loc))

	switch spec := e.Date.(type) {
	case schedule.ISODate:
		target, err := calendar.ParseISODate(spec.Value)
		if err != nil || target.After(nowDate) {
			return time.Time{}, false
		}
		if sameDate(target, nowDate) {
			return latestPastAt(target, e.Times, loc, now)
		}
		return latestAt(target, e.Times, loc)

	case schedule.NamedDate:
		month := time.Month(spec.Month.Number())
		thisYear := time.Date(nowDate.Year(), month, spec.Day, 0, 0, 0, 0, time.UTC)
		lastYear := time.Date(nowDate.Year()-1, month, spec.Day, 0, 0, 0, 0, time.UTC)
		thisYearValid := thisYear.Month() == month && thisYear.Day() == spec.Day
		lastYearValid := lastYear.Month() == month && lastYear.Day() == spec.Day

		if thisYearValid && thisYear.Before(nowDate) {
			return latestAt(thisYear, e.Times, loc)
		}
		if thisYearValid && sameDate(thisYear, nowDate) {
			if c, ok := latestPastAt(thisYear, e.Times, loc, now); ok {
				return c, true
			}
			if lastYearValid {
				return latestAt(lastYear, e.Times, loc)
			}
			return time.Time{}, false
		}
		if lastYearValid {
			return latestAt(lastYear, e.Times, loc)
		}
	}
	return time.Time{}, false
}

func prevYearRepeat(e schedule.YearRepeat, loc *time.Location, anchor string, now time.Time) (time.Time, bool) {
	nowLocal := now.In(loc)
	startDate := calendar.DateOnly(nowLocal)
	startYear := nowLocal.Year()
	anchorYear := anchorDate(anchor, calendar.Epoch).Year()

	maxIter := yearScanPerStep
	if e.Interval > 1 {
		maxIter = yearScanPerStep * e.Interval
	}

	for y := 0; y < maxIter; y++ {
		year := startYear - y
		if e.Interval > 1 {
			offset := year - anchorYear
			if offset < 0 || offset%e.Interval != 0 {
				continue
			}
		}

		target, ok := yearTargetDate(e.Target, year)
		if !ok || target.After(startDate) {
			continue
		}
		if sameDate(target, startDate) {
			if c, ok := latestPastAt(target, e.Times, loc, now); ok {
				return c, true
			}
		} else if c, ok := latestAt(target, e.Times, loc); ok {
			return c, true
		}
	}
	return time.Time{}, false
}
