// Package eval implements the occurrence search for schedules: the next and
// previous occurrence relative to an instant, and instant matching.
//
// Each search runs a bounded candidate loop. The inner per-kind searches
// propose the nearest date the expression itself allows; the outer loop then
// applies the trailing modifiers (except, until, during) and re-seeds the
// search cursor past any rejected candidate. All loops carry fixed iteration
// caps so malformed or exhausted schedules terminate instead of spinning.
//
// Interval alignment uses the Unix epoch as the default anchor, shifted to
// the first epoch Monday for week repeats so week numbering is Monday-based.
// A "starting" clause replaces the anchor. A date is aligned when its whole
// day/week/month/year offset from the anchor is non-negative and divisible
// by the interval.
package eval

import (
	"slices"
	"time"

	"github.com/prasrvenkat/hron/internal/calendar"
	"github.com/prasrvenkat/hron/schedule"
)

// maxIterations caps the outer modifier loop of Next and Previous.
const maxIterations = 1000

// Next returns the first occurrence strictly after now, or false when the
// schedule has none (single date in the past, until bound crossed, or the
// modifiers reject every candidate within the search horizon).
func Next(d *schedule.Data, loc *time.Location, now time.Time) (time.Time, bool) {
	var until time.Time
	hasUntil := d.Until != nil
	if hasUntil {
		until = resolveUntil(d.Until, now)
	}

	// A nearest-weekday target with an explicit direction can resolve into an
	// adjacent month, so the month search applies the during filter itself
	// before resolving; filtering afterwards would oscillate.
	inlineDuring := handlesDuringInternally(d.Expr)

	current := now
	for i := 0; i < maxIterations; i++ {
		var candidate time.Time
		var ok bool
		if inlineDuring {
			candidate, ok = nextExprDuring(d.Expr, loc, d.Anchor, current, d.During)
		} else {
			candidate, ok = nextExpr(d.Expr, loc, d.Anchor, current)
		}
		if !ok {
			return time.Time{}, false
		}

		cDate := candidate.In(loc)

		if hasUntil && calendar.DateOnly(cDate).After(calendar.DateOnly(until)) {
			return time.Time{}, false
		}

		if len(d.During) > 0 && !inlineDuring && !matchesDuring(cDate, d.During) {
			skipTo := nextDuringMonth(cDate, d.During)
			midnight := calendar.AtTime(skipTo, schedule.TimeOfDay{}, loc)
			current = midnight.Add(-time.Second)
			continue
		}

		if isExcepted(cDate, d.Except) {
			nextDay := cDate.AddDate(0, 0, 1)
			midnight := calendar.AtTime(nextDay, schedule.TimeOfDay{}, loc)
			current = midnight.Add(-time.Second)
			continue
		}

		return candidate, true
	}
	return time.Time{}, false
}

// NextN returns up to n occurrences strictly after now, in order.
func NextN(d *schedule.Data, loc *time.Location, now time.Time, n int) []time.Time {
	var results []time.Time
	current := now
	for len(results) < n {
		next, ok := Next(d, loc, current)
		if !ok {
			break
		}
		results = append(results, next)
		current = next.Add(time.Minute)
	}
	return results
}

// Previous returns the most recent occurrence strictly before now, or false
// when none exists. The starting anchor is a hard lower bound; an until
// bound in the past redirects the search to the end of the bounded range.
func Previous(d *schedule.Data, loc *time.Location, now time.Time) (time.Time, bool) {
	current := now
	for i := 0; i < maxIterations; i++ {
		candidate, ok := prevExpr(d.Expr, loc, d.Anchor, current)
		if !ok {
			return time.Time{}, false
		}

		cDate := candidate.In(loc)

		if d.Anchor != "" {
			anchorDate, _ := calendar.ParseISODate(d.Anchor)
			if calendar.DateOnly(cDate).Before(calendar.DateOnly(anchorDate)) {
				return time.Time{}, false
			}
		}

		if d.Until != nil {
			until := resolveUntil(d.Until, now)
			if calendar.DateOnly(cDate).After(calendar.DateOnly(until)) {
				endOfDay := calendar.AtTime(calendar.DateOnly(until), schedule.TimeOfDay{Hour: 23, Minute: 59}, loc)
				current = endOfDay.Add(time.Second)
				continue
			}
		}

		if len(d.During) > 0 && !matchesDuring(cDate, d.During) {
			skipTo := prevDuringMonth(cDate, d.During)
			current = calendar.AtTime(skipTo, schedule.TimeOfDay{Hour: 23, Minute: 59}, loc).Add(time.Second)
			continue
		}

		if isExcepted(cDate, d.Except) {
			prevDay := calendar.DateOnly(cDate).AddDate(0, 0, -1)
			current = calendar.AtTime(prevDay, schedule.TimeOfDay{Hour: 23, Minute: 59}, loc).Add(time.Second)
			continue
		}

		return candidate, true
	}
	return time.Time{}, false
}

func handlesDuringInternally(expr schedule.Expr) bool {
	m, ok := expr.(schedule.MonthRepeat)
	if !ok {
		return false
	}
	nw, ok := m.Target.(schedule.NearestWeekday)
	return ok && nw.Direction != schedule.DirectionNone
}

func nextExpr(expr schedule.Expr, loc *time.Location, anchor string, now time.Time) (time.Time, bool) {
	return nextExprDuring(expr, loc, anchor, now, nil)
}

func nextExprDuring(expr schedule.Expr, loc *time.Location, anchor string, now time.Time, during []schedule.Month) (time.Time, bool) {
	switch e := expr.(type) {
	case schedule.DayRepeat:
		return nextDayRepeat(e, loc, anchor, now)
	case schedule.IntervalRepeat:
		return nextIntervalRepeat(e, loc, now)
	case schedule.WeekRepeat:
		return nextWeekRepeat(e, loc, anchor, now)
	case schedule.MonthRepeat:
		return nextMonthRepeat(e, loc, anchor, now, during)
	case schedule.OrdinalRepeat:
		return nextOrdinalRepeat(e, loc, anchor, now)
	case schedule.SingleDate:
		return nextSingleDate(e, loc, now)
	case schedule.YearRepeat:
		return nextYearRepeat(e, loc, anchor, now)
	}
	return time.Time{}, false
}

func prevExpr(expr schedule.Expr, loc *time.Location, anchor string, now time.Time) (time.Time, bool) {
	switch e := expr.(type) {
	case schedule.DayRepeat:
		return prevDayRepeat(e, loc, anchor, now)
	case schedule.IntervalRepeat:
		return prevIntervalRepeat(e, loc, now)
	case schedule.WeekRepeat:
		return prevWeekRepeat(e, loc, anchor, now)
	case schedule.MonthRepeat:
		return prevMonthRepeat(e, loc, anchor, now)
	case schedule.OrdinalRepeat:
		return prevOrdinalRepeat(e, loc, anchor, now)
	case schedule.SingleDate:
		return prevSingleDate(e, loc, now)
	case schedule.YearRepeat:
		return prevYearRepeat(e, loc, anchor, now)
	}
	return time.Time{}, false
}

// anchorDate resolves the alignment anchor, falling back to def when no
// starting clause is present. Unparseable anchors resolve to the zero time,
// which the alignment math then treats as far in the past.
func anchorDate(anchor string, def time.Time) time.Time {
	if anchor == "" {
		return def
	}
	d, _ := calendar.ParseISODate(anchor)
	return d
}

// resolveUntil turns an until clause into a concrete date. A named until
// without a year resolves to its next occurrence on or after now's date,
// checking this year then next.
func resolveUntil(until schedule.Until, now time.Time) time.Time {
	switch u := until.(type) {
	case schedule.ISOUntil:
		d, _ := calendar.ParseISODate(u.Value)
		return d
	case schedule.NamedUntil:
		today := calendar.DateOnly(now)
		for y := now.Year(); y <= now.Year()+1; y++ {
			d := time.Date(y, time.Month(u.Month.Number()), u.Day, 0, 0, 0, 0, time.UTC)
			if !d.Before(today) {
				return d
			}
		}
		return time.Date(now.Year()+1, time.Month(u.Month.Number()), u.Day, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

func isExcepted(d time.Time, excs []schedule.Exception) bool {
	for _, exc := range excs {
		switch e := exc.(type) {
		case schedule.NamedException:
			if int(d.Month()) == e.Month.Number() && d.Day() == e.Day {
				return true
			}
		case schedule.ISOException:
			ed, err := calendar.ParseISODate(e.Value)
			if err == nil && d.Year() == ed.Year() && d.Month() == ed.Month() && d.Day() == ed.Day() {
				return true
			}
		}
	}
	return false
}

func matchesDuring(d time.Time, during []schedule.Month) bool {
	if len(during) == 0 {
		return true
	}
	for _, m := range during {
		if int(d.Month()) == m.Number() {
			return true
		}
	}
	return false
}

// nextDuringMonth returns the first day of the next allowed month after d's
// month, wrapping to the following year when needed.
func nextDuringMonth(d time.Time, during []schedule.Month) time.Time {
	months := make([]int, len(during))
	for i, m := range during {
		months[i] = m.Number()
	}
	slices.Sort(months)

	for _, m := range months {
		if m > int(d.Month()) {
			return time.Date(d.Year(), time.Month(m), 1, 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Date(d.Year()+1, time.Month(months[0]), 1, 0, 0, 0, 0, time.UTC)
}

// prevDuringMonth returns the last day of the nearest allowed month strictly
// before d's month.
func prevDuringMonth(d time.Time, during []schedule.Month) time.Time {
	allowed := make(map[int]bool, len(during))
	for _, m := range during {
		allowed[m.Number()] = true
	}

	year, month := d.Year(), int(d.Month())-1
	if month < 1 {
		month = 12
		year--
	}
	for i := 0; i < 13; i++ {
		if allowed[month] {
			return calendar.LastDayOfMonth(year, time.Month(month))
		}
		month--
		if month < 1 {
			month = 12
			year--
		}
	}
	return d.AddDate(0, 0, -1)
}

// earliestFutureAt resolves each wall time on date d and returns the earliest
// instant strictly after now.
func earliestFutureAt(d time.Time, times []schedule.TimeOfDay, loc *time.Location, now time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for _, tod := range times {
		candidate := calendar.AtTime(d, tod, loc)
		if candidate.After(now) && (!found || candidate.Before(best)) {
			best = candidate
			found = true
		}
	}
	return best, found
}

// latestPastAt returns the latest instant on date d strictly before now.
func latestPastAt(d time.Time, times []schedule.TimeOfDay, loc *time.Location, now time.Time) (time.Time, bool) {
	sorted := slices.Clone(times)
	slices.SortFunc(sorted, func(a, b schedule.TimeOfDay) int {
		return b.Minutes() - a.Minutes()
	})
	for _, tod := range sorted {
		candidate := calendar.AtTime(d, tod, loc)
		if candidate.Before(now) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// latestAt returns the latest wall time of the list resolved on date d.
func latestAt(d time.Time, times []schedule.TimeOfDay, loc *time.Location) (time.Time, bool) {
	if len(times) == 0 {
		return time.Time{}, false
	}
	latest := times[0]
	for _, tod := range times[1:] {
		if tod.Minutes() > latest.Minutes() {
			latest = tod
		}
	}
	return calendar.AtTime(d, latest, loc), true
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func stepMinutes(interval int, unit schedule.Unit) int {
	if unit == schedule.UnitHours {
		return interval * 60
	}
	return interval
}
