package ical

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/prasrvenkat/hron/schedule"
)

var byDayCodes = map[schedule.Weekday]string{
	schedule.Monday:    "MO",
	schedule.Tuesday:   "TU",
	schedule.Wednesday: "WE",
	schedule.Thursday:  "TH",
	schedule.Friday:    "FR",
	schedule.Saturday:  "SA",
	schedule.Sunday:    "SU",
}

// RRule maps a schedule to an iCalendar RRULE value (without the "RRULE:"
// prefix). The time of day is carried by DTSTART, so only single-time
// schedules are expressible. Schedules that RRULE cannot represent return a
// descriptive error; callers fall back to enumerating RDATEs.
func RRule(d *schedule.Data) (string, error) {
	parts, err := exprRule(d.Expr)
	if err != nil {
		return "", err
	}

	if d.Until != nil {
		u, ok := d.Until.(schedule.ISOUntil)
		if !ok {
			return "", fmt.Errorf("rrule: named until dates resolve relative to now and have no fixed UNTIL")
		}
		compact := strings.ReplaceAll(u.Value, "-", "")
		parts = append(parts, "UNTIL="+compact+"T235959Z")
	}

	if len(d.During) > 0 {
		nums := make([]int, len(d.During))
		for i, m := range d.During {
			nums[i] = m.Number()
		}
		sort.Ints(nums)
		parts = append(parts, "BYMONTH="+joinInts(nums))
	}

	if len(d.Except) > 0 {
		// Exceptions become EXDATE properties on the event, but a named
		// exception repeats every year and EXDATE cannot express that.
		for _, exc := range d.Except {
			if _, ok := exc.(schedule.NamedException); ok {
				return "", fmt.Errorf("rrule: yearly repeating exceptions are not expressible as EXDATE")
			}
		}
	}

	return strings.Join(parts, ";"), nil
}

func exprRule(expr schedule.Expr) ([]string, error) {
	switch e := expr.(type) {
	case schedule.IntervalRepeat:
		fullDay := e.From == (schedule.TimeOfDay{}) && e.To == (schedule.TimeOfDay{Hour: 23, Minute: 59})
		if !fullDay || e.Filter != nil {
			return nil, fmt.Errorf("rrule: windowed interval repeats are not expressible")
		}
		freq := "MINUTELY"
		if e.Unit == schedule.UnitHours {
			freq = "HOURLY"
		}
		return withInterval([]string{"FREQ=" + freq}, e.Interval), nil

	case schedule.DayRepeat:
		if len(e.Times) != 1 {
			return nil, errMultipleTimes
		}
		if e.Interval > 1 {
			return withInterval([]string{"FREQ=DAILY"}, e.Interval), nil
		}
		switch f := e.Filter.(type) {
		case schedule.EveryDay, nil:
			return []string{"FREQ=DAILY"}, nil
		case schedule.WeekdayFilter:
			return []string{"FREQ=WEEKLY", "BYDAY=MO,TU,WE,TH,FR"}, nil
		case schedule.WeekendFilter:
			return []string{"FREQ=WEEKLY", "BYDAY=SA,SU"}, nil
		case schedule.DayListFilter:
			return []string{"FREQ=WEEKLY", "BYDAY=" + joinDays(f.Days)}, nil
		}
		return nil, fmt.Errorf("rrule: unsupported day filter")

	case schedule.WeekRepeat:
		if len(e.Times) != 1 {
			return nil, errMultipleTimes
		}
		parts := withInterval([]string{"FREQ=WEEKLY"}, e.Interval)
		return append(parts, "WKST=MO", "BYDAY="+joinDays(e.Days)), nil

	case schedule.MonthRepeat:
		if len(e.Times) != 1 {
			return nil, errMultipleTimes
		}
		parts := withInterval([]string{"FREQ=MONTHLY"}, e.Interval)
		switch t := e.Target.(type) {
		case schedule.MonthDays:
			return append(parts, "BYMONTHDAY="+joinInts(t.AllDays())), nil
		case schedule.LastDay:
			return append(parts, "BYMONTHDAY=-1"), nil
		case schedule.LastWeekday:
			return append(parts, "BYDAY=MO,TU,WE,TH,FR", "BYSETPOS=-1"), nil
		case schedule.NearestWeekday:
			return nil, fmt.Errorf("rrule: nearest-weekday targets are not expressible")
		}

	case schedule.OrdinalRepeat:
		if len(e.Times) != 1 {
			return nil, errMultipleTimes
		}
		parts := withInterval([]string{"FREQ=MONTHLY"}, e.Interval)
		return append(parts, fmt.Sprintf("BYDAY=%d%s", e.Ordinal.N(), byDayCodes[e.Weekday])), nil

	case schedule.SingleDate:
		return nil, fmt.Errorf("rrule: single dates do not repeat")

	case schedule.YearRepeat:
		if len(e.Times) != 1 {
			return nil, errMultipleTimes
		}
		parts := withInterval([]string{"FREQ=YEARLY"}, e.Interval)
		switch t := e.Target.(type) {
		case schedule.YearDate:
			return append(parts, fmt.Sprintf("BYMONTH=%d", t.Month.Number()), fmt.Sprintf("BYMONTHDAY=%d", t.Day)), nil
		case schedule.YearDayOfMonth:
			return append(parts, fmt.Sprintf("BYMONTH=%d", t.Month.Number()), fmt.Sprintf("BYMONTHDAY=%d", t.Day)), nil
		case schedule.YearOrdinalWeekday:
			return append(parts,
				fmt.Sprintf("BYMONTH=%d", t.Month.Number()),
				fmt.Sprintf("BYDAY=%d%s", t.Ordinal.N(), byDayCodes[t.Weekday])), nil
		case schedule.YearLastWeekday:
			return append(parts,
				fmt.Sprintf("BYMONTH=%d", t.Month.Number()),
				"BYDAY=MO,TU,WE,TH,FR", "BYSETPOS=-1"), nil
		}
	}
	return nil, fmt.Errorf("rrule: unsupported expression")
}

var errMultipleTimes = fmt.Errorf("rrule: multiple times of day are not expressible in one rule")

func withInterval(parts []string, interval int) []string {
	if interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(interval))
	}
	return parts
}

func joinDays(days []schedule.Weekday) string {
	codes := make([]string, len(days))
	for i, d := range days {
		codes[i] = byDayCodes[d]
	}
	return strings.Join(codes, ",")
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
