// Package cron translates between schedules and 5-field cron expressions.
//
// The two directions are deliberately asymmetric. Decode accepts most of the
// extended cron vocabulary (@shortcuts, steps, ranges, names, #, L, LW),
// while Encode emits only the subset whose semantics survive the round trip:
// for any schedule S that Encode accepts, Decode(Encode(S)) yields a schedule
// that encodes to the same string.
package cron

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/prasrvenkat/hron/schedule"
)

// Encode renders d as a 5-field cron expression, or returns a descriptive
// error when the schedule uses features cron cannot express.
func Encode(d *schedule.Data) (string, error) {
	if len(d.Except) > 0 {
		return "", schedule.NewCronError("not expressible as cron (except clauses not supported)")
	}
	if d.Until != nil {
		return "", schedule.NewCronError("not expressible as cron (until clauses not supported)")
	}
	if len(d.During) > 0 {
		return "", schedule.NewCronError("not expressible as cron (during clauses not supported)")
	}

	switch e := d.Expr.(type) {
	case schedule.DayRepeat:
		if e.Interval > 1 {
			return "", schedule.NewCronError("not expressible as cron (multi-day intervals not supported)")
		}
		if len(e.Times) != 1 {
			return "", schedule.NewCronError("not expressible as cron (multiple times not supported)")
		}
		t := e.Times[0]
		return fmt.Sprintf("%d %d * * %s", t.Minute, t.Hour, filterDOWField(e.Filter)), nil

	case schedule.IntervalRepeat:
		return encodeInterval(e)

	case schedule.WeekRepeat:
		return "", schedule.NewCronError("not expressible as cron (multi-week intervals not supported)")

	case schedule.MonthRepeat:
		if e.Interval > 1 {
			return "", schedule.NewCronError("not expressible as cron (multi-month intervals not supported)")
		}
		if len(e.Times) != 1 {
			return "", schedule.NewCronError("not expressible as cron (multiple times not supported)")
		}
		t := e.Times[0]
		switch target := e.Target.(type) {
		case schedule.MonthDays:
			return fmt.Sprintf("%d %d %s * *", t.Minute, t.Hour, intListField(target.AllDays())), nil
		case schedule.LastDay:
			return "", schedule.NewCronError("not expressible as cron (last day of month not supported)")
		case schedule.LastWeekday:
			return "", schedule.NewCronError("not expressible as cron (last weekday of month not supported)")
		case schedule.NearestWeekday:
			return "", schedule.NewCronError("not expressible as cron (nearest weekday not supported)")
		}

	case schedule.OrdinalRepeat:
		return "", schedule.NewCronError("not expressible as cron (ordinal weekday of month not supported)")

	case schedule.SingleDate:
		return "", schedule.NewCronError("not expressible as cron (single dates are not repeating)")

	case schedule.YearRepeat:
		return "", schedule.NewCronError("not expressible as cron (yearly schedules not supported in 5-field cron)")
	}

	return "", schedule.NewCronError("unknown expression type")
}

// encodeInterval handles minute and hour step repeats. Besides the full-day
// window, whole-hour windows (from H:00 to H:00) encode as an hour range;
// anything finer has no stable cron image and is rejected.
func encodeInterval(e schedule.IntervalRepeat) (string, error) {
	if e.Filter != nil {
		return "", schedule.NewCronError("not expressible as cron (interval with day filter not supported)")
	}

	fullDay := e.From == (schedule.TimeOfDay{}) && e.To == (schedule.TimeOfDay{Hour: 23, Minute: 59})
	wholeHours := e.From.Minute == 0 && e.To.Minute == 0 && !(e.From.Hour == 0 && e.To.Hour == 23)

	if e.Unit == schedule.UnitMinutes {
		if 60%e.Interval != 0 {
			return "", schedule.NewCronError(fmt.Sprintf("not expressible as cron (*/%d breaks at hour boundaries)", e.Interval))
		}
		if fullDay {
			return fmt.Sprintf("*/%d * * * *", e.Interval), nil
		}
		if wholeHours {
			return fmt.Sprintf("*/%d %d-%d * * *", e.Interval, e.From.Hour, e.To.Hour), nil
		}
		return "", schedule.NewCronError("not expressible as cron (interval window must align to whole hours)")
	}

	if fullDay {
		return fmt.Sprintf("0 */%d * * *", e.Interval), nil
	}
	if wholeHours {
		return fmt.Sprintf("0 %d-%d/%d * * *", e.From.Hour, e.To.Hour, e.Interval), nil
	}
	return "", schedule.NewCronError("not expressible as cron (interval window must align to whole hours)")
}

func filterDOWField(f schedule.DayFilter) string {
	switch f := f.(type) {
	case schedule.WeekdayFilter:
		return "1-5"
	case schedule.WeekendFilter:
		return "0,6"
	case schedule.DayListFilter:
		nums := make([]int, len(f.Days))
		for i, d := range f.Days {
			nums[i] = d.CronDOW()
		}
		sort.Ints(nums)
		return intListField(nums)
	}
	return "*"
}

func intListField(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
