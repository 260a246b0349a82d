package cron

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/prasrvenkat/hron/schedule"
)

// Decode parses a 5-field cron expression (or an @ shortcut) into a
// schedule. The month field becomes a during clause; `?` is treated as `*`.
// Nearest-weekday `W` days (other than `LW`) are rejected.
func Decode(expr string) (*schedule.Data, error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "@") {
		return decodeShortcut(expr)
	}

	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, schedule.NewCronError(fmt.Sprintf("expected 5 cron fields, got %d", len(fields)))
	}

	minuteField, hourField, domField, monthField, dowField := fields[0], fields[1], fields[2], fields[3], fields[4]
	if domField == "?" {
		domField = "*"
	}
	if dowField == "?" {
		dowField = "*"
	}

	during, err := decodeMonthField(monthField)
	if err != nil {
		return nil, err
	}

	if d, handled, err := decodeNthWeekday(minuteField, hourField, domField, dowField, during); err != nil || handled {
		return d, err
	}

	if d, handled, err := decodeLastDay(minuteField, hourField, domField, dowField, during); err != nil || handled {
		return d, err
	}

	if strings.HasSuffix(domField, "W") && domField != "LW" {
		return nil, schedule.NewCronError("W (nearest weekday) not yet supported")
	}

	if d, handled, err := decodeInterval(minuteField, hourField, domField, dowField, during); err != nil || handled {
		return d, err
	}

	minute, err := fieldValue(minuteField, "minute", 0, 59)
	if err != nil {
		return nil, err
	}
	hour, err := fieldValue(hourField, "hour", 0, 23)
	if err != nil {
		return nil, err
	}
	t := schedule.TimeOfDay{Hour: hour, Minute: minute}

	// A concrete day-of-month with a wildcard day-of-week is a monthly
	// repeat; otherwise the day-of-week field drives a daily repeat.
	if domField != "*" && dowField == "*" {
		target, err := decodeDOMField(domField)
		if err != nil {
			return nil, err
		}
		b := schedule.NewBuilder(schedule.MonthRepeat{Interval: 1, Target: target, Times: []schedule.TimeOfDay{t}})
		return b.During(during...).Build(), nil
	}

	filter, err := decodeDOWField(dowField)
	if err != nil {
		return nil, err
	}
	b := schedule.NewBuilder(schedule.DayRepeat{Interval: 1, Filter: filter, Times: []schedule.TimeOfDay{t}})
	return b.During(during...).Build(), nil
}

func decodeShortcut(expr string) (*schedule.Data, error) {
	midnight := []schedule.TimeOfDay{{}}
	switch strings.ToLower(expr) {
	case "@yearly", "@annually":
		return schedule.NewBuilder(schedule.YearRepeat{
			Interval: 1,
			Target:   schedule.YearDate{Month: schedule.January, Day: 1},
			Times:    midnight,
		}).Build(), nil
	case "@monthly":
		return schedule.NewBuilder(schedule.MonthRepeat{
			Interval: 1,
			Target:   schedule.MonthDays{Specs: []schedule.DayOfMonthSpec{schedule.SingleDay{Day: 1}}},
			Times:    midnight,
		}).Build(), nil
	case "@weekly":
		return schedule.NewBuilder(schedule.DayRepeat{
			Interval: 1,
			Filter:   schedule.DayListFilter{Days: []schedule.Weekday{schedule.Sunday}},
			Times:    midnight,
		}).Build(), nil
	case "@daily", "@midnight":
		return schedule.NewBuilder(schedule.DayRepeat{
			Interval: 1,
			Filter:   schedule.EveryDay{},
			Times:    midnight,
		}).Build(), nil
	case "@hourly":
		return schedule.NewBuilder(schedule.IntervalRepeat{
			Interval: 1,
			Unit:     schedule.UnitHours,
			From:     schedule.TimeOfDay{},
			To:       schedule.TimeOfDay{Hour: 23, Minute: 59},
		}).Build(), nil
	}
	return nil, schedule.NewCronError(fmt.Sprintf("unknown @ shortcut: %s", expr))
}

func decodeMonthField(field string) ([]schedule.Month, error) {
	if field == "*" {
		return nil, nil
	}

	var months []schedule.Month
	for _, part := range strings.Split(field, ",") {
		switch {
		case strings.Contains(part, "/"):
			rangePart, stepStr, _ := strings.Cut(part, "/")
			var start, end int
			switch {
			case rangePart == "*":
				start, end = 1, 12
			case strings.Contains(rangePart, "-"):
				s, e, _ := strings.Cut(rangePart, "-")
				startMonth, err := monthValue(s)
				if err != nil {
					return nil, err
				}
				endMonth, err := monthValue(e)
				if err != nil {
					return nil, err
				}
				start, end = startMonth.Number(), endMonth.Number()
			default:
				return nil, schedule.NewCronError(fmt.Sprintf("invalid month step expression: %s", part))
			}
			step, err := strconv.Atoi(stepStr)
			if err != nil {
				return nil, schedule.NewCronError(fmt.Sprintf("invalid month step value: %s", stepStr))
			}
			if step == 0 {
				return nil, schedule.NewCronError("step cannot be 0")
			}
			for n := start; n <= end; n += step {
				m, ok := schedule.MonthFromNumber(n)
				if !ok {
					return nil, schedule.NewCronError(fmt.Sprintf("invalid month number: %d", n))
				}
				months = append(months, m)
			}

		case strings.Contains(part, "-"):
			startStr, endStr, _ := strings.Cut(part, "-")
			startMonth, err := monthValue(startStr)
			if err != nil {
				return nil, err
			}
			endMonth, err := monthValue(endStr)
			if err != nil {
				return nil, err
			}
			if startMonth > endMonth {
				return nil, schedule.NewCronError(fmt.Sprintf("invalid month range: %s > %s", startStr, endStr))
			}
			for n := startMonth.Number(); n <= endMonth.Number(); n++ {
				m, _ := schedule.MonthFromNumber(n)
				months = append(months, m)
			}

		default:
			m, err := monthValue(part)
			if err != nil {
				return nil, err
			}
			months = append(months, m)
		}
	}
	return months, nil
}

func monthValue(s string) (schedule.Month, error) {
	if n, err := strconv.Atoi(s); err == nil {
		m, ok := schedule.MonthFromNumber(n)
		if !ok {
			return 0, schedule.NewCronError(fmt.Sprintf("invalid month number: %d", n))
		}
		return m, nil
	}
	if m, ok := schedule.ParseMonth(s); ok {
		return m, nil
	}
	return 0, schedule.NewCronError(fmt.Sprintf("invalid month: %s", s))
}

// decodeNthWeekday handles the DOW#N (nth weekday of month) and nL (last
// weekday-n of month) patterns.
func decodeNthWeekday(minuteField, hourField, domField, dowField string, during []schedule.Month) (*schedule.Data, bool, error) {
	if strings.Contains(dowField, "#") {
		dowStr, nthStr, _ := strings.Cut(dowField, "#")
		weekday, err := dowWeekday(dowStr)
		if err != nil {
			return nil, false, err
		}
		nth, err := strconv.Atoi(nthStr)
		if err != nil {
			return nil, false, schedule.NewCronError(fmt.Sprintf("invalid nth value: %s", nthStr))
		}
		if nth < 1 || nth > 5 {
			return nil, false, schedule.NewCronError(fmt.Sprintf("nth must be 1-5, got %d", nth))
		}

		if domField != "*" {
			return nil, false, schedule.NewCronError("DOM must be * when using # for nth weekday")
		}

		t, err := fieldTime(minuteField, hourField)
		if err != nil {
			return nil, false, err
		}
		d := schedule.NewBuilder(schedule.OrdinalRepeat{
			Interval: 1,
			Ordinal:  schedule.Ordinal(nth),
			Weekday:  weekday,
			Times:    []schedule.TimeOfDay{t},
		}).During(during...).Build()
		return d, true, nil
	}

	if strings.HasSuffix(dowField, "L") && len(dowField) > 1 {
		weekday, err := dowWeekday(strings.TrimSuffix(dowField, "L"))
		if err != nil {
			return nil, false, err
		}
		if domField != "*" {
			return nil, false, schedule.NewCronError("DOM must be * when using nL for last weekday")
		}

		t, err := fieldTime(minuteField, hourField)
		if err != nil {
			return nil, false, err
		}
		d := schedule.NewBuilder(schedule.OrdinalRepeat{
			Interval: 1,
			Ordinal:  schedule.Last,
			Weekday:  weekday,
			Times:    []schedule.TimeOfDay{t},
		}).During(during...).Build()
		return d, true, nil
	}

	return nil, false, nil
}

// decodeLastDay handles L (last day of month) and LW (last weekday of month)
// in the day-of-month field.
func decodeLastDay(minuteField, hourField, domField, dowField string, during []schedule.Month) (*schedule.Data, bool, error) {
	if domField != "L" && domField != "LW" {
		return nil, false, nil
	}
	if dowField != "*" {
		return nil, false, schedule.NewCronError("DOW must be * when using L or LW in DOM")
	}

	t, err := fieldTime(minuteField, hourField)
	if err != nil {
		return nil, false, err
	}

	var target schedule.MonthTarget = schedule.LastDay{}
	if domField == "LW" {
		target = schedule.LastWeekday{}
	}
	d := schedule.NewBuilder(schedule.MonthRepeat{
		Interval: 1,
		Target:   target,
		Times:    []schedule.TimeOfDay{t},
	}).During(during...).Build()
	return d, true, nil
}

// decodeInterval handles step syntax in the minute or hour field.
func decodeInterval(minuteField, hourField, domField, dowField string, during []schedule.Month) (*schedule.Data, bool, error) {
	if strings.Contains(minuteField, "/") {
		rangePart, stepStr, _ := strings.Cut(minuteField, "/")
		interval, err := strconv.Atoi(stepStr)
		if err != nil {
			return nil, false, schedule.NewCronError("invalid minute interval value")
		}
		if interval == 0 {
			return nil, false, schedule.NewCronError("step cannot be 0")
		}

		var fromMinute, toMinute int
		switch {
		case rangePart == "*":
			fromMinute, toMinute = 0, 59
		case strings.Contains(rangePart, "-"):
			s, e, err := intRange(rangePart, "invalid minute range")
			if err != nil {
				return nil, false, err
			}
			if s > e {
				return nil, false, schedule.NewCronError(fmt.Sprintf("range start must be <= end: %d-%d", s, e))
			}
			fromMinute, toMinute = s, e
		default:
			s, err := strconv.Atoi(rangePart)
			if err != nil {
				return nil, false, schedule.NewCronError("invalid minute value")
			}
			fromMinute, toMinute = s, 59
		}

		var fromHour, toHour int
		switch {
		case hourField == "*":
			fromHour, toHour = 0, 23
		case strings.Contains(hourField, "-"):
			s, e, err := intRange(hourField, "invalid hour range")
			if err != nil {
				return nil, false, err
			}
			fromHour, toHour = s, e
		case strings.Contains(hourField, "/"):
			// Steps in both fields fall through to the hour-interval branch.
			return nil, false, nil
		default:
			h, err := strconv.Atoi(hourField)
			if err != nil {
				return nil, false, schedule.NewCronError("invalid hour")
			}
			fromHour, toHour = h, h
		}

		var filter schedule.DayFilter
		if dowField != "*" {
			filter, err = decodeDOWField(dowField)
			if err != nil {
				return nil, false, err
			}
		}

		if domField == "*" {
			// End minute: a true full day keeps :59; a partial day with the
			// whole minute range ends on the hour for a cleaner rendering.
			endMinute := toMinute
			if fromMinute == 0 && toMinute == 59 {
				endMinute = 0
				if toHour == 23 {
					endMinute = 59
				}
			}

			d := schedule.NewBuilder(schedule.IntervalRepeat{
				Interval: interval,
				Unit:     schedule.UnitMinutes,
				From:     schedule.TimeOfDay{Hour: fromHour, Minute: fromMinute},
				To:       schedule.TimeOfDay{Hour: toHour, Minute: endMinute},
				Filter:   filter,
			}).During(during...).Build()
			return d, true, nil
		}
	}

	if strings.Contains(hourField, "/") && (minuteField == "0" || minuteField == "00") {
		rangePart, stepStr, _ := strings.Cut(hourField, "/")
		interval, err := strconv.Atoi(stepStr)
		if err != nil {
			return nil, false, schedule.NewCronError("invalid hour interval value")
		}
		if interval == 0 {
			return nil, false, schedule.NewCronError("step cannot be 0")
		}

		var fromHour, toHour int
		switch {
		case rangePart == "*":
			fromHour, toHour = 0, 23
		case strings.Contains(rangePart, "-"):
			s, e, err := intRange(rangePart, "invalid hour range")
			if err != nil {
				return nil, false, err
			}
			if s > e {
				return nil, false, schedule.NewCronError(fmt.Sprintf("range start must be <= end: %d-%d", s, e))
			}
			fromHour, toHour = s, e
		default:
			h, err := strconv.Atoi(rangePart)
			if err != nil {
				return nil, false, schedule.NewCronError("invalid hour value")
			}
			fromHour, toHour = h, 23
		}

		if domField == "*" && dowField == "*" {
			endMinute := 0
			if fromHour == 0 && toHour == 23 {
				endMinute = 59
			}
			d := schedule.NewBuilder(schedule.IntervalRepeat{
				Interval: interval,
				Unit:     schedule.UnitHours,
				From:     schedule.TimeOfDay{Hour: fromHour},
				To:       schedule.TimeOfDay{Hour: toHour, Minute: endMinute},
			}).During(during...).Build()
			return d, true, nil
		}
	}

	return nil, false, nil
}

func decodeDOMField(field string) (schedule.MonthTarget, error) {
	var specs []schedule.DayOfMonthSpec

	for _, part := range strings.Split(field, ",") {
		switch {
		case strings.Contains(part, "/"):
			rangePart, stepStr, _ := strings.Cut(part, "/")
			var start, end int
			switch {
			case rangePart == "*":
				start, end = 1, 31
			case strings.Contains(rangePart, "-"):
				s, e, err := intRange(rangePart, "invalid DOM range")
				if err != nil {
					return nil, err
				}
				if s > e {
					return nil, schedule.NewCronError(fmt.Sprintf("range start must be <= end: %d-%d", s, e))
				}
				start, end = s, e
			default:
				s, err := strconv.Atoi(rangePart)
				if err != nil {
					return nil, schedule.NewCronError(fmt.Sprintf("invalid DOM value: %s", rangePart))
				}
				start, end = s, 31
			}

			step, err := strconv.Atoi(stepStr)
			if err != nil {
				return nil, schedule.NewCronError(fmt.Sprintf("invalid DOM step: %s", stepStr))
			}
			if step == 0 {
				return nil, schedule.NewCronError("step cannot be 0")
			}
			if err := validDOM(start); err != nil {
				return nil, err
			}
			if err := validDOM(end); err != nil {
				return nil, err
			}
			for d := start; d <= end; d += step {
				specs = append(specs, schedule.SingleDay{Day: d})
			}

		case strings.Contains(part, "-"):
			start, end, err := intRange(part, "invalid DOM range")
			if err != nil {
				return nil, err
			}
			if start > end {
				return nil, schedule.NewCronError(fmt.Sprintf("range start must be <= end: %d-%d", start, end))
			}
			if err := validDOM(start); err != nil {
				return nil, err
			}
			if err := validDOM(end); err != nil {
				return nil, err
			}
			specs = append(specs, schedule.DayRange{Start: start, End: end})

		default:
			day, err := strconv.Atoi(part)
			if err != nil {
				return nil, schedule.NewCronError(fmt.Sprintf("invalid DOM value: %s", part))
			}
			if err := validDOM(day); err != nil {
				return nil, err
			}
			specs = append(specs, schedule.SingleDay{Day: day})
		}
	}

	return schedule.MonthDays{Specs: specs}, nil
}

func validDOM(day int) error {
	if day < 1 || day > 31 {
		return schedule.NewCronError(fmt.Sprintf("DOM must be 1-31, got %d", day))
	}
	return nil
}

// decodeDOWField parses the day-of-week field into a day filter, collapsing
// the Monday-Friday set to the weekday filter and Saturday-Sunday to the
// weekend filter.
func decodeDOWField(field string) (schedule.DayFilter, error) {
	if field == "*" {
		return schedule.EveryDay{}, nil
	}

	var days []schedule.Weekday
	for _, part := range strings.Split(field, ",") {
		switch {
		case strings.Contains(part, "/"):
			rangePart, stepStr, _ := strings.Cut(part, "/")
			var start, end int
			switch {
			case rangePart == "*":
				start, end = 0, 6
			case strings.Contains(rangePart, "-"):
				startStr, endStr, _ := strings.Cut(rangePart, "-")
				s, err := dowValueRaw(startStr)
				if err != nil {
					return nil, err
				}
				e, err := dowValueRaw(endStr)
				if err != nil {
					return nil, err
				}
				if s > e {
					return nil, schedule.NewCronError(fmt.Sprintf("range start must be <= end: %s-%s", startStr, endStr))
				}
				start, end = s, e
			default:
				s, err := dowValueRaw(rangePart)
				if err != nil {
					return nil, err
				}
				start, end = s, 6
			}

			step, err := strconv.Atoi(stepStr)
			if err != nil {
				return nil, schedule.NewCronError(fmt.Sprintf("invalid DOW step: %s", stepStr))
			}
			if step == 0 {
				return nil, schedule.NewCronError("step cannot be 0")
			}
			for d := start; d <= end; d += step {
				days = append(days, cronWeekday(d))
			}

		case strings.Contains(part, "-"):
			startStr, endStr, _ := strings.Cut(part, "-")
			start, err := dowValueRaw(startStr)
			if err != nil {
				return nil, err
			}
			end, err := dowValueRaw(endStr)
			if err != nil {
				return nil, err
			}
			if start > end {
				return nil, schedule.NewCronError(fmt.Sprintf("range start must be <= end: %s-%s", startStr, endStr))
			}
			for d := start; d <= end; d++ {
				days = append(days, cronWeekday(d))
			}

		default:
			weekday, err := dowWeekday(part)
			if err != nil {
				return nil, err
			}
			days = append(days, weekday)
		}
	}

	if len(days) == 5 && isWeekdaySet(days, []schedule.Weekday{
		schedule.Monday, schedule.Tuesday, schedule.Wednesday, schedule.Thursday, schedule.Friday,
	}) {
		return schedule.WeekdayFilter{}, nil
	}
	if len(days) == 2 && isWeekdaySet(days, []schedule.Weekday{schedule.Saturday, schedule.Sunday}) {
		return schedule.WeekendFilter{}, nil
	}

	return schedule.DayListFilter{Days: days}, nil
}

func isWeekdaySet(days, want []schedule.Weekday) bool {
	sorted := make([]schedule.Weekday, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i := range sorted {
		if sorted[i] != want[i] {
			return false
		}
	}
	return true
}

// dowWeekday parses a single day-of-week value, normalizing 7 to Sunday.
func dowWeekday(s string) (schedule.Weekday, error) {
	n, err := dowValueRaw(s)
	if err != nil {
		return 0, err
	}
	return cronWeekday(n), nil
}

// dowValueRaw parses a day-of-week number or 3-letter name without
// normalizing 7, so ranges like 5-7 stay ordered.
func dowValueRaw(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n > 7 {
			return 0, schedule.NewCronError(fmt.Sprintf("DOW must be 0-7, got %d", n))
		}
		return n, nil
	}
	switch strings.ToUpper(s) {
	case "SUN":
		return 0, nil
	case "MON":
		return 1, nil
	case "TUE":
		return 2, nil
	case "WED":
		return 3, nil
	case "THU":
		return 4, nil
	case "FRI":
		return 5, nil
	case "SAT":
		return 6, nil
	}
	return 0, schedule.NewCronError(fmt.Sprintf("invalid DOW: %s", s))
}

// cronWeekday maps a cron day number (0 or 7 = Sunday) to a weekday.
func cronWeekday(n int) schedule.Weekday {
	if n == 0 || n == 7 {
		return schedule.Sunday
	}
	return schedule.Weekday(n)
}

func intRange(s, errMsg string) (int, int, error) {
	startStr, endStr, _ := strings.Cut(s, "-")
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return 0, 0, schedule.NewCronError(errMsg)
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return 0, 0, schedule.NewCronError(errMsg)
	}
	return start, end, nil
}

func fieldValue(field, name string, lo, hi int) (int, error) {
	value, err := strconv.Atoi(field)
	if err != nil {
		return 0, schedule.NewCronError(fmt.Sprintf("invalid %s field: %s", name, field))
	}
	if value < lo || value > hi {
		return 0, schedule.NewCronError(fmt.Sprintf("%s must be %d-%d, got %d", name, lo, hi, value))
	}
	return value, nil
}

func fieldTime(minuteField, hourField string) (schedule.TimeOfDay, error) {
	minute, err := fieldValue(minuteField, "minute", 0, 59)
	if err != nil {
		return schedule.TimeOfDay{}, err
	}
	hour, err := fieldValue(hourField, "hour", 0, 23)
	if err != nil {
		return schedule.TimeOfDay{}, err
	}
	return schedule.TimeOfDay{Hour: hour, Minute: minute}, nil
}
