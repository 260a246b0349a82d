package schedule

import (
	"fmt"
	"strings"
)

// Canonical renders d as its canonical text form. Parsing the result yields a
// Data equal to d, so the rendering is a fixed point of the round trip.
func Canonical(d *Data) string {
	var sb strings.Builder

	sb.WriteString(d.Expr.String())

	if len(d.Except) > 0 {
		sb.WriteString(" except ")
		sb.WriteString(renderExceptions(d.Except))
	}
	if d.Until != nil {
		sb.WriteString(" until ")
		sb.WriteString(renderUntil(d.Until))
	}
	if d.Anchor != "" {
		sb.WriteString(" starting ")
		sb.WriteString(d.Anchor)
	}
	if len(d.During) > 0 {
		sb.WriteString(" during ")
		sb.WriteString(renderMonthList(d.During))
	}
	if d.Timezone != "" {
		sb.WriteString(" in ")
		sb.WriteString(d.Timezone)
	}

	return sb.String()
}

func (e IntervalRepeat) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "every %d %s", e.Interval, unitWord(e.Interval, e.Unit))
	fmt.Fprintf(&sb, " from %s to %s", e.From, e.To)
	if e.Filter != nil {
		sb.WriteString(" on ")
		sb.WriteString(e.Filter.String())
	}
	return sb.String()
}

func (e DayRepeat) String() string {
	if e.Interval > 1 {
		return fmt.Sprintf("every %d days at %s", e.Interval, renderTimeList(e.Times))
	}
	return fmt.Sprintf("every %s at %s", e.Filter, renderTimeList(e.Times))
}

func (e WeekRepeat) String() string {
	return fmt.Sprintf("every %d weeks on %s at %s",
		e.Interval, renderDayList(e.Days), renderTimeList(e.Times))
}

func (e MonthRepeat) String() string {
	target := renderMonthTarget(e.Target)
	if e.Interval > 1 {
		return fmt.Sprintf("every %d months on the %s at %s", e.Interval, target, renderTimeList(e.Times))
	}
	return fmt.Sprintf("every month on the %s at %s", target, renderTimeList(e.Times))
}

func (e OrdinalRepeat) String() string {
	if e.Interval > 1 {
		return fmt.Sprintf("%s %s of every %d months at %s",
			e.Ordinal, e.Weekday, e.Interval, renderTimeList(e.Times))
	}
	return fmt.Sprintf("%s %s of every month at %s",
		e.Ordinal, e.Weekday, renderTimeList(e.Times))
}

func (e SingleDate) String() string {
	return fmt.Sprintf("on %s at %s", renderDateSpec(e.Date), renderTimeList(e.Times))
}

func (e YearRepeat) String() string {
	target := renderYearTarget(e.Target)
	if e.Interval > 1 {
		return fmt.Sprintf("every %d years on %s at %s", e.Interval, target, renderTimeList(e.Times))
	}
	return fmt.Sprintf("every year on %s at %s", target, renderTimeList(e.Times))
}

func renderMonthTarget(target MonthTarget) string {
	switch t := target.(type) {
	case LastDay:
		return "last day"
	case LastWeekday:
		return "last weekday"
	case MonthDays:
		return renderDaySpecs(t.Specs)
	case NearestWeekday:
		var prefix string
		switch t.Direction {
		case DirectionNext:
			prefix = "next "
		case DirectionPrevious:
			prefix = "previous "
		}
		return fmt.Sprintf("%snearest weekday to %s", prefix, ordinalNumeral(t.Day))
	}
	return ""
}

func renderYearTarget(target YearTarget) string {
	switch t := target.(type) {
	case YearDate:
		return fmt.Sprintf("%s %d", t.Month, t.Day)
	case YearOrdinalWeekday:
		return fmt.Sprintf("the %s %s of %s", t.Ordinal, t.Weekday, t.Month)
	case YearDayOfMonth:
		return fmt.Sprintf("the %s of %s", ordinalNumeral(t.Day), t.Month)
	case YearLastWeekday:
		return fmt.Sprintf("the last weekday of %s", t.Month)
	}
	return ""
}

func renderDateSpec(spec DateSpec) string {
	switch s := spec.(type) {
	case NamedDate:
		return fmt.Sprintf("%s %d", s.Month, s.Day)
	case ISODate:
		return s.Value
	}
	return ""
}

func renderExceptions(excs []Exception) string {
	parts := make([]string, len(excs))
	for i, exc := range excs {
		switch e := exc.(type) {
		case NamedException:
			parts[i] = fmt.Sprintf("%s %d", e.Month, e.Day)
		case ISOException:
			parts[i] = e.Value
		}
	}
	return strings.Join(parts, ", ")
}

func renderUntil(until Until) string {
	switch u := until.(type) {
	case NamedUntil:
		return fmt.Sprintf("%s %d", u.Month, u.Day)
	case ISOUntil:
		return u.Value
	}
	return ""
}

func renderMonthList(months []Month) string {
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}

func renderTimeList(times []TimeOfDay) string {
	parts := make([]string, len(times))
	for i, t := range times {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func renderDayList(days []Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}

func renderDaySpecs(specs []DayOfMonthSpec) string {
	parts := make([]string, len(specs))
	for i, spec := range specs {
		switch s := spec.(type) {
		case SingleDay:
			parts[i] = ordinalNumeral(s.Day)
		case DayRange:
			parts[i] = fmt.Sprintf("%s to %s", ordinalNumeral(s.Start), ordinalNumeral(s.End))
		}
	}
	return strings.Join(parts, ", ")
}

func ordinalNumeral(n int) string {
	return fmt.Sprintf("%d%s", n, ordinalSuffix(n))
}

func ordinalSuffix(n int) string {
	if m := n % 100; m >= 11 && m <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

func unitWord(interval int, unit Unit) string {
	if unit == UnitMinutes {
		if interval == 1 {
			return "minute"
		}
		return "min"
	}
	if interval == 1 {
		return "hour"
	}
	return "hours"
}
