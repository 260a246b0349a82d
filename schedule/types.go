package schedule

import (
	"fmt"
	"strings"
)

// Weekday is a day of the week, numbered per ISO 8601 (Monday=1 .. Sunday=7).
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// ISO returns the ISO 8601 day number (Monday=1, Sunday=7).
func (w Weekday) ISO() int { return int(w) }

// CronDOW returns the cron day-of-week number (Sunday=0 .. Saturday=6).
func (w Weekday) CronDOW() int {
	if w == Sunday {
		return 0
	}
	return int(w)
}

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w-1]
}

// ParseWeekday parses a weekday name or 3-letter abbreviation, case-insensitively.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(s)
	for i, name := range weekdayNames {
		if s == name || s == name[:3] {
			return Weekday(i + 1), true
		}
	}
	return 0, false
}

// WeekdayFromISO returns the Weekday for an ISO 8601 day number.
func WeekdayFromISO(n int) (Weekday, bool) {
	if n < 1 || n > 7 {
		return 0, false
	}
	return Weekday(n), true
}

// Month is a month of the year (January=1 .. December=12).
type Month int

const (
	January Month = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

// Number returns the month number (January=1, December=12).
func (m Month) Number() int { return int(m) }

var monthNames = [...]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// String returns the canonical 3-letter abbreviation ("jan" .. "dec").
func (m Month) String() string {
	if m < January || m > December {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthNames[m-1][:3]
}

// ParseMonth parses a month name or 3-letter abbreviation, case-insensitively.
func ParseMonth(s string) (Month, bool) {
	s = strings.ToLower(s)
	for i, name := range monthNames {
		if s == name || s == name[:3] {
			return Month(i + 1), true
		}
	}
	return 0, false
}

// MonthFromNumber returns the Month for a 1-12 number.
func MonthFromNumber(n int) (Month, bool) {
	if n < 1 || n > 12 {
		return 0, false
	}
	return Month(n), true
}

// Unit is the step unit of a sub-day interval repeat.
type Unit int

const (
	UnitMinutes Unit = iota
	UnitHours
)

func (u Unit) String() string {
	if u == UnitMinutes {
		return "min"
	}
	return "hours"
}

// Ordinal is an ordinal position within a month (first .. fifth, or last).
type Ordinal int

const (
	First Ordinal = iota + 1
	Second
	Third
	Fourth
	Fifth
	Last Ordinal = -1
)

// N returns the position as a number (1-5), or -1 for Last.
func (o Ordinal) N() int { return int(o) }

func (o Ordinal) String() string {
	switch o {
	case First:
		return "first"
	case Second:
		return "second"
	case Third:
		return "third"
	case Fourth:
		return "fourth"
	case Fifth:
		return "fifth"
	case Last:
		return "last"
	}
	return fmt.Sprintf("Ordinal(%d)", int(o))
}

// ParseOrdinal parses an ordinal word ("first" .. "fifth", "last"), case-insensitively.
func ParseOrdinal(s string) (Ordinal, bool) {
	switch strings.ToLower(s) {
	case "first":
		return First, true
	case "second":
		return Second, true
	case "third":
		return Third, true
	case "fourth":
		return Fourth, true
	case "fifth":
		return Fifth, true
	case "last":
		return Last, true
	}
	return 0, false
}

// TimeOfDay is a wall-clock time with minute precision. Ordered by (Hour, Minute).
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the time as whole minutes from midnight.
func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

// Before reports whether t is earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool { return t.Minutes() < other.Minutes() }

// DayFilter restricts which calendar days qualify within a day-based or
// interval-based repeat. The variant set is closed: EveryDay, WeekdayFilter,
// WeekendFilter, and DayListFilter.
type DayFilter interface {
	isDayFilter()
	fmt.Stringer
}

// EveryDay matches every calendar day.
type EveryDay struct{}

// WeekdayFilter matches Monday through Friday.
type WeekdayFilter struct{}

// WeekendFilter matches Saturday and Sunday.
type WeekendFilter struct{}

// DayListFilter matches an explicit set of weekdays.
type DayListFilter struct {
	Days []Weekday
}

func (EveryDay) isDayFilter()      {}
func (WeekdayFilter) isDayFilter() {}
func (WeekendFilter) isDayFilter() {}
func (DayListFilter) isDayFilter() {}

func (EveryDay) String() string      { return "day" }
func (WeekdayFilter) String() string { return "weekday" }
func (WeekendFilter) String() string { return "weekend" }
func (f DayListFilter) String() string {
	parts := make([]string, len(f.Days))
	for i, d := range f.Days {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}

// DayOfMonthSpec is one element of a month repeat's day-of-month target:
// either a single day or an inclusive range.
type DayOfMonthSpec interface {
	isDayOfMonthSpec()
	// Days expands the spec to its individual day numbers.
	Days() []int
}

// SingleDay selects one day of the month (1-31).
type SingleDay struct {
	Day int
}

// DayRange selects an inclusive range of days of the month.
type DayRange struct {
	Start int
	End   int
}

func (SingleDay) isDayOfMonthSpec() {}
func (DayRange) isDayOfMonthSpec()  {}

func (s SingleDay) Days() []int { return []int{s.Day} }

func (r DayRange) Days() []int {
	var days []int
	for d := r.Start; d <= r.End; d++ {
		days = append(days, d)
	}
	return days
}

// Direction controls how a nearest-weekday target resolves a weekend day.
type Direction int

const (
	// DirectionNone is standard cron "W" behavior: never crosses a month boundary.
	DirectionNone Direction = iota
	// DirectionNext always resolves forward, possibly into the next month.
	DirectionNext
	// DirectionPrevious always resolves backward, possibly into the previous month.
	DirectionPrevious
)

// MonthTarget selects which day(s) within a month a month repeat fires on.
// The variant set is closed: MonthDays, LastDay, LastWeekday, NearestWeekday.
type MonthTarget interface {
	isMonthTarget()
}

// MonthDays targets an explicit list of day-of-month specs.
type MonthDays struct {
	Specs []DayOfMonthSpec
}

// LastDay targets the last calendar day of the month.
type LastDay struct{}

// LastWeekday targets the last Monday-Friday day of the month.
type LastWeekday struct{}

// NearestWeekday targets the Monday-Friday day nearest to Day. With
// DirectionNone resolution never leaves the month; with an explicit direction
// it may cross into the adjacent month.
type NearestWeekday struct {
	Day       int
	Direction Direction
}

func (MonthDays) isMonthTarget()      {}
func (LastDay) isMonthTarget()        {}
func (LastWeekday) isMonthTarget()    {}
func (NearestWeekday) isMonthTarget() {}

// AllDays expands a MonthDays target to its individual day numbers.
func (t MonthDays) AllDays() []int {
	var days []int
	for _, spec := range t.Specs {
		days = append(days, spec.Days()...)
	}
	return days
}

// YearTarget selects which day within a year a year repeat fires on.
// The variant set is closed: YearDate, YearOrdinalWeekday, YearDayOfMonth,
// YearLastWeekday.
type YearTarget interface {
	isYearTarget()
}

// YearDate targets a fixed month and day ("jan 1").
type YearDate struct {
	Month Month
	Day   int
}

// YearOrdinalWeekday targets the nth (or last) weekday of a month
// ("the first monday of sep").
type YearOrdinalWeekday struct {
	Ordinal Ordinal
	Weekday Weekday
	Month   Month
}

// YearDayOfMonth targets an ordinal day of a month ("the 15th of apr").
type YearDayOfMonth struct {
	Day   int
	Month Month
}

// YearLastWeekday targets the last Monday-Friday day of a month
// ("the last weekday of dec").
type YearLastWeekday struct {
	Month Month
}

func (YearDate) isYearTarget()           {}
func (YearOrdinalWeekday) isYearTarget() {}
func (YearDayOfMonth) isYearTarget()     {}
func (YearLastWeekday) isYearTarget()    {}

// DateSpec is the date of a single-date expression: a named month/day without
// a year, or a full ISO date.
type DateSpec interface {
	isDateSpec()
}

// NamedDate is a month/day date without a year ("feb 14").
type NamedDate struct {
	Month Month
	Day   int
}

// ISODate is a YYYY-MM-DD date literal, kept verbatim as written.
type ISODate struct {
	Value string
}

func (NamedDate) isDateSpec() {}
func (ISODate) isDateSpec()   {}

// Exception is one date to skip. Same shapes as DateSpec, kept as its own
// family because exceptions occur in a different grammar position and render
// differently in diagnostics.
type Exception interface {
	isException()
}

// NamedException skips a month/day in every year.
type NamedException struct {
	Month Month
	Day   int
}

// ISOException skips one specific date.
type ISOException struct {
	Value string
}

func (NamedException) isException() {}
func (ISOException) isException()   {}

// Until is the inclusive upper bound of a schedule.
type Until interface {
	isUntil()
}

// NamedUntil bounds at the next occurrence of a month/day.
type NamedUntil struct {
	Month Month
	Day   int
}

// ISOUntil bounds at a specific date.
type ISOUntil struct {
	Value string
}

func (NamedUntil) isUntil() {}
func (ISOUntil) isUntil()   {}

// Expr is a schedule expression, one of exactly seven repeat kinds:
// IntervalRepeat, DayRepeat, WeekRepeat, MonthRepeat, OrdinalRepeat,
// SingleDate, and YearRepeat. Consumers perform exhaustive case analysis
// over this closed set.
type Expr interface {
	isExpr()
	fmt.Stringer
}

// IntervalRepeat steps through a daily window in fixed minute or hour
// increments, optionally restricted to certain days.
type IntervalRepeat struct {
	Interval int
	Unit     Unit
	From     TimeOfDay
	To       TimeOfDay
	Filter   DayFilter // nil when unrestricted
}

// DayRepeat fires every Interval days, on days passing Filter, at Times.
// Intervals greater than one are only meaningful with the EveryDay filter.
type DayRepeat struct {
	Interval int
	Filter   DayFilter
	Times    []TimeOfDay
}

// WeekRepeat fires on the listed weekdays of every Interval-th week,
// aligned to Monday-based week boundaries.
type WeekRepeat struct {
	Interval int
	Days     []Weekday
	Times    []TimeOfDay
}

// MonthRepeat fires on the target day(s) of every Interval-th month.
type MonthRepeat struct {
	Interval int
	Target   MonthTarget
	Times    []TimeOfDay
}

// OrdinalRepeat fires on the nth (or last) weekday of every Interval-th month.
type OrdinalRepeat struct {
	Interval int
	Ordinal  Ordinal
	Weekday  Weekday
	Times    []TimeOfDay
}

// SingleDate fires on one specific date only; it does not repeat.
type SingleDate struct {
	Date  DateSpec
	Times []TimeOfDay
}

// YearRepeat fires on the target day of every Interval-th year.
type YearRepeat struct {
	Interval int
	Target   YearTarget
	Times    []TimeOfDay
}

func (IntervalRepeat) isExpr() {}
func (DayRepeat) isExpr()      {}
func (WeekRepeat) isExpr()     {}
func (MonthRepeat) isExpr()    {}
func (OrdinalRepeat) isExpr()  {}
func (SingleDate) isExpr()     {}
func (YearRepeat) isExpr()     {}

// Data is a complete parsed schedule: the expression plus the optional
// trailing modifiers. Instances are produced by the parser or the cron
// importer and treated as read-only afterwards.
type Data struct {
	Expr     Expr
	Timezone string      // IANA zone name; empty means UTC
	Except   []Exception // dates to skip
	Until    Until       // inclusive upper bound, nil if unbounded
	Anchor   string      // ISO date overriding the epoch alignment anchor
	During   []Month     // restrict occurrences to these months
}

// Clone returns a shallow copy of d. The contained slices are shared; they
// are never mutated after construction.
func (d *Data) Clone() *Data {
	c := *d
	return &c
}
