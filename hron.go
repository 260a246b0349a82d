package hron

import (
	"iter"
	"time"

	"github.com/samber/mo"

	"github.com/prasrvenkat/hron/cron"
	"github.com/prasrvenkat/hron/internal/calendar"
	"github.com/prasrvenkat/hron/internal/eval"
	"github.com/prasrvenkat/hron/parse"
	"github.com/prasrvenkat/hron/schedule"
)

// Schedule is a parsed schedule bound to its resolved timezone. It is
// immutable and safe for concurrent use.
type Schedule struct {
	data     *schedule.Data
	tzName   string
	location *time.Location
}

// New wraps already-parsed schedule data, resolving its timezone. An empty
// timezone resolves to UTC.
func New(data *schedule.Data) (*Schedule, error) {
	loc, err := calendar.LoadZone(data.Timezone)
	if err != nil {
		return nil, err
	}
	return &Schedule{data: data, tzName: data.Timezone, location: loc}, nil
}

// Parse parses an expression like "every weekday at 09:00 in Europe/Berlin"
// into a Schedule. Errors are *schedule.Error values carrying the offending
// input span.
func Parse(input string) (*Schedule, error) {
	data, err := parse.Parse(input)
	if err != nil {
		return nil, err
	}
	return New(data)
}

// MustParse is Parse for statically known expressions; it panics on error.
func MustParse(input string) *Schedule {
	s, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return s
}

// FromCron converts a 5-field cron expression (or @ shortcut) to a Schedule.
func FromCron(expr string) (*Schedule, error) {
	data, err := cron.Decode(expr)
	if err != nil {
		return nil, err
	}
	return New(data)
}

// Validate reports whether input is a well-formed expression. It never
// returns error detail; use Parse when the cause matters.
func Validate(input string) bool {
	_, err := parse.Parse(input)
	return err == nil
}

// String renders the canonical text form. Parsing the result yields an
// equivalent schedule.
func (s *Schedule) String() string {
	return schedule.Canonical(s.data)
}

// NextFrom returns the first occurrence strictly after now, or None when the
// schedule has no future occurrence.
func (s *Schedule) NextFrom(now time.Time) mo.Option[time.Time] {
	if next, ok := eval.Next(s.data, s.location, now); ok {
		return mo.Some(next)
	}
	return mo.None[time.Time]()
}

// NextNFrom returns up to n occurrences strictly after now, in order. The
// result is shorter than n when the schedule runs out.
func (s *Schedule) NextNFrom(now time.Time, n int) []time.Time {
	return eval.NextN(s.data, s.location, now, n)
}

// PreviousFrom returns the most recent occurrence strictly before now, or
// None when none exists.
func (s *Schedule) PreviousFrom(now time.Time) mo.Option[time.Time] {
	if prev, ok := eval.Previous(s.data, s.location, now); ok {
		return mo.Some(prev)
	}
	return mo.None[time.Time]()
}

// Matches reports whether dt is exactly an occurrence of this schedule, at
// minute precision in the schedule's timezone.
func (s *Schedule) Matches(dt time.Time) bool {
	return eval.Matches(s.data, s.location, dt)
}

// Occurrences returns a lazy sequence of occurrences strictly after from.
// The sequence is unbounded for repeating schedules unless an until clause
// ends it; consumers should limit iteration themselves.
func (s *Schedule) Occurrences(from time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		current := from
		for {
			next, ok := eval.Next(s.data, s.location, current)
			if !ok {
				return
			}
			// Advance past the found occurrence so it is not yielded twice.
			current = next.Add(time.Minute)
			if !yield(next) {
				return
			}
		}
	}
}

// Between returns the occurrences in the half-open range (from, to]. An
// empty range yields nothing.
func (s *Schedule) Between(from, to time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for dt := range s.Occurrences(from) {
			if dt.After(to) {
				return
			}
			if !yield(dt) {
				return
			}
		}
	}
}

// ToCron converts this schedule to a 5-field cron expression, or returns a
// descriptive error when the schedule has no cron equivalent.
func (s *Schedule) ToCron() (string, error) {
	return cron.Encode(s.data)
}

// WithAnchor returns a copy of the schedule whose interval alignment is
// anchored to the given date instead of the epoch default.
func (s *Schedule) WithAnchor(anchor time.Time) *Schedule {
	data := s.data.Clone()
	data.Anchor = anchor.Format("2006-01-02")
	return &Schedule{data: data, tzName: s.tzName, location: s.location}
}

// Timezone returns the IANA timezone name, or the empty string when the
// schedule did not specify one.
func (s *Schedule) Timezone() string {
	return s.tzName
}

// Location returns the resolved *time.Location the schedule evaluates in.
func (s *Schedule) Location() *time.Location {
	return s.location
}

// Data returns the underlying structured schedule. The returned value must
// be treated as read-only.
func (s *Schedule) Data() *schedule.Data {
	return s.data
}

// Expr returns the expression variant of the schedule, without modifiers.
func (s *Schedule) Expr() schedule.Expr {
	return s.data.Expr
}
