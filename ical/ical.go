// Package ical exports schedules as iCalendar VEVENT components.
//
// Recurring schedules map to RRULE where the recurrence model allows it;
// everything else falls back to an enumerated RDATE list so the export
// never silently drops occurrences.
package ical

import (
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/prasrvenkat/hron"
	"github.com/prasrvenkat/hron/internal/calendar"
	"github.com/prasrvenkat/hron/schedule"
)

const productID = "-//hron//hron calendar export//EN"

// maxFallbackDates bounds the RDATE list for schedules that RRULE cannot
// express.
const maxFallbackDates = 52

// Export renders a schedule as a VCALENDAR containing a single VEVENT.
// The first occurrence at or after from becomes DTSTART. Schedules with no
// occurrence after from return an error.
func Export(s *hron.Schedule, summary string, from time.Time) (*ical.Calendar, error) {
	occurrences := collect(s, from, maxFallbackDates)
	if len(occurrences) == 0 {
		return nil, fmt.Errorf("ical: %q has no occurrences after %s", s.String(), from.Format(time.RFC3339))
	}
	start := occurrences[0]

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uuid.NewString())
	event.Props.SetText(ical.PropSummary, summary)
	// DTSTAMP must be in UTC.
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start)

	rule, err := RRule(s.Data())
	if err == nil && rule != "" {
		if verr := validateRule(start, rule); verr != nil {
			return nil, fmt.Errorf("ical: built invalid rule %q: %w", rule, verr)
		}
		// RRULE is a RECUR value; SetText would escape the ; and ,
		// separators.
		ruleProp := ical.NewProp(ical.PropRecurrenceRule)
		ruleProp.SetValueType(ical.ValueRecurrence)
		ruleProp.Value = rule
		event.Props.Set(ruleProp)
		for _, t := range exceptionDates(s, start) {
			prop := ical.NewProp(ical.PropExceptionDates)
			prop.SetDateTime(t)
			event.Props.Add(prop)
		}
	} else if len(occurrences) > 1 {
		for _, t := range occurrences[1:] {
			prop := ical.NewProp(ical.PropRecurrenceDates)
			prop.SetDateTime(t)
			event.Props.Add(prop)
		}
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Children = append(cal.Children, event.Component)
	return cal, nil
}

// collect gathers up to n occurrences strictly after from.
func collect(s *hron.Schedule, from time.Time, n int) []time.Time {
	var out []time.Time
	for t := range s.Occurrences(from) {
		out = append(out, t)
		if len(out) == n {
			break
		}
	}
	return out
}

// exceptionDates resolves ISO exceptions to EXDATE values at the event's
// start time. Named exceptions never reach here; RRule rejects them and the
// export takes the RDATE path instead.
func exceptionDates(s *hron.Schedule, start time.Time) []time.Time {
	var out []time.Time
	for _, exc := range s.Data().Except {
		iso, ok := exc.(schedule.ISOException)
		if !ok {
			continue
		}
		day, err := calendar.ParseISODate(iso.Value)
		if err != nil {
			continue
		}
		out = append(out, time.Date(day.Year(), day.Month(), day.Day(),
			start.Hour(), start.Minute(), 0, 0, start.Location()))
	}
	return out
}

func validateRule(start time.Time, rule string) error {
	_, err := rrule.StrToRRuleSet(fmt.Sprintf("DTSTART:%s\nRRULE:%s",
		start.UTC().Format("20060102T150405Z"), rule))
	return err
}
