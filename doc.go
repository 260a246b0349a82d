// Package hron parses and evaluates human-readable recurrence expressions
// such as "every weekday at 09:00" or "first monday of every month at 08:00
// except dec 25 in America/New_York".
//
// The language covers a superset of 5-field cron: sub-day intervals with
// daily windows, multi-week and multi-month intervals, ordinal weekdays,
// yearly rules, single dates, exception dates, end dates, anchor dates, and
// month restrictions, all with IANA timezone and DST awareness. Schedules
// translate to and from cron where the features overlap.
//
//	s, err := hron.Parse("every weekday at 9:00 except dec 25 in America/New_York")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if next, ok := s.NextFrom(time.Now()).Get(); ok {
//		fmt.Println("next occurrence:", next)
//	}
//
// Subpackages hold the moving parts: schedule defines the data model and
// canonical renderer, parse the expression grammar, and cron the translator.
// This package ties them to the evaluation engine behind a Schedule value
// that is immutable and safe for concurrent use.
package hron
