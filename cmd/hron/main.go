// Command hron evaluates human-readable schedule expressions.
//
//	hron "every weekday at 09:00" -n 3
//	hron --from-cron "0 9 * * 1-5"
//	hron --to-cron "every 15 min from 09:00 to 17:00"
//	hron --check "every day at 25:00"
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/prasrvenkat/hron"
	"github.com/prasrvenkat/hron/schedule"
)

func main() {
	var (
		count    int
		fromStr  string
		toStr    string
		asJSON   bool
		check    bool
		toCron   bool
		fromCron bool
		explain  bool
		previous bool
		debug    bool
	)

	pflag.IntVarP(&count, "count", "n", 1, "number of occurrences to print")
	pflag.StringVar(&fromStr, "from", "", "evaluate from this RFC 3339 instant instead of now")
	pflag.StringVar(&toStr, "to", "", "list occurrences up to this RFC 3339 instant")
	pflag.BoolVar(&asJSON, "json", false, "emit machine-readable JSON")
	pflag.BoolVar(&check, "check", false, "validate the expression and exit")
	pflag.BoolVar(&toCron, "to-cron", false, "translate the expression to cron syntax")
	pflag.BoolVar(&fromCron, "from-cron", false, "treat the input as a cron expression")
	pflag.BoolVar(&explain, "explain", false, "print the canonical form and exit")
	pflag.BoolVar(&previous, "previous", false, "print the previous occurrence instead of the next")
	pflag.BoolVar(&debug, "debug", false, "enable debug logging")
	pflag.Parse()

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hron [flags] EXPRESSION")
		pflag.PrintDefaults()
		os.Exit(2)
	}
	input := pflag.Arg(0)

	if err := run(input, options{
		count:    count,
		fromStr:  fromStr,
		toStr:    toStr,
		asJSON:   asJSON,
		check:    check,
		toCron:   toCron,
		fromCron: fromCron,
		explain:  explain,
		previous: previous,
	}); err != nil {
		var schedErr *schedule.Error
		if errors.As(err, &schedErr) {
			fmt.Fprintln(os.Stderr, schedErr.DisplayRich())
		} else {
			fmt.Fprintln(os.Stderr, "hron:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	count    int
	fromStr  string
	toStr    string
	asJSON   bool
	check    bool
	toCron   bool
	fromCron bool
	explain  bool
	previous bool
}

type output struct {
	Expression  string   `json:"expression"`
	Canonical   string   `json:"canonical"`
	Timezone    string   `json:"timezone,omitempty"`
	Cron        string   `json:"cron,omitempty"`
	Occurrences []string `json:"occurrences,omitempty"`
}

func run(input string, opts options) error {
	if opts.check {
		if opts.fromCron {
			_, err := hron.FromCron(input)
			return err
		}
		_, err := hron.Parse(input)
		return err
	}

	var (
		s   *hron.Schedule
		err error
	)
	if opts.fromCron {
		s, err = hron.FromCron(input)
	} else {
		s, err = hron.Parse(input)
	}
	if err != nil {
		return err
	}
	slog.Debug("parsed expression", "canonical", s.String(), "timezone", s.Timezone())

	out := output{Expression: input, Canonical: s.String(), Timezone: s.Timezone()}

	switch {
	case opts.explain:
		// canonical form only

	case opts.toCron:
		cronExpr, err := s.ToCron()
		if err != nil {
			return err
		}
		out.Cron = cronExpr

	default:
		from := time.Now()
		if opts.fromStr != "" {
			from, err = time.Parse(time.RFC3339, opts.fromStr)
			if err != nil {
				return fmt.Errorf("invalid --from instant: %w", err)
			}
		}

		switch {
		case opts.previous:
			if prev, ok := s.PreviousFrom(from).Get(); ok {
				out.Occurrences = []string{prev.Format(time.RFC3339)}
			}
		case opts.toStr != "":
			to, err := time.Parse(time.RFC3339, opts.toStr)
			if err != nil {
				return fmt.Errorf("invalid --to instant: %w", err)
			}
			for t := range s.Between(from, to) {
				out.Occurrences = append(out.Occurrences, t.Format(time.RFC3339))
			}
		default:
			for _, t := range s.NextNFrom(from, opts.count) {
				out.Occurrences = append(out.Occurrences, t.Format(time.RFC3339))
			}
		}
	}

	return emit(out, opts)
}

func emit(out output, opts options) error {
	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	switch {
	case opts.explain:
		fmt.Println(out.Canonical)
	case opts.toCron:
		fmt.Println(out.Cron)
	default:
		if len(out.Occurrences) == 0 {
			fmt.Println("no occurrences")
			return nil
		}
		for _, occ := range out.Occurrences {
			fmt.Println(occ)
		}
	}
	return nil
}
