package cron

import (
	"testing"
	"time"

	robfig "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasrvenkat/hron/internal/eval"
	"github.com/prasrvenkat/hron/parse"
	"github.com/prasrvenkat/hron/schedule"
)

func parseExpr(t *testing.T, input string) *schedule.Data {
	t.Helper()
	d, err := parse.Parse(input)
	require.NoError(t, err)
	return d
}

func TestEncode(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"every day at 09:00", "0 9 * * *"},
		{"every day at 00:00", "0 0 * * *"},
		{"every weekday at 09:00", "0 9 * * 1-5"},
		{"every weekend at 10:30", "30 10 * * 0,6"},
		{"every monday, wednesday at 08:00", "0 8 * * 1,3"},
		{"every sunday at 06:00", "0 6 * * 0"},
		{"every 15 min from 00:00 to 23:59", "*/15 * * * *"},
		{"every 15 min from 09:00 to 17:00", "*/15 9-17 * * *"},
		{"every 2 hours from 00:00 to 23:59", "0 */2 * * *"},
		{"every 2 hours from 09:00 to 17:00", "0 9-17/2 * * *"},
		{"every month on the 1st at 00:00", "0 0 1 * *"},
		{"every month on the 1st, 15th at 09:00", "0 9 1,15 * *"},
		{"every month on the 1st to 5th at 09:00", "0 9 1,2,3,4,5 * *"},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := Encode(parseExpr(t, tc.expr))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeRejections(t *testing.T) {
	tests := []struct {
		expr    string
		message string
	}{
		{"every day at 09:00 except dec 25", "not expressible as cron (except clauses not supported)"},
		{"every day at 09:00 until 2026-12-31", "not expressible as cron (until clauses not supported)"},
		{"every day at 09:00 during jun", "not expressible as cron (during clauses not supported)"},
		{"every 2 days at 09:00", "not expressible as cron (multi-day intervals not supported)"},
		{"every day at 09:00, 18:00", "not expressible as cron (multiple times not supported)"},
		{"every 2 weeks on monday at 09:00", "not expressible as cron (multi-week intervals not supported)"},
		{"every 2 months on the 1st at 09:00", "not expressible as cron (multi-month intervals not supported)"},
		{"every month on the last day at 09:00", "not expressible as cron (last day of month not supported)"},
		{"every month on the last weekday at 09:00", "not expressible as cron (last weekday of month not supported)"},
		{"every month on the nearest weekday to 14th at 09:00", "not expressible as cron (nearest weekday not supported)"},
		{"first monday of every month at 09:00", "not expressible as cron (ordinal weekday of month not supported)"},
		{"on 2026-02-14 at 14:00", "not expressible as cron (single dates are not repeating)"},
		{"every year on jan 1 at 00:00", "not expressible as cron (yearly schedules not supported in 5-field cron)"},
		{"every 7 min from 00:00 to 23:59", "not expressible as cron (*/7 breaks at hour boundaries)"},
		{"every 15 min from 09:30 to 17:00", "not expressible as cron (interval window must align to whole hours)"},
		{"every 15 min from 09:00 to 17:00 on weekday", "not expressible as cron (interval with day filter not supported)"},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			_, err := Encode(parseExpr(t, tc.expr))
			require.Error(t, err)

			var serr *schedule.Error
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, schedule.ErrorKindCron, serr.Kind)
			assert.Equal(t, tc.message, serr.Message)
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		cron string
		want string // canonical schedule text
	}{
		{"0 9 * * *", "every day at 09:00"},
		{"0 9 * * 1-5", "every weekday at 09:00"},
		{"15 10 * * MON-FRI", "every weekday at 10:15"},
		{"30 10 * * 0,6", "every weekend at 10:30"},
		{"30 10 * * SAT,SUN", "every weekend at 10:30"},
		{"0 8 * * 1,3", "every monday, wednesday at 08:00"},
		{"0 6 * * 7", "every sunday at 06:00"},
		{"0 9 ? * 1-5", "every weekday at 09:00"},
		{"*/15 * * * *", "every 15 min from 00:00 to 23:59"},
		{"*/15 9-17 * * *", "every 15 min from 09:00 to 17:00"},
		{"0 */2 * * *", "every 2 hours from 00:00 to 23:59"},
		{"0 9-17/2 * * *", "every 2 hours from 09:00 to 17:00"},
		{"*/10 9 * * *", "every 10 min from 09:00 to 09:00"},
		{"0 0 1 * *", "every month on the 1st at 00:00"},
		{"0 9 1,15 * *", "every month on the 1st, 15th at 09:00"},
		{"0 9 1-5 * *", "every month on the 1st to 5th at 09:00"},
		{"0 17 L * *", "every month on the last day at 17:00"},
		{"0 17 LW * *", "every month on the last weekday at 17:00"},
		{"0 9 * * 5#3", "third friday of every month at 09:00"},
		{"0 9 * * 1L", "last monday of every month at 09:00"},
		{"0 9 * 6-8 1-5", "every weekday at 09:00 during jun, jul, aug"},
		{"0 9 * 12 *", "every day at 09:00 during dec"},
		{"0 9 * JAN,JUL *", "every day at 09:00 during jan, jul"},
		{"0 9 * */3 *", "every day at 09:00 during jan, apr, jul, oct"},
		{"@daily", "every day at 00:00"},
		{"@midnight", "every day at 00:00"},
		{"@weekly", "every sunday at 00:00"},
		{"@monthly", "every month on the 1st at 00:00"},
		{"@yearly", "every year on jan 1 at 00:00"},
		{"@annually", "every year on jan 1 at 00:00"},
		{"@hourly", "every 1 hour from 00:00 to 23:59"},
	}
	for _, tc := range tests {
		t.Run(tc.cron, func(t *testing.T) {
			d, err := Decode(tc.cron)
			require.NoError(t, err)
			assert.Equal(t, tc.want, schedule.Canonical(d))
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		cron    string
		message string
	}{
		{"0 9 * *", "expected 5 cron fields, got 4"},
		{"@fortnightly", "unknown @ shortcut: @fortnightly"},
		{"0 9 15W * *", "W (nearest weekday) not yet supported"},
		{"60 9 * * *", "minute must be 0-59, got 60"},
		{"0 24 * * *", "hour must be 0-23, got 24"},
		{"0 9 32 * *", "DOM must be 1-31, got 32"},
		{"0 9 * 13 *", "invalid month number: 13"},
		{"0 9 * * 8", "DOW must be 0-7, got 8"},
		{"0 9 * * 5#6", "nth must be 1-5, got 6"},
		{"0 9 1 * 5#3", "DOM must be * when using # for nth weekday"},
		{"0 9 L * 1", "DOW must be * when using L or LW in DOM"},
		{"*/0 * * * *", "step cannot be 0"},
	}
	for _, tc := range tests {
		t.Run(tc.cron, func(t *testing.T) {
			_, err := Decode(tc.cron)
			require.Error(t, err)

			var serr *schedule.Error
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tc.message, serr.Message)
		})
	}
}

// Everything Encode emits must decode back to a schedule that encodes to the
// same string.
func TestEncodeDecodeFixedPoint(t *testing.T) {
	exprs := []string{
		"every day at 09:00",
		"every weekday at 09:00",
		"every weekend at 10:30",
		"every monday, wednesday at 08:00",
		"every 15 min from 00:00 to 23:59",
		"every 15 min from 09:00 to 17:00",
		"every 2 hours from 00:00 to 23:59",
		"every 2 hours from 09:00 to 17:00",
		"every month on the 1st, 15th at 09:00",
	}
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			first, err := Encode(parseExpr(t, expr))
			require.NoError(t, err)

			decoded, err := Decode(first)
			require.NoError(t, err)

			second, err := Encode(decoded)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

// Encode output must be valid for a standard cron parser, and for plain
// schedules the two engines must agree on the next occurrence.
func TestEncodeAgainstReferenceParser(t *testing.T) {
	exprs := []string{
		"every day at 09:00",
		"every weekday at 09:00",
		"every weekend at 10:30",
		"every monday, wednesday at 08:00",
		"every 15 min from 00:00 to 23:59",
		"every 2 hours from 00:00 to 23:59",
		"every month on the 1st, 15th at 09:00",
	}
	froms := []time.Time{
		time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 7, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 12, 31, 8, 30, 0, 0, time.UTC),
	}
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			data := parseExpr(t, expr)
			encoded, err := Encode(data)
			require.NoError(t, err)

			ref, err := robfig.ParseStandard(encoded)
			require.NoError(t, err)

			for _, from := range froms {
				want := ref.Next(from)
				got, ok := eval.Next(data, time.UTC, from)
				require.True(t, ok)
				assert.Equal(t, want, got.UTC(), "from %s", from)
			}
		})
	}
}
