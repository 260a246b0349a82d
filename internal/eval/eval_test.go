package eval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasrvenkat/hron/parse"
	"github.com/prasrvenkat/hron/schedule"
)

func sched(t *testing.T, expr string) *schedule.Data {
	t.Helper()
	d, err := parse.Parse(expr)
	require.NoError(t, err)
	return d
}

func utc(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

// 2026-02-06 is a Friday and lands 20490 days after the Unix epoch, which is
// divisible by 3; the Monday of its week, 2026-02-02, starts an even week
// counted from the first epoch Monday.
func TestNext(t *testing.T) {
	tests := []struct {
		name string
		expr string
		now  time.Time
		want time.Time
	}{
		{
			name: "daily later today",
			expr: "every day at 09:00",
			now:  utc(2026, 2, 6, 8, 59),
			want: utc(2026, 2, 6, 9, 0),
		},
		{
			name: "daily tomorrow",
			expr: "every day at 09:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 7, 9, 0),
		},
		{
			name: "strictly after now",
			expr: "every day at 09:00",
			now:  utc(2026, 2, 6, 9, 0),
			want: utc(2026, 2, 7, 9, 0),
		},
		{
			name: "second time same day",
			expr: "every day at 09:00, 18:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 6, 18, 0),
		},
		{
			name: "weekday skips weekend",
			expr: "every weekday at 09:00",
			now:  utc(2026, 2, 6, 12, 0), // Friday noon
			want: utc(2026, 2, 9, 9, 0),  // Monday
		},
		{
			name: "weekend from friday",
			expr: "every weekend at 10:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 7, 10, 0),
		},
		{
			name: "day list",
			expr: "every monday, wednesday at 08:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 9, 8, 0),
		},
		{
			name: "aligned multi-day today",
			expr: "every 3 days at 10:00",
			now:  utc(2026, 2, 6, 9, 0),
			want: utc(2026, 2, 6, 10, 0),
		},
		{
			name: "aligned multi-day next step",
			expr: "every 3 days at 10:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 9, 10, 0),
		},
		{
			name: "minute interval next slot",
			expr: "every 15 min from 09:00 to 17:00",
			now:  utc(2026, 2, 6, 12, 7),
			want: utc(2026, 2, 6, 12, 15),
		},
		{
			name: "minute interval before window",
			expr: "every 15 min from 09:00 to 17:00",
			now:  utc(2026, 2, 6, 8, 0),
			want: utc(2026, 2, 6, 9, 0),
		},
		{
			name: "minute interval window exhausted",
			expr: "every 15 min from 09:00 to 17:00",
			now:  utc(2026, 2, 6, 17, 0),
			want: utc(2026, 2, 7, 9, 0),
		},
		{
			name: "hour interval",
			expr: "every 2 hours from 00:00 to 23:59",
			now:  utc(2026, 2, 6, 12, 7),
			want: utc(2026, 2, 6, 14, 0),
		},
		{
			name: "interval with day filter",
			expr: "every 30 min from 09:00 to 17:00 on weekday",
			now:  utc(2026, 2, 6, 17, 0), // Friday window exhausted
			want: utc(2026, 2, 9, 9, 0),  // Monday window start
		},
		{
			name: "biweekly skips unaligned week",
			expr: "every 2 weeks on monday at 09:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 16, 9, 0),
		},
		{
			name: "month day",
			expr: "every month on the 15th at 09:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 15, 9, 0),
		},
		{
			name: "last day of february",
			expr: "every month on the last day at 17:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 28, 17, 0),
		},
		{
			name: "last weekday of february",
			expr: "every month on the last weekday at 09:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 27, 9, 0), // the 28th is a Saturday
		},
		{
			name: "nearest weekday saturday resolves to friday",
			expr: "every month on the nearest weekday to 14th at 09:00",
			now:  utc(2026, 2, 1, 0, 0),
			want: utc(2026, 2, 13, 9, 0),
		},
		{
			name: "nearest weekday forced forward",
			expr: "every month on the next nearest weekday to 14th at 09:00",
			now:  utc(2026, 2, 1, 0, 0),
			want: utc(2026, 2, 16, 9, 0),
		},
		{
			name: "third friday",
			expr: "third friday of every month at 10:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 20, 10, 0),
		},
		{
			name: "last friday",
			expr: "last friday of every month at 17:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 27, 17, 0),
		},
		{
			name: "first monday already passed rolls to march",
			expr: "first monday of every month at 08:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 3, 2, 8, 0),
		},
		{
			name: "single ISO date ahead",
			expr: "on 2026-02-14 at 14:00",
			now:  utc(2026, 2, 1, 0, 0),
			want: utc(2026, 2, 14, 14, 0),
		},
		{
			name: "named date rolls to next year",
			expr: "on feb 14 at 14:00",
			now:  utc(2026, 2, 20, 0, 0),
			want: utc(2027, 2, 14, 14, 0),
		},
		{
			name: "yearly date",
			expr: "every year on jan 1 at 00:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2027, 1, 1, 0, 0),
		},
		{
			name: "yearly ordinal weekday",
			expr: "every year on the first monday of sep at 09:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 9, 7, 9, 0),
		},
		{
			name: "yearly last weekday of december",
			expr: "every year on the last weekday of dec at 09:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 12, 31, 9, 0), // a Thursday
		},
		{
			name: "except skips one day",
			expr: "every day at 09:00 except 2026-02-07",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 8, 9, 0),
		},
		{
			name: "named except repeats yearly",
			expr: "every day at 09:00 except feb 7",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 8, 9, 0),
		},
		{
			name: "during waits for allowed month",
			expr: "every day at 09:00 during mar",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 3, 1, 9, 0),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Next(sched(t, tc.expr), time.UTC, tc.now)
			require.True(t, ok)
			assert.Equal(t, tc.want, got.UTC())
		})
	}
}

func TestNextNone(t *testing.T) {
	tests := []struct {
		name string
		expr string
		now  time.Time
	}{
		{"single date in the past", "on 2026-02-14 at 14:00", utc(2026, 2, 15, 0, 0)},
		{"until bound crossed", "every day at 09:00 until 2026-02-10", utc(2026, 2, 10, 12, 0)},
		// February has no 30th; the month scan must give up instead of looping.
		{"impossible day within during months", "every month on the 30th at 09:00 during feb", utc(2026, 1, 1, 0, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := Next(sched(t, tc.expr), time.UTC, tc.now)
			assert.False(t, ok)
		})
	}
}

func TestNextWithAnchor(t *testing.T) {
	d := sched(t, "every 2 days at 08:00 starting 2026-02-07")
	got := NextN(d, time.UTC, utc(2026, 2, 6, 0, 0), 3)
	require.Len(t, got, 3)
	assert.Equal(t, utc(2026, 2, 7, 8, 0), got[0].UTC())
	assert.Equal(t, utc(2026, 2, 9, 8, 0), got[1].UTC())
	assert.Equal(t, utc(2026, 2, 11, 8, 0), got[2].UTC())
}

func TestNextNStopsAtUntil(t *testing.T) {
	d := sched(t, "every day at 09:00 until 2026-02-10")
	got := NextN(d, time.UTC, utc(2026, 2, 6, 12, 0), 10)
	require.Len(t, got, 4) // Feb 7 through Feb 10, the until day inclusive
	assert.Equal(t, utc(2026, 2, 7, 9, 0), got[0].UTC())
	assert.Equal(t, utc(2026, 2, 10, 9, 0), got[3].UTC())
}

func TestNamedUntilResolvesForward(t *testing.T) {
	d := sched(t, "every day at 09:00 until feb 10")
	got, ok := Next(d, time.UTC, utc(2026, 2, 9, 12, 0))
	require.True(t, ok)
	assert.Equal(t, utc(2026, 2, 10, 9, 0), got.UTC())

	_, ok = Next(d, time.UTC, utc(2026, 2, 10, 12, 0))
	assert.False(t, ok)
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		name string
		expr string
		now  time.Time
		want time.Time
	}{
		{
			name: "daily earlier today",
			expr: "every day at 09:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 6, 9, 0),
		},
		{
			name: "daily yesterday",
			expr: "every day at 09:00",
			now:  utc(2026, 2, 6, 8, 0),
			want: utc(2026, 2, 5, 9, 0),
		},
		{
			name: "strictly before now",
			expr: "every day at 09:00",
			now:  utc(2026, 2, 6, 9, 0),
			want: utc(2026, 2, 5, 9, 0),
		},
		{
			name: "weekday from monday morning",
			expr: "every weekday at 09:00",
			now:  utc(2026, 2, 9, 8, 0),
			want: utc(2026, 2, 6, 9, 0),
		},
		{
			name: "hour interval on slot",
			expr: "every 2 hours from 00:00 to 23:59",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 2, 6, 10, 0),
		},
		{
			name: "hour interval between slots",
			expr: "every 2 hours from 00:00 to 23:59",
			now:  utc(2026, 2, 6, 12, 7),
			want: utc(2026, 2, 6, 12, 0),
		},
		{
			name: "single date before now",
			expr: "on 2026-02-14 at 14:00",
			now:  utc(2026, 3, 1, 0, 0),
			want: utc(2026, 2, 14, 14, 0),
		},
		{
			name: "third friday previous month",
			expr: "third friday of every month at 10:00",
			now:  utc(2026, 2, 6, 12, 0),
			want: utc(2026, 1, 16, 10, 0),
		},
		{
			name: "during restricts backwards",
			expr: "every day at 09:00 during mar",
			now:  utc(2026, 4, 5, 0, 0),
			want: utc(2026, 3, 31, 9, 0),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Previous(sched(t, tc.expr), time.UTC, tc.now)
			require.True(t, ok)
			assert.Equal(t, tc.want, got.UTC())
		})
	}
}

func TestPreviousAnchorIsHardBound(t *testing.T) {
	d := sched(t, "every day at 09:00 starting 2026-02-06")

	_, ok := Previous(d, time.UTC, utc(2026, 2, 6, 8, 0))
	assert.False(t, ok)

	got, ok := Previous(d, time.UTC, utc(2026, 2, 7, 0, 0))
	require.True(t, ok)
	assert.Equal(t, utc(2026, 2, 6, 9, 0), got.UTC())
}

func TestPreviousRedirectsPastUntil(t *testing.T) {
	// With the bound long past, previous lands on the last in-range day.
	d := sched(t, "every day at 09:00 until 2026-02-10")
	got, ok := Previous(d, time.UTC, utc(2026, 3, 1, 0, 0))
	require.True(t, ok)
	assert.Equal(t, utc(2026, 2, 10, 9, 0), got.UTC())
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name string
		expr string
		at   time.Time
		want bool
	}{
		{"weekday hit", "every weekday at 09:00", utc(2026, 2, 6, 9, 0), true},
		{"wrong minute", "every weekday at 09:00", utc(2026, 2, 6, 9, 1), false},
		{"saturday misses weekday filter", "every weekday at 09:00", utc(2026, 2, 7, 9, 0), false},
		{"interval slot hit", "every 15 min from 09:00 to 17:00", utc(2026, 2, 6, 12, 15), true},
		{"interval off-slot", "every 15 min from 09:00 to 17:00", utc(2026, 2, 6, 12, 10), false},
		{"interval outside window", "every 15 min from 09:00 to 17:00", utc(2026, 2, 6, 8, 45), false},
		{"interval window end", "every 15 min from 09:00 to 17:00", utc(2026, 2, 6, 17, 0), true},
		{"aligned day interval", "every 3 days at 10:00", utc(2026, 2, 6, 10, 0), true},
		{"unaligned day interval", "every 3 days at 10:00", utc(2026, 2, 7, 10, 0), false},
		{"last day hit", "every month on the last day at 17:00", utc(2026, 2, 28, 17, 0), true},
		{"not last day", "every month on the last day at 17:00", utc(2026, 2, 27, 17, 0), false},
		{"excepted date", "every day at 09:00 except feb 6", utc(2026, 2, 6, 9, 0), false},
		{"outside during", "every day at 09:00 during mar", utc(2026, 2, 6, 9, 0), false},
		{"past until", "every day at 09:00 until 2026-02-10", utc(2026, 2, 11, 9, 0), false},
		{"biweekly aligned", "every 2 weeks on monday at 09:00", utc(2026, 2, 2, 9, 0), true},
		{"biweekly unaligned", "every 2 weeks on monday at 09:00", utc(2026, 2, 9, 9, 0), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(sched(t, tc.expr), time.UTC, tc.at))
		})
	}
}

func TestDSTSpringForwardGap(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:30 does not exist on 2026-03-08; it resolves to 03:30 EDT.
	d := sched(t, "every day at 02:30 in America/New_York")
	got, ok := Next(d, ny, time.Date(2026, 3, 8, 1, 0, 0, 0, ny))
	require.True(t, ok)
	assert.Equal(t, utc(2026, 3, 8, 7, 30), got.UTC())

	assert.True(t, Matches(d, ny, got))
}

func TestDSTFallBackAmbiguity(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 01:30 occurs twice on 2026-11-01; the first (EDT) instant wins.
	d := sched(t, "every day at 01:30 in America/New_York")
	got, ok := Next(d, ny, utc(2026, 11, 1, 4, 0)) // 00:00 EDT
	require.True(t, ok)
	assert.Equal(t, utc(2026, 11, 1, 5, 30), got.UTC())
}

func TestResolveUntilNamed(t *testing.T) {
	// A named until behind today's date rolls into next year.
	got := resolveUntil(schedule.NamedUntil{Month: schedule.February, Day: 1}, utc(2026, 6, 1, 0, 0))
	assert.Equal(t, utc(2027, 2, 1, 0, 0), got)

	got = resolveUntil(schedule.NamedUntil{Month: schedule.February, Day: 1}, utc(2026, 1, 15, 0, 0))
	assert.Equal(t, utc(2026, 2, 1, 0, 0), got)
}
