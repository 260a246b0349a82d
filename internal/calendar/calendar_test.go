package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasrvenkat/hron/schedule"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestISOWeekday(t *testing.T) {
	assert.Equal(t, 1, ISOWeekday(date(2026, 2, 2)))  // Monday
	assert.Equal(t, 5, ISOWeekday(date(2026, 2, 6)))  // Friday
	assert.Equal(t, 6, ISOWeekday(date(2026, 2, 7)))  // Saturday
	assert.Equal(t, 7, ISOWeekday(date(2026, 2, 1)))  // Sunday
	assert.Equal(t, 1, ISOWeekday(EpochMonday))
}

func TestLoadZone(t *testing.T) {
	loc, err := LoadZone("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = LoadZone("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	_, err = LoadZone("Not/AZone")
	assert.Error(t, err)
}

func TestLastDayOfMonth(t *testing.T) {
	assert.Equal(t, 28, LastDayOfMonth(2026, time.February).Day())
	assert.Equal(t, 29, LastDayOfMonth(2028, time.February).Day())
	assert.Equal(t, 31, LastDayOfMonth(2026, time.January).Day())
	assert.Equal(t, 30, LastDayOfMonth(2026, time.April).Day())
}

func TestLastWeekdayOfMonth(t *testing.T) {
	// Feb 28 2026 is a Saturday, so the last weekday is Friday the 27th.
	assert.Equal(t, date(2026, 2, 27), LastWeekdayOfMonth(2026, time.February))
	// May 31 2026 is a Sunday.
	assert.Equal(t, date(2026, 5, 29), LastWeekdayOfMonth(2026, time.May))
}

func TestNthWeekdayOfMonth(t *testing.T) {
	got, ok := NthWeekdayOfMonth(2026, time.February, schedule.Friday, 3)
	require.True(t, ok)
	assert.Equal(t, date(2026, 2, 20), got)

	got, ok = NthWeekdayOfMonth(2026, time.March, schedule.Monday, 1)
	require.True(t, ok)
	assert.Equal(t, date(2026, 3, 2), got)

	// February 2026 has only four Mondays.
	_, ok = NthWeekdayOfMonth(2026, time.February, schedule.Monday, 5)
	assert.False(t, ok)
}

func TestLastWeekdayInMonth(t *testing.T) {
	assert.Equal(t, date(2026, 2, 27), LastWeekdayInMonth(2026, time.February, schedule.Friday))
	assert.Equal(t, date(2026, 2, 23), LastWeekdayInMonth(2026, time.February, schedule.Monday))
}

func TestNearestWeekday(t *testing.T) {
	tests := []struct {
		name  string
		month time.Month
		day   int
		dir   schedule.Direction
		want  time.Time
		ok    bool
	}{
		// Feb 14 2026 is a Saturday.
		{"saturday shifts back", time.February, 14, schedule.DirectionNone, date(2026, 2, 13), true},
		{"saturday forced forward", time.February, 14, schedule.DirectionNext, date(2026, 2, 16), true},
		{"saturday forced back", time.February, 14, schedule.DirectionPrevious, date(2026, 2, 13), true},
		// Feb 15 2026 is a Sunday.
		{"sunday shifts forward", time.February, 15, schedule.DirectionNone, date(2026, 2, 16), true},
		{"sunday forced back", time.February, 15, schedule.DirectionPrevious, date(2026, 2, 13), true},
		// Feb 1 2026 is a Sunday followed by weekdays; already mid-month rule.
		{"sunday on the 1st stays in month", time.February, 1, schedule.DirectionNone, date(2026, 2, 2), true},
		// Aug 1 2026 is a Saturday; shifting back would leave the month.
		{"saturday on the 1st stays in month", time.August, 1, schedule.DirectionNone, date(2026, 8, 3), true},
		// Sunday on the last day shifts back to Friday.
		{"sunday on the last day", time.May, 31, schedule.DirectionNone, date(2026, 5, 29), true},
		// Crossing the month boundary with an explicit direction.
		{"forced forward across month end", time.May, 31, schedule.DirectionNext, date(2026, 6, 1), true},
		{"weekday passes through", time.February, 11, schedule.DirectionNone, date(2026, 2, 11), true},
		{"day beyond month end", time.February, 30, schedule.DirectionNone, time.Time{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NearestWeekday(2026, tc.month, tc.day, tc.dir)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestAtTimeDSTGap(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:30 does not exist on 2026-03-08; the resolved instant is 03:30 EDT.
	got := AtTime(date(2026, 3, 8), schedule.TimeOfDay{Hour: 2, Minute: 30}, ny)
	assert.Equal(t, time.Date(2026, 3, 8, 7, 30, 0, 0, time.UTC), got.UTC())

	// A plain time resolves as written.
	got = AtTime(date(2026, 3, 8), schedule.TimeOfDay{Hour: 12}, ny)
	assert.Equal(t, 12, got.Hour())
}

func TestAtTimeDSTFold(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 01:30 happens twice on 2026-11-01; AtTime picks the earlier instant.
	got := AtTime(date(2026, 11, 1), schedule.TimeOfDay{Hour: 1, Minute: 30}, ny)
	assert.Equal(t, time.Date(2026, 11, 1, 5, 30, 0, 0, time.UTC), got.UTC())
}

func TestMatchesFilter(t *testing.T) {
	friday := date(2026, 2, 6)
	saturday := date(2026, 2, 7)

	assert.True(t, MatchesFilter(friday, nil))
	assert.True(t, MatchesFilter(friday, schedule.EveryDay{}))
	assert.True(t, MatchesFilter(friday, schedule.WeekdayFilter{}))
	assert.False(t, MatchesFilter(saturday, schedule.WeekdayFilter{}))
	assert.True(t, MatchesFilter(saturday, schedule.WeekendFilter{}))
	assert.False(t, MatchesFilter(friday, schedule.WeekendFilter{}))
	assert.True(t, MatchesFilter(friday, schedule.DayListFilter{Days: []schedule.Weekday{schedule.Friday}}))
	assert.False(t, MatchesFilter(friday, schedule.DayListFilter{Days: []schedule.Weekday{schedule.Monday}}))
}

func TestSpanArithmetic(t *testing.T) {
	assert.Equal(t, 3, DaysBetween(date(2026, 2, 3), date(2026, 2, 6)))
	assert.Equal(t, -3, DaysBetween(date(2026, 2, 6), date(2026, 2, 3)))
	assert.Equal(t, 2, WeeksBetween(date(2026, 2, 2), date(2026, 2, 16)))
	assert.Equal(t, 1, MonthsBetween(date(2026, 1, 31), date(2026, 2, 1)))
	assert.Equal(t, 12, MonthsBetween(date(2025, 2, 6), date(2026, 2, 6)))
}

func TestDateOnly(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	local := time.Date(2026, 2, 6, 23, 45, 12, 0, ny)
	assert.Equal(t, date(2026, 2, 6), DateOnly(local))
}
