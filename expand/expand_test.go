package expand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasrvenkat/hron"
)

func TestBetween(t *testing.T) {
	e := New(DefaultConfig)
	defer e.Close()

	s := hron.MustParse("every day at 09:00")
	from := time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	got := e.Between(s, from, to)
	want := []time.Time{
		time.Date(2026, 2, 6, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 8, 9, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, want, got)
}

func TestBetweenCaches(t *testing.T) {
	e := New(DefaultConfig)
	defer e.Close()

	s := hron.MustParse("every monday at 09:00")
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first := e.Between(s, from, to)
	second := e.Between(s, from, to)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, e.Stats().TotalEntries)

	// A different window is a different entry.
	e.Between(s, from, to.Add(24*time.Hour))
	assert.Equal(t, 2, e.Stats().TotalEntries)
}

func TestBetweenReturnsCopies(t *testing.T) {
	e := New(DefaultConfig)
	defer e.Close()

	s := hron.MustParse("every day at 09:00")
	from := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)

	first := e.Between(s, from, to)
	require.NotEmpty(t, first)
	first[0] = time.Time{}

	second := e.Between(s, from, to)
	assert.False(t, second[0].IsZero())
}

func TestBetweenHonorsMaxOccurrences(t *testing.T) {
	cfg := DefaultConfig
	cfg.MaxOccurrences = 5
	e := New(cfg)
	defer e.Close()

	s := hron.MustParse("every 15 min from 09:00 to 17:00")
	from := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC)

	assert.Len(t, e.Between(s, from, to), 5)
}

func TestHasOccurrence(t *testing.T) {
	e := New(DefaultConfig)
	defer e.Close()

	s := hron.MustParse("every monday at 09:00")
	// 2026-02-02 is a Monday.
	monday := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, e.HasOccurrence(s, monday, monday.Add(24*time.Hour)))
	assert.False(t, e.HasOccurrence(s, monday.Add(10*time.Hour), monday.Add(24*time.Hour)))
}

func TestEviction(t *testing.T) {
	cfg := Config{
		TTL:             time.Hour,
		MaxEntries:      3,
		CleanupInterval: time.Hour,
		MaxOccurrences:  10,
	}
	e := New(cfg)
	defer e.Close()

	s := hron.MustParse("every day at 09:00")
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := range 6 {
		e.Between(s, from, from.Add(time.Duration(i+1)*24*time.Hour))
	}
	assert.LessOrEqual(t, e.Stats().TotalEntries, cfg.MaxEntries)
}

func TestExpiredEntriesRefresh(t *testing.T) {
	cfg := DefaultConfig
	cfg.TTL = -time.Second // every entry is born expired
	e := New(cfg)
	defer e.Close()

	s := hron.MustParse("every day at 09:00")
	from := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)

	want := []time.Time{
		time.Date(2026, 2, 5, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 6, 9, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, want, e.Between(s, from, to))
	assert.Equal(t, want, e.Between(s, from, to))
	assert.Equal(t, 1, e.Stats().ExpiredEntries)
}

func TestClose(t *testing.T) {
	e := New(DefaultConfig)
	s := hron.MustParse("every day at 09:00")
	from := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	e.Between(s, from, from.Add(48*time.Hour))

	e.Close()
	assert.Equal(t, 0, e.Stats().TotalEntries)
}
