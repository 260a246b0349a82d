// Package expand provides cached windowed expansion of schedules.
//
// Callers that repeatedly materialize the same schedule over the same
// window, such as calendar views or availability checks, go through an
// Expander instead of re-running the evaluator each time.
package expand

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/prasrvenkat/hron"
)

// Config holds tuning options for an Expander.
type Config struct {
	TTL             time.Duration // how long cached windows stay valid
	MaxEntries      int           // entries kept before eviction kicks in
	CleanupInterval time.Duration // how often expired windows are swept
	MaxOccurrences  int           // cap per expanded window
}

// DefaultConfig provides sensible defaults for interactive use.
var DefaultConfig = Config{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
	MaxOccurrences:  1000,
}

// LowMemoryConfig trades hit rate for a small footprint.
var LowMemoryConfig = Config{
	TTL:             5 * time.Minute,
	MaxEntries:      100,
	CleanupInterval: 2 * time.Minute,
	MaxOccurrences:  1000,
}

type entry struct {
	occurrences []time.Time
	expiresAt   time.Time
	accessedAt  time.Time
}

// Expander expands schedules over time windows, memoizing results per
// schedule and window. Safe for concurrent use.
type Expander struct {
	mu      sync.RWMutex
	entries map[string]*entry
	cfg     Config
	stop    chan struct{}
}

// New creates an Expander and starts its background sweep.
// Callers must Close it when done.
func New(cfg Config) *Expander {
	e := &Expander{
		entries: make(map[string]*entry),
		cfg:     cfg,
		stop:    make(chan struct{}),
	}
	go e.sweepLoop()
	return e
}

// Between returns every occurrence of s in (from, to], capped at
// MaxOccurrences, serving repeated calls from cache.
func (e *Expander) Between(s *hron.Schedule, from, to time.Time) []time.Time {
	key := windowKey(s, from, to)

	e.mu.RLock()
	ent, ok := e.entries[key]
	e.mu.RUnlock()

	now := time.Now()
	if ok && now.Before(ent.expiresAt) {
		e.mu.Lock()
		ent.accessedAt = now
		e.mu.Unlock()
		return slices.Clone(ent.occurrences)
	}

	var occurrences []time.Time
	for t := range s.Between(from, to) {
		occurrences = append(occurrences, t)
		if len(occurrences) == e.cfg.MaxOccurrences {
			break
		}
	}

	e.mu.Lock()
	e.entries[key] = &entry{
		occurrences: occurrences,
		expiresAt:   now.Add(e.cfg.TTL),
		accessedAt:  now,
	}
	if len(e.entries) > e.cfg.MaxEntries {
		e.evict(now)
	}
	e.mu.Unlock()

	return slices.Clone(occurrences)
}

// HasOccurrence reports whether s fires at least once in (from, to].
func (e *Expander) HasOccurrence(s *hron.Schedule, from, to time.Time) bool {
	if next, ok := s.NextFrom(from).Get(); ok {
		return !next.After(to)
	}
	return false
}

// windowKey hashes the canonical schedule text and the window bounds.
// Canonical text is enough: schedules that render identically occur
// identically.
func windowKey(s *hron.Schedule, from, to time.Time) string {
	h := sha256.New()
	h.Write([]byte(s.String()))
	h.Write([]byte{0})
	h.Write([]byte(s.Timezone()))
	h.Write([]byte{0})
	h.Write([]byte(from.Format(time.RFC3339Nano)))
	h.Write([]byte(to.Format(time.RFC3339Nano)))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// evict drops expired entries, then the least recently accessed until the
// table fits. Caller holds the write lock.
func (e *Expander) evict(now time.Time) {
	for key, ent := range e.entries {
		if now.After(ent.expiresAt) {
			delete(e.entries, key)
		}
	}
	if len(e.entries) <= e.cfg.MaxEntries {
		return
	}

	type access struct {
		key        string
		accessedAt time.Time
	}
	byAge := make([]access, 0, len(e.entries))
	for key, ent := range e.entries {
		byAge = append(byAge, access{key, ent.accessedAt})
	}
	slices.SortFunc(byAge, func(a, b access) int {
		return a.accessedAt.Compare(b.accessedAt)
	})
	for _, a := range byAge[:len(e.entries)-e.cfg.MaxEntries] {
		delete(e.entries, a.key)
	}
}

func (e *Expander) sweepLoop() {
	ticker := time.NewTicker(e.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.mu.Lock()
			now := time.Now()
			for key, ent := range e.entries {
				if now.After(ent.expiresAt) {
					delete(e.entries, key)
				}
			}
			e.mu.Unlock()
		case <-e.stop:
			return
		}
	}
}

// Stats reports cache occupancy.
func (e *Expander) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := time.Now()
	expired := 0
	for _, ent := range e.entries {
		if now.After(ent.expiresAt) {
			expired++
		}
	}
	return Stats{
		TotalEntries:   len(e.entries),
		ExpiredEntries: expired,
		ActiveEntries:  len(e.entries) - expired,
	}
}

// Stats describes the state of an Expander's cache.
type Stats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}

// Close stops the background sweep and drops all cached windows.
func (e *Expander) Close() {
	close(e.stop)
	e.mu.Lock()
	e.entries = make(map[string]*entry)
	e.mu.Unlock()
}
