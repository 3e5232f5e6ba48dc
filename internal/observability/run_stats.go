// Package observability aggregates timing statistics across a benchmark run.
package observability

import (
	"sort"
	"sync"
	"time"
)

// RunStats tracks min/mean/max call durations per strategy and operation.
type RunStats struct {
	mu      sync.RWMutex
	entries map[string]*TimingStats
}

// TimingStats holds the aggregate for one strategy-operation pair.
type TimingStats struct {
	Strategy  string
	Operation string
	Calls     int64
	Failures  int64
	Min       time.Duration
	Max       time.Duration
	Total     time.Duration
	LastSeen  time.Time
}

// Mean returns the average duration of successful calls.
func (s TimingStats) Mean() time.Duration {
	ok := s.Calls - s.Failures
	if ok <= 0 {
		return 0
	}
	return s.Total / time.Duration(ok)
}

// Key identifies the pair, e.g. "thread-pool sort".
func (s TimingStats) Key() string {
	return s.Strategy + " " + s.Operation
}

// NewRunStats creates an empty tracker.
func NewRunStats() *RunStats {
	return &RunStats{entries: make(map[string]*TimingStats)}
}

// Record adds one call. Failed calls count toward Calls and Failures but do
// not affect the duration aggregates.
// This method is O(1) and thread-safe.
func (r *RunStats) Record(strategy, operation string, d time.Duration, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strategy + " " + operation
	stats, exists := r.entries[key]
	if !exists {
		stats = &TimingStats{Strategy: strategy, Operation: operation}
		r.entries[key] = stats
	}

	stats.Calls++
	stats.LastSeen = time.Now()
	if !ok {
		stats.Failures++
		return
	}
	if stats.Calls-stats.Failures == 1 || d < stats.Min {
		stats.Min = d
	}
	if d > stats.Max {
		stats.Max = d
	}
	stats.Total += d
}

// Get returns a copy of the stats for a pair.
func (r *RunStats) Get(strategy, operation string) (TimingStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.entries[strategy+" "+operation]
	if !ok {
		return TimingStats{}, false
	}
	return *s, true
}

// All returns copies of every entry sorted by key.
func (r *RunStats) All() []TimingStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make([]TimingStats, 0, len(r.entries))
	for _, s := range r.entries {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Key() < stats[j].Key()
	})
	return stats
}

// Slowest returns the top n entries by mean duration (descending).
func (r *RunStats) Slowest(n int) []TimingStats {
	if n <= 0 {
		return []TimingStats{}
	}
	stats := r.All()
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Mean() > stats[j].Mean()
	})
	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

// Reset discards all entries.
func (r *RunStats) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*TimingStats)
}
