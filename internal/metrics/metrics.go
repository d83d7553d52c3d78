// Package metrics collects lint pass statistics in memory and mirrors
// them to OpenTelemetry instruments.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// CacheResult indicates whether a worker cache lookup was a hit or miss
type CacheResult string

const (
	CacheNone CacheResult = ""
	CacheHit  CacheResult = "hit"
	CacheMiss CacheResult = "miss"
)

// PassEvent captures metrics for a single lint pass
type PassEvent struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Identifier string    `json:"identifier"`

	Duration     time.Duration `json:"duration"`
	FailureCount int           `json:"failure_count"`
	CacheResult  CacheResult   `json:"cache_result,omitempty"`

	Error string `json:"error,omitempty"`
}

// RuleStats holds per-rule counters.
type RuleStats struct {
	Applications int64   `json:"applications"`
	Failures     int64   `json:"failures"`
	Errors       int64   `json:"errors"`
	AvgMs        float64 `json:"avg_ms"`

	total time.Duration
}

// AggregateStats holds computed aggregate statistics
type AggregateStats struct {
	TotalPasses   int64 `json:"total_passes"`
	TotalErrors   int64 `json:"total_errors"`
	TotalFailures int64 `json:"total_failures"`

	// Latency stats (in milliseconds for JSON readability)
	AvgDurationMs float64 `json:"avg_duration_ms"`
	P50DurationMs float64 `json:"p50_duration_ms"`
	P95DurationMs float64 `json:"p95_duration_ms"`
	P99DurationMs float64 `json:"p99_duration_ms"`
	MaxDurationMs float64 `json:"max_duration_ms"`

	CacheHits    int64   `json:"cache_hits"`
	CacheMisses  int64   `json:"cache_misses"`
	CacheHitRate float64 `json:"cache_hit_rate"`

	PassesPerMinute float64 `json:"passes_per_minute"`
	FailuresPerPass float64 `json:"failures_per_pass"`

	ByRule map[string]RuleStats `json:"by_rule"`

	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// atomicCounters holds atomic counters for real-time stats
type atomicCounters struct {
	totalPasses   atomic.Int64
	totalErrors   atomic.Int64
	totalFailures atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
}

// Collector collects and stores lint metrics
type Collector struct {
	mu       sync.RWMutex
	events   []PassEvent
	rules    map[string]*RuleStats
	counters atomicCounters

	maxEvents  int
	windowSize time.Duration

	startTime time.Time
}

// CollectorOption configures a Collector
type CollectorOption func(*Collector)

// WithMaxEvents sets the maximum number of events to retain
func WithMaxEvents(n int) CollectorOption {
	return func(c *Collector) {
		c.maxEvents = n
	}
}

// WithWindowSize sets the time window for aggregate stats
func WithWindowSize(d time.Duration) CollectorOption {
	return func(c *Collector) {
		c.windowSize = d
	}
}

// NewCollector creates a new metrics collector
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		events:     make([]PassEvent, 0, 1000),
		rules:      make(map[string]*RuleStats),
		maxEvents:  10000,
		windowSize: 1 * time.Hour,
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record adds a pass event to the collector
func (c *Collector) Record(event PassEvent) {
	c.counters.totalPasses.Add(1)
	c.counters.totalFailures.Add(int64(event.FailureCount))
	if event.Error != "" {
		c.counters.totalErrors.Add(1)
	}
	switch event.CacheResult {
	case CacheHit:
		c.counters.cacheHits.Add(1)
	case CacheMiss:
		c.counters.cacheMisses.Add(1)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, event)

	if len(c.events) > c.maxEvents {
		// Remove oldest 10%, at least one
		pruneCount := c.maxEvents/10 + 1
		if pruneCount > len(c.events) {
			pruneCount = len(c.events)
		}
		c.events = c.events[pruneCount:]
	}
}

// recordRule updates the per-rule counters.
func (c *Collector) recordRule(rule string, d time.Duration, failures int, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.rules[rule]
	if !ok {
		s = &RuleStats{}
		c.rules[rule] = s
	}
	s.Applications++
	s.Failures += int64(failures)
	s.total += d
	if failed {
		s.Errors++
	}
}

// GetStats computes aggregate statistics from collected events
func (c *Collector) GetStats() AggregateStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	windowStart := now.Add(-c.windowSize)

	stats := AggregateStats{
		TotalPasses:   c.counters.totalPasses.Load(),
		TotalErrors:   c.counters.totalErrors.Load(),
		TotalFailures: c.counters.totalFailures.Load(),
		CacheHits:     c.counters.cacheHits.Load(),
		CacheMisses:   c.counters.cacheMisses.Load(),
		ByRule:        make(map[string]RuleStats, len(c.rules)),
		WindowStart:   windowStart,
		WindowEnd:     now,
	}

	if lookups := stats.CacheHits + stats.CacheMisses; lookups > 0 {
		stats.CacheHitRate = float64(stats.CacheHits) / float64(lookups)
	}
	if stats.TotalPasses > 0 {
		stats.FailuresPerPass = float64(stats.TotalFailures) / float64(stats.TotalPasses)
	}

	for name, s := range c.rules {
		out := *s
		if s.Applications > 0 {
			out.AvgMs = float64(s.total.Milliseconds()) / float64(s.Applications)
		}
		stats.ByRule[name] = out
	}

	var durations []float64
	var sum float64
	for _, e := range c.events {
		if !e.Timestamp.After(windowStart) {
			continue
		}
		ms := float64(e.Duration.Milliseconds())
		durations = append(durations, ms)
		sum += ms
	}
	if len(durations) == 0 {
		return stats
	}

	stats.AvgDurationMs = sum / float64(len(durations))
	sort.Float64s(durations)
	stats.P50DurationMs = percentile(durations, 0.50)
	stats.P95DurationMs = percentile(durations, 0.95)
	stats.P99DurationMs = percentile(durations, 0.99)
	stats.MaxDurationMs = durations[len(durations)-1]

	if elapsed := now.Sub(c.startTime).Minutes(); elapsed > 0 {
		stats.PassesPerMinute = float64(stats.TotalPasses) / elapsed
	}

	return stats
}

// GetRecentEvents returns the most recent n events
func (c *Collector) GetRecentEvents(n int) []PassEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n > len(c.events) {
		n = len(c.events)
	}
	if n <= 0 {
		return nil
	}

	result := make([]PassEvent, n)
	copy(result, c.events[len(c.events)-n:])
	return result
}

// Reset clears all collected metrics
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = c.events[:0]
	c.rules = make(map[string]*RuleStats)
	c.counters.totalPasses.Store(0)
	c.counters.totalErrors.Store(0)
	c.counters.totalFailures.Store(0)
	c.counters.cacheHits.Store(0)
	c.counters.cacheMisses.Store(0)
	c.startTime = time.Now()
}

// percentile returns the value at the given percentile (0.0-1.0)
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}
