package metrics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/chris-regnier/nglint/internal/lint"
)

var (
	_ lint.Recorder = (*Collector)(nil)
	_ lint.Recorder = (*Instruments)(nil)
	_ lint.Recorder = Tee{}
)

// RecordRule implements lint.Recorder.
func (c *Collector) RecordRule(rule string, d time.Duration, failures int, err error) {
	c.recordRule(rule, d, failures, err != nil)
}

// RecordPass implements lint.Recorder.
func (c *Collector) RecordPass(identifier string, d time.Duration, failures int, err error) {
	event := PassEvent{
		ID:           generateID(identifier),
		Timestamp:    time.Now(),
		Identifier:   identifier,
		Duration:     d,
		FailureCount: failures,
	}
	if err != nil {
		event.Error = err.Error()
	}
	c.Record(event)
}

// RecordCache counts a worker cache lookup.
func (c *Collector) RecordCache(hit bool) {
	if hit {
		c.counters.cacheHits.Add(1)
		return
	}
	c.counters.cacheMisses.Add(1)
}

// Tee fans lint events out to several recorders.
type Tee []lint.Recorder

func (t Tee) RecordRule(rule string, d time.Duration, failures int, err error) {
	for _, r := range t {
		r.RecordRule(rule, d, failures, err)
	}
}

func (t Tee) RecordPass(identifier string, d time.Duration, failures int, err error) {
	for _, r := range t {
		r.RecordPass(identifier, d, failures, err)
	}
}

// RecordCache forwards to every member that counts cache lookups.
func (t Tee) RecordCache(hit bool) {
	for _, r := range t {
		if c, ok := r.(interface{ RecordCache(bool) }); ok {
			c.RecordCache(hit)
		}
	}
}

// generateID generates a unique ID for a pass event
func generateID(identifier string) string {
	now := time.Now()
	data := fmt.Sprintf("%s-%d", identifier, now.UnixNano())
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}

type contextKey string

const collectorContextKey contextKey = "metrics_collector"

// WithCollector adds a collector to the context
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, collectorContextKey, c)
}

// CollectorFromContext retrieves a collector from the context
func CollectorFromContext(ctx context.Context) *Collector {
	if c, ok := ctx.Value(collectorContextKey).(*Collector); ok {
		return c
	}
	return nil
}
