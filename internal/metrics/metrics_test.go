package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/chris-regnier/nglint/internal/lint"
)

func TestCollector_Record(t *testing.T) {
	c := NewCollector()

	c.Record(PassEvent{
		ID:           "test-1",
		Timestamp:    time.Now(),
		Identifier:   "a.ts",
		FailureCount: 5,
		CacheResult:  CacheMiss,
	})

	if c.counters.totalPasses.Load() != 1 {
		t.Error("total passes should be 1")
	}
	if c.counters.totalFailures.Load() != 5 {
		t.Error("total failures should be 5")
	}
	if c.counters.cacheMisses.Load() != 1 {
		t.Error("cache misses should be 1")
	}
}

func TestCollector_RecordConcurrent(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	n := 100

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordPass("a.ts", time.Millisecond, 1, nil)
			c.RecordRule("no-input-rename", time.Millisecond, 1, nil)
		}()
	}

	wg.Wait()

	if c.counters.totalPasses.Load() != int64(n) {
		t.Errorf("expected %d passes, got %d", n, c.counters.totalPasses.Load())
	}
	if got := c.GetStats().ByRule["no-input-rename"].Applications; got != int64(n) {
		t.Errorf("expected %d rule applications, got %d", n, got)
	}
}

func TestCollector_GetStats(t *testing.T) {
	c := NewCollector()

	for i := 0; i < 10; i++ {
		c.Record(PassEvent{
			ID:           "test",
			Timestamp:    time.Now(),
			Duration:     100 * time.Millisecond,
			FailureCount: 2,
			CacheResult:  CacheMiss,
		})
	}
	for i := 0; i < 5; i++ {
		c.Record(PassEvent{
			ID:          "test-hit",
			Timestamp:   time.Now(),
			CacheResult: CacheHit,
		})
	}

	stats := c.GetStats()

	if stats.TotalPasses != 15 {
		t.Errorf("expected 15 passes, got %d", stats.TotalPasses)
	}
	if stats.TotalFailures != 20 {
		t.Errorf("expected 20 failures, got %d", stats.TotalFailures)
	}
	if stats.CacheHits != 5 || stats.CacheMisses != 10 {
		t.Errorf("expected 5 hits and 10 misses, got %d/%d", stats.CacheHits, stats.CacheMisses)
	}

	expectedHitRate := 5.0 / 15.0
	if stats.CacheHitRate < expectedHitRate-0.01 || stats.CacheHitRate > expectedHitRate+0.01 {
		t.Errorf("expected cache hit rate ~%.3f, got %.3f", expectedHitRate, stats.CacheHitRate)
	}
	if stats.MaxDurationMs != 100 {
		t.Errorf("expected max 100ms, got %.0f", stats.MaxDurationMs)
	}
	if stats.P50DurationMs != 100 {
		t.Errorf("expected p50 100ms, got %.0f", stats.P50DurationMs)
	}
}

func TestCollector_RecordRule(t *testing.T) {
	c := NewCollector()
	c.RecordRule("component-selector", 4*time.Millisecond, 2, nil)
	c.RecordRule("component-selector", 2*time.Millisecond, 0, errors.New("boom"))

	s := c.GetStats().ByRule["component-selector"]
	if s.Applications != 2 || s.Failures != 2 || s.Errors != 1 {
		t.Errorf("unexpected rule stats %+v", s)
	}
	if s.AvgMs != 3 {
		t.Errorf("expected 3ms average, got %.1f", s.AvgMs)
	}
}

func TestCollector_RecordPassError(t *testing.T) {
	c := NewCollector()
	c.RecordPass("a.vue", time.Millisecond, 0, os.ErrNotExist)

	if c.counters.totalErrors.Load() != 1 {
		t.Error("error count should be 1")
	}
	events := c.GetRecentEvents(1)
	if len(events) != 1 || events[0].Error == "" || events[0].ID == "" {
		t.Errorf("expected recorded error event, got %+v", events)
	}
}

func TestCollector_RecordCache(t *testing.T) {
	c := NewCollector()
	c.RecordCache(true)
	c.RecordCache(false)
	c.RecordCache(true)

	stats := c.GetStats()
	if stats.CacheHits != 2 || stats.CacheMisses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d/%d", stats.CacheHits, stats.CacheMisses)
	}
}

func TestCollector_GetRecentEvents(t *testing.T) {
	c := NewCollector()

	for i := 0; i < 20; i++ {
		c.Record(PassEvent{
			ID:        string(rune('a' + i)),
			Timestamp: time.Now(),
		})
	}

	events := c.GetRecentEvents(5)
	if len(events) != 5 {
		t.Errorf("expected 5 events, got %d", len(events))
	}
	if events[4].ID != "t" {
		t.Errorf("expected most recent event last, got %q", events[4].ID)
	}

	events = c.GetRecentEvents(100)
	if len(events) != 20 {
		t.Errorf("expected 20 events, got %d", len(events))
	}
}

func TestCollector_Reset(t *testing.T) {
	c := NewCollector()

	c.Record(PassEvent{ID: "test", FailureCount: 5})
	c.RecordRule("x", 0, 1, nil)
	c.Reset()

	if c.counters.totalPasses.Load() != 0 {
		t.Error("counters should be reset")
	}
	if len(c.GetRecentEvents(10)) != 0 {
		t.Error("events should be cleared")
	}
	if len(c.GetStats().ByRule) != 0 {
		t.Error("rule stats should be cleared")
	}
}

func TestCollector_Pruning(t *testing.T) {
	c := NewCollector(WithMaxEvents(100))

	for i := 0; i < 150; i++ {
		c.Record(PassEvent{
			ID:        string(rune(i)),
			Timestamp: time.Now(),
		})
	}

	c.mu.RLock()
	eventCount := len(c.events)
	c.mu.RUnlock()

	if eventCount > 100 {
		t.Errorf("events should be pruned, got %d", eventCount)
	}
}

func TestCollector_ZeroMaxEvents(t *testing.T) {
	c := NewCollector(WithMaxEvents(0))
	c.RecordPass("a.ts", time.Millisecond, 1, nil)

	if len(c.GetRecentEvents(10)) != 0 {
		t.Error("expected no retained events")
	}
	if c.GetStats().TotalPasses != 1 {
		t.Error("counters should still count the pass")
	}
}

func TestTee(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	var r lint.Recorder = Tee{a, b}

	r.RecordRule("no-output-native", time.Millisecond, 1, nil)
	r.RecordPass("a.ts", time.Millisecond, 1, nil)

	for _, c := range []*Collector{a, b} {
		stats := c.GetStats()
		if stats.TotalPasses != 1 || stats.ByRule["no-output-native"].Failures != 1 {
			t.Errorf("expected both collectors to record, got %+v", stats)
		}
	}
}

func TestTeeRecordCache(t *testing.T) {
	c := NewCollector()
	instruments, err := NewInstruments(nil)
	if err != nil {
		t.Fatal(err)
	}
	tee := Tee{c, instruments}

	tee.RecordCache(true)
	tee.RecordCache(false)
	tee.RecordCache(true)

	stats := c.GetStats()
	if stats.CacheHits != 2 || stats.CacheMisses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d/%d", stats.CacheHits, stats.CacheMisses)
	}
}

func TestCollectorFromContext(t *testing.T) {
	if CollectorFromContext(context.Background()) != nil {
		t.Error("expected nil collector from empty context")
	}
	c := NewCollector()
	if CollectorFromContext(WithCollector(context.Background(), c)) != c {
		t.Error("expected collector round trip through context")
	}
}

func TestInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	inst, err := NewInstruments(provider.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	inst.RecordRule("no-input-rename", time.Millisecond, 3, nil)
	inst.RecordRule("no-input-rename", time.Millisecond, 0, errors.New("boom"))
	inst.RecordPass("a.ts", 5*time.Millisecond, 3, nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}

	sums := make(map[string]int64)
	var histograms int
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					histograms += int(dp.Count)
				}
			}
		}
	}

	if sums["nglint.lint.passes"] != 1 {
		t.Errorf("expected 1 pass, got %d", sums["nglint.lint.passes"])
	}
	if sums["nglint.lint.failures"] != 3 {
		t.Errorf("expected 3 failures, got %d", sums["nglint.lint.failures"])
	}
	if sums["nglint.lint.rule_errors"] != 1 {
		t.Errorf("expected 1 rule error, got %d", sums["nglint.lint.rule_errors"])
	}
	if histograms != 1 {
		t.Errorf("expected 1 duration sample, got %d", histograms)
	}
}

func TestExporter_WriteReport(t *testing.T) {
	c := NewCollector()

	for i := 0; i < 5; i++ {
		c.RecordPass("a.ts", 100*time.Millisecond, 2, nil)
	}
	c.RecordRule("template-banana-in-box", time.Millisecond, 2, nil)

	e := NewExporter(c)
	var buf bytes.Buffer
	if err := e.WriteReport(&buf); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Total Passes:", "Latency", "=== By Rule ===", "template-banana-in-box:"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("report should contain %q", want)
		}
	}
	t.Log(buf.String())
}

func TestExporter_ExportJSON(t *testing.T) {
	c := NewCollector()
	c.Record(PassEvent{
		ID:           "test",
		Timestamp:    time.Now(),
		FailureCount: 3,
	})

	e := NewExporter(c)
	path := filepath.Join(t.TempDir(), "nested", "metrics.json")

	if err := e.ExportJSON(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatal(err)
	}

	if len(report.Events) != 1 {
		t.Errorf("expected 1 event, got %d", len(report.Events))
	}
	if report.Stats.TotalFailures != 3 {
		t.Errorf("expected 3 failures, got %d", report.Stats.TotalFailures)
	}
}

func TestExporter_WriteCSV(t *testing.T) {
	c := NewCollector()
	c.Record(PassEvent{
		ID:           "test-1",
		Timestamp:    time.Now(),
		Identifier:   "src/a,b.ts",
		FailureCount: 3,
		Error:        `bad "thing"`,
	})

	e := NewExporter(c)
	var buf bytes.Buffer
	if err := e.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	csv := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("id,timestamp,identifier")) {
		t.Error("CSV should have header")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"src/a,b.ts"`)) {
		t.Error("CSV should quote identifiers with commas")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"bad ""thing"""`)) {
		t.Error("CSV should double embedded quotes")
	}
	t.Log(csv)
}
