package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Exporter handles exporting metrics to various formats
type Exporter struct {
	collector *Collector
}

// NewExporter creates a new metrics exporter
func NewExporter(collector *Collector) *Exporter {
	return &Exporter{collector: collector}
}

// Report is the JSON document written by ExportJSON.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Stats       AggregateStats `json:"stats"`
	Events      []PassEvent    `json:"events"`
}

// Snapshot returns the stats and most recent events.
func (e *Exporter) Snapshot(events int) Report {
	return Report{
		GeneratedAt: time.Now(),
		Stats:       e.collector.GetStats(),
		Events:      e.collector.GetRecentEvents(events),
	}
}

// ExportJSON writes metrics to a JSON file
func (e *Exporter) ExportJSON(path string) error {
	data, err := json.MarshalIndent(e.Snapshot(1000), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metrics: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// WriteReport writes a human-readable report to the given writer
func (e *Exporter) WriteReport(w io.Writer) error {
	stats := e.collector.GetStats()

	fmt.Fprintf(w, "nglint Metrics Report\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Window: %s to %s\n\n",
		stats.WindowStart.Format(time.RFC3339),
		stats.WindowEnd.Format(time.RFC3339))

	fmt.Fprintf(w, "=== Summary ===\n")
	fmt.Fprintf(w, "Total Passes:      %d\n", stats.TotalPasses)
	fmt.Fprintf(w, "Total Errors:      %d (%.1f%%)\n",
		stats.TotalErrors,
		safePercent(float64(stats.TotalErrors), float64(stats.TotalPasses)))
	fmt.Fprintf(w, "Total Failures:    %d\n", stats.TotalFailures)
	fmt.Fprintf(w, "Failures/Pass:     %.2f\n\n", stats.FailuresPerPass)

	fmt.Fprintf(w, "=== Latency ===\n")
	fmt.Fprintf(w, "Average:  %.0fms\n", stats.AvgDurationMs)
	fmt.Fprintf(w, "P50:      %.0fms\n", stats.P50DurationMs)
	fmt.Fprintf(w, "P95:      %.0fms\n", stats.P95DurationMs)
	fmt.Fprintf(w, "P99:      %.0fms\n", stats.P99DurationMs)
	fmt.Fprintf(w, "Max:      %.0fms\n\n", stats.MaxDurationMs)

	fmt.Fprintf(w, "=== Cache ===\n")
	fmt.Fprintf(w, "Hits:     %d\n", stats.CacheHits)
	fmt.Fprintf(w, "Misses:   %d\n", stats.CacheMisses)
	fmt.Fprintf(w, "Hit Rate: %.1f%%\n\n", stats.CacheHitRate*100)

	if len(stats.ByRule) > 0 {
		fmt.Fprintf(w, "=== By Rule ===\n")
		names := make([]string, 0, len(stats.ByRule))
		for name := range stats.ByRule {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s := stats.ByRule[name]
			fmt.Fprintf(w, "%s:\n", name)
			fmt.Fprintf(w, "  Applications: %d\n", s.Applications)
			fmt.Fprintf(w, "  Failures:     %d\n", s.Failures)
			fmt.Fprintf(w, "  Errors:       %d\n", s.Errors)
			fmt.Fprintf(w, "  Avg Latency:  %.0fms\n", s.AvgMs)
		}
	}

	return nil
}

// WriteCSV writes events in CSV format for external analysis
func (e *Exporter) WriteCSV(w io.Writer) error {
	events := e.collector.GetRecentEvents(e.collector.maxEvents)

	fmt.Fprintf(w, "id,timestamp,identifier,duration_ms,failure_count,cache_result,error\n")
	for _, ev := range events {
		fmt.Fprintf(w, "%s,%s,%s,%d,%d,%s,%s\n",
			ev.ID,
			ev.Timestamp.Format(time.RFC3339),
			escapeCSV(ev.Identifier),
			ev.Duration.Milliseconds(),
			ev.FailureCount,
			ev.CacheResult,
			escapeCSV(ev.Error),
		)
	}

	return nil
}

func safePercent(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return (numerator / denominator) * 100
}

func escapeCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
