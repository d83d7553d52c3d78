package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/chris-regnier/nglint/internal/metrics"

// Instruments records lint events on OpenTelemetry instruments.
type Instruments struct {
	passes     metric.Int64Counter
	failures   metric.Int64Counter
	ruleErrors metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewInstruments creates the nglint instruments on meter. A nil meter uses
// the global meter provider.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	passes, err := meter.Int64Counter("nglint.lint.passes",
		metric.WithDescription("Lint passes run"))
	if err != nil {
		return nil, fmt.Errorf("creating passes counter: %w", err)
	}
	failures, err := meter.Int64Counter("nglint.lint.failures",
		metric.WithDescription("Failures reported by rules"))
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}
	ruleErrors, err := meter.Int64Counter("nglint.lint.rule_errors",
		metric.WithDescription("Rule applications that failed"))
	if err != nil {
		return nil, fmt.Errorf("creating rule errors counter: %w", err)
	}
	duration, err := meter.Float64Histogram("nglint.lint.duration",
		metric.WithDescription("Lint pass duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return &Instruments{
		passes:     passes,
		failures:   failures,
		ruleErrors: ruleErrors,
		duration:   duration,
	}, nil
}

// RecordRule implements lint.Recorder.
func (i *Instruments) RecordRule(rule string, _ time.Duration, failures int, err error) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("rule", rule))
	if failures > 0 {
		i.failures.Add(ctx, int64(failures), attrs)
	}
	if err != nil {
		i.ruleErrors.Add(ctx, 1, attrs)
	}
}

// RecordPass implements lint.Recorder.
func (i *Instruments) RecordPass(_ string, d time.Duration, _ int, err error) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.Bool("error", err != nil))
	i.passes.Add(ctx, 1, attrs)
	i.duration.Record(ctx, float64(d.Microseconds())/1000, attrs)
}
