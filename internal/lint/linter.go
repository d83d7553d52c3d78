package lint

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/chris-regnier/nglint/internal/parse"
)

var lintTracer = otel.Tracer("github.com/chris-regnier/nglint/internal/lint")

// Formatter renders failures into a display or wire format.
type Formatter interface {
	Format(failures []Failure) (string, error)
}

type jsonFormatter struct{}

func (jsonFormatter) Format(failures []Failure) (string, error) {
	b, err := MarshalFailures(failures)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Recorder receives per-pass and per-rule measurements.
type Recorder interface {
	RecordRule(rule string, d time.Duration, failures int, err error)
	RecordPass(identifier string, d time.Duration, failures int, err error)
}

// Result is a snapshot of the accumulated failures.
type Result struct {
	FailureCount int
	Failures     []Failure
	Output       string
}

// Option configures a Linter.
type Option func(*Linter)

// WithFormatter sets the formatter used by Result. The default is JSON.
func WithFormatter(f Formatter) Option {
	return func(l *Linter) { l.formatter = f }
}

// WithIsolation selects how a failing rule is handled. When isolated (the
// default) the error becomes a synthetic failure of that rule and the pass
// continues; otherwise the whole pass fails.
func WithIsolation(isolate bool) Option {
	return func(l *Linter) { l.isolate = isolate }
}

// WithParallel applies up to n rules concurrently. Failures are still
// merged in RuleSet order.
func WithParallel(n int) Option {
	return func(l *Linter) { l.parallel = n }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(l *Linter) { l.recorder = r }
}

// Linter runs rule sets over sources and accumulates their failures until
// Reset. A Linter owns its failure list and must not be shared between
// concurrent callers.
type Linter struct {
	resolver  Resolver
	formatter Formatter
	isolate   bool
	parallel  int
	recorder  Recorder

	prepared map[string][]Rule
	failures []Failure
	seen     map[Key]struct{}
}

// NewLinter returns an idle Linter resolving rule ids through resolver.
func NewLinter(resolver Resolver, opts ...Option) *Linter {
	l := &Linter{
		resolver:  resolver,
		formatter: jsonFormatter{},
		isolate:   true,
		parallel:  1,
		prepared:  make(map[string][]Rule),
		seen:      make(map[Key]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lint parses text and applies every enabled rule of rs in order, merging
// the failures into the accumulated list while skipping duplicates.
func (l *Linter) Lint(ctx context.Context, identifier, text string, rs *RuleSet) error {
	ctx, span := lintTracer.Start(ctx, "lint pass")
	defer span.End()
	span.SetAttributes(
		attribute.String("nglint.identifier", identifier),
		attribute.Int("nglint.rules", len(rs.Enabled())),
	)

	start := time.Now()
	added, err := l.lint(ctx, identifier, text, rs)
	if l.recorder != nil {
		l.recorder.RecordPass(identifier, time.Since(start), added, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("nglint.failures", added))
	return nil
}

func (l *Linter) lint(ctx context.Context, identifier, text string, rs *RuleSet) (int, error) {
	tree, err := parse.Parse(ctx, identifier, text)
	if err != nil {
		return 0, err
	}

	rules, err := l.rules(rs)
	if err != nil {
		return 0, err
	}

	results := make([][]Failure, len(rules))
	errs := make([]error, len(rules))
	if l.parallel > 1 && len(rules) > 1 {
		var g errgroup.Group
		g.SetLimit(l.parallel)
		for i, r := range rules {
			g.Go(func() error {
				results[i], errs[i] = l.apply(ctx, r, tree)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, r := range rules {
			results[i], errs[i] = l.apply(ctx, r, tree)
		}
	}

	// Strict mode discards the whole pass on the first failing rule.
	if !l.isolate {
		for _, err := range errs {
			if err != nil {
				return 0, err
			}
		}
	}

	added := 0
	for i, r := range rules {
		failures := results[i]
		if errs[i] != nil {
			slog.Warn("rule failed", "rule", r.Name(), "file", identifier, "err", errs[i])
			failures = []Failure{{
				FileName: identifier,
				RuleName: r.Name(),
				Message:  errs[i].Error(),
				Span:     tree.Unit.Span(0, 0),
			}}
		}
		added += l.merge(failures)
	}
	return added, nil
}

// apply runs one rule, converting panics into RuleApplicationErrors.
func (l *Linter) apply(ctx context.Context, r Rule, tree *parse.Tree) (failures []Failure, err error) {
	_, span := lintTracer.Start(ctx, "rule apply")
	span.SetAttributes(attribute.String("nglint.rule", r.Name()))
	start := time.Now()

	defer func() {
		if v := recover(); v != nil {
			failures, err = nil, &RuleApplicationError{Rule: r.Name(), Err: recovered(v)}
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if l.recorder != nil {
			l.recorder.RecordRule(r.Name(), time.Since(start), len(failures), err)
		}
		span.End()
	}()

	failures, err = r.Apply(tree)
	if err != nil {
		return nil, &RuleApplicationError{Rule: r.Name(), Err: err}
	}
	return failures, nil
}

// rules resolves rs once per distinct configuration.
func (l *Linter) rules(rs *RuleSet) ([]Rule, error) {
	data, err := rs.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("fingerprinting rule set: %w", err)
	}
	key := string(data)
	if rules, ok := l.prepared[key]; ok {
		return rules, nil
	}
	rules, err := l.resolver.Instantiate(rs)
	if err != nil {
		return nil, err
	}
	l.prepared[key] = rules
	return rules, nil
}

func (l *Linter) merge(failures []Failure) int {
	added := 0
	for _, f := range failures {
		k := f.Key()
		if _, dup := l.seen[k]; dup {
			continue
		}
		l.seen[k] = struct{}{}
		l.failures = append(l.failures, f)
		added++
	}
	return added
}

// Result returns the accumulated failures in first-seen order together
// with their formatted rendering. It does not change the Linter's state.
func (l *Linter) Result() (Result, error) {
	failures := make([]Failure, len(l.failures))
	copy(failures, l.failures)

	out, err := l.formatter.Format(failures)
	if err != nil {
		return Result{}, fmt.Errorf("formatting failures: %w", err)
	}
	return Result{
		FailureCount: len(failures),
		Failures:     failures,
		Output:       out,
	}, nil
}

// HasResults reports whether failures have accumulated since the last
// Reset.
func (l *Linter) HasResults() bool {
	return len(l.failures) > 0
}

// Reset clears the accumulated failures.
func (l *Linter) Reset() {
	l.failures = nil
	l.seen = make(map[Key]struct{})
}
