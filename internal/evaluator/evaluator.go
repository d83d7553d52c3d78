// Package evaluator gates a lint run through a Rego policy. The policy
// sees the failures and the configured budget and decides "pass" or
// "fail".
package evaluator

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/sarif"
)

//go:embed default.rego
var defaultPolicy string

const query = "data.nglint.gate.decision"

// Decisions returned by the default policy.
const (
	Pass = "pass"
	Fail = "fail"
)

// Verdict is the outcome of a gate evaluation.
type Verdict struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
	Failures int    `json:"failures"`
}

// Passed reports whether the gate let the run through.
func (v *Verdict) Passed() bool {
	return v.Decision == Pass
}

type Evaluator struct {
	query       rego.PreparedEvalQuery
	maxFailures int
}

// NewEvaluator creates an evaluator. If policyDir is empty, uses the default policy.
// If policyDir is set, loads all .rego files from that directory (overriding default).
func NewEvaluator(policyDir string, maxFailures int) (*Evaluator, error) {
	ctx := context.Background()

	modules := []func(*rego.Rego){
		rego.Module("default.rego", defaultPolicy),
	}

	if policyDir != "" {
		entries, err := os.ReadDir(policyDir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading policy dir: %w", err)
		}
		var custom []func(*rego.Rego)
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".rego") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(policyDir, e.Name()))
			if err != nil {
				return nil, fmt.Errorf("reading policy %s: %w", e.Name(), err)
			}
			custom = append(custom, rego.Module(e.Name(), string(data)))
		}
		// Custom policies override the default
		if len(custom) > 0 {
			modules = custom
		}
	}

	prepared, err := rego.New(append(modules, rego.Query(query))...).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing rego query: %w", err)
	}

	return &Evaluator{query: prepared, maxFailures: maxFailures}, nil
}

// Evaluate decides on failures. Each failure is presented in its wire
// shape plus a "level" derived from the rule metadata.
func (e *Evaluator) Evaluate(ctx context.Context, failures []lint.Failure, rules []lint.Metadata) (*Verdict, error) {
	input, err := e.input(failures, rules)
	if err != nil {
		return nil, err
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("evaluating rego: %w", err)
	}

	decision := Fail
	if len(results) > 0 && len(results[0].Expressions) > 0 {
		if d, ok := results[0].Expressions[0].Value.(string); ok {
			decision = d
		}
	}

	return &Verdict{
		Decision: decision,
		Reason:   fmt.Sprintf("Decision: %s based on %d failures (budget %d)", decision, len(failures), e.maxFailures),
		Failures: len(failures),
	}, nil
}

func (e *Evaluator) input(failures []lint.Failure, rules []lint.Metadata) (map[string]any, error) {
	data, err := lint.MarshalFailures(failures)
	if err != nil {
		return nil, err
	}
	var encoded []map[string]any
	if err := json.Unmarshal(data, &encoded); err != nil {
		return nil, err
	}

	levels := make(map[string]string, len(rules))
	for _, m := range rules {
		levels[m.Name] = sarif.Level(m.Type)
	}
	items := make([]any, len(encoded))
	for i, f := range encoded {
		level, ok := levels[failures[i].RuleName]
		if !ok {
			level = "warning"
		}
		f["level"] = level
		items[i] = f
	}

	return map[string]any{
		"failures":    items,
		"maxFailures": e.maxFailures,
	}, nil
}
