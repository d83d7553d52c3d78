// Package lint is the rule-engine core: AST walkers, rules, ordered rule
// sets and the Linter façade that runs rules and merges their failures.
package lint

import (
	"fmt"

	"github.com/chris-regnier/nglint/internal/parse"
)

// Rule is a named, configured policy. Rules are read-only after
// construction and may be applied to many trees, concurrently, each
// application using its own Walker.
type Rule interface {
	// Name returns the kebab-case rule identifier.
	Name() string
	// Apply runs the rule over tree and returns its failures.
	Apply(tree *parse.Tree) ([]Failure, error)
}

// RuleType groups rules for documentation.
type RuleType string

const (
	TypeFunctionality   RuleType = "functionality"
	TypeMaintainability RuleType = "maintainability"
	TypeStyle           RuleType = "style"
)

// Metadata describes a rule for listings and generated documentation.
type Metadata struct {
	Name               string   `json:"ruleName" yaml:"name"`
	Type               RuleType `json:"type" yaml:"type"`
	Description        string   `json:"description" yaml:"description"`
	Rationale          string   `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	OptionsDescription string   `json:"optionsDescription,omitempty" yaml:"options_description,omitempty"`
	OptionExamples     []string `json:"optionExamples,omitempty" yaml:"option_examples,omitempty"`
	HasFix             bool     `json:"hasFix,omitempty" yaml:"has_fix,omitempty"`
}

// Constructor builds a configured Rule from its options.
type Constructor func(opts Options) (Rule, error)

// Definition pairs a rule's metadata with its constructor.
type Definition struct {
	Metadata Metadata
	New      Constructor
}

// Resolver turns a RuleSet into configured rule instances.
type Resolver interface {
	Instantiate(rs *RuleSet) ([]Rule, error)
}

// Options is the caller-supplied configuration of one rule: either a bare
// boolean or [enabled, args...].
type Options struct {
	Enabled bool
	Args    []any
}

// Enabled returns options for a rule enabled with args.
func Enabled(args ...any) Options {
	return Options{Enabled: true, Args: args}
}

// ParseOptions interprets a decoded configuration value.
func ParseOptions(v any) (Options, error) {
	switch val := v.(type) {
	case bool:
		return Options{Enabled: val}, nil
	case []any:
		if len(val) == 0 {
			return Options{}, fmt.Errorf("empty rule configuration")
		}
		enabled, ok := val[0].(bool)
		if !ok {
			return Options{}, fmt.Errorf("first element must be a boolean, got %T", val[0])
		}
		return Options{Enabled: enabled, Args: val[1:]}, nil
	default:
		return Options{}, fmt.Errorf("unsupported rule configuration %T", v)
	}
}

// Value returns the configuration value Options was parsed from.
func (o Options) Value() any {
	if len(o.Args) == 0 {
		return o.Enabled
	}
	return append([]any{o.Enabled}, o.Args...)
}

// Strings returns the string arguments, flattening nested string lists.
func (o Options) Strings() []string {
	var out []string
	for _, a := range o.Args {
		switch v := a.(type) {
		case string:
			out = append(out, v)
		case []any:
			for _, e := range v {
				if s, ok := e.(string); ok {
					out = append(out, s)
				}
			}
		case []string:
			out = append(out, v...)
		}
	}
	return out
}

// Arg returns the i-th argument if it is a string.
func (o Options) Arg(i int) (string, bool) {
	if i < 0 || i >= len(o.Args) {
		return "", false
	}
	s, ok := o.Args[i].(string)
	return s, ok
}
