package rules

import (
	"fmt"
	"sort"

	"github.com/chris-regnier/nglint/internal/lint"
)

// Registry holds rule definitions keyed by rule id.
type Registry struct {
	defs map[string]lint.Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]lint.Definition)}
}

// Register adds a definition, keyed by its metadata name.
func (r *Registry) Register(def lint.Definition) {
	r.defs[def.Metadata.Name] = def
}

// Get retrieves a definition by rule id.
func (r *Registry) Get(name string) (lint.Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns all registered rule ids in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Metadata returns the metadata of every rule, sorted by id.
func (r *Registry) Metadata() []lint.Metadata {
	out := make([]lint.Metadata, 0, len(r.defs))
	for _, name := range r.Names() {
		out = append(out, r.defs[name].Metadata)
	}
	return out
}

// Instantiate builds the enabled rules of rs in RuleSet order.
func (r *Registry) Instantiate(rs *lint.RuleSet) ([]lint.Rule, error) {
	var out []lint.Rule
	for _, e := range rs.Enabled() {
		def, ok := r.defs[e.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", lint.ErrUnknownRule, e.ID)
		}
		rule, err := def.New(e.Options)
		if err != nil {
			return nil, fmt.Errorf("configuring rule %s: %w", e.ID, err)
		}
		out = append(out, rule)
	}
	return out, nil
}

// All returns a RuleSet enabling every registered rule with its default
// configuration, in id order. Rules that cannot be built without
// arguments are left out.
func (r *Registry) All() *lint.RuleSet {
	rs := lint.NewRuleSet()
	for _, name := range r.Names() {
		if _, err := r.defs[name].New(lint.Enabled()); err != nil {
			continue
		}
		rs.Set(name, lint.Enabled())
	}
	return rs
}
