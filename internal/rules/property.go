package rules

import (
	"fmt"
	"strings"

	"github.com/chris-regnier/nglint/internal/ast"
	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/ng"
	"github.com/chris-regnier/nglint/internal/parse"
)

// PropertyPolicy flags a metadata property of a class decorator that
// should be expressed as per-member decorators instead.
//
// Message receives, in order: class name, decorator name, property name,
// replacement decorator and the members the property lists.
type PropertyPolicy struct {
	ID          string
	Decorators  []string
	Property    string
	Replacement string
	Message     string
}

func (p *PropertyPolicy) Name() string { return p.ID }

func (p *PropertyPolicy) applies(dec string) bool {
	for _, d := range p.Decorators {
		if d == dec {
			return true
		}
	}
	return false
}

func (p *PropertyPolicy) Apply(tree *parse.Tree) ([]lint.Failure, error) {
	src := tree.Unit.Text
	var w *ng.Walker
	check := func(class, dec *ast.Node) {
		name := ng.DecoratorName(dec, src)
		if !p.applies(name) {
			return
		}
		pair := ng.Property(ng.ObjectArg(dec), p.Property, src)
		if pair == nil {
			return
		}
		members := strings.Join(listedMembers(pair.ChildByField("value"), src), ", ")
		w.ReportNode(pair, fmt.Sprintf(p.Message, ng.ClassName(class, src), name, p.Property, p.Replacement, members))
	}
	w = ng.NewWalker(p.ID, tree, ng.Hooks{Component: check, Directive: check, Pipe: check})
	return w.Run(), nil
}

// listedMembers returns the member names a metadata property refers to:
// array elements (`'name: alias'` yields name) or object keys.
func listedMembers(value *ast.Node, src string) []string {
	if value == nil {
		return nil
	}
	var out []string
	switch value.Kind {
	case "array":
		for _, el := range ng.StringElements(value) {
			s, _ := ng.StringValue(el, src)
			name, _, _ := strings.Cut(s, ":")
			out = append(out, strings.TrimSpace(name))
		}
	case "object":
		for _, pair := range ng.Properties(value) {
			out = append(out, ng.PropertyKey(pair, src))
		}
	}
	return out
}
