package rules

import (
	"fmt"

	"github.com/chris-regnier/nglint/internal/ast"
	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/ng"
	"github.com/chris-regnier/nglint/internal/parse"
)

// ParameterPolicy flags constructor parameters carrying a disallowed
// decorator.
//
// Message receives, in order: class name, decorator name, parameter name
// and the preferred alternative.
type ParameterPolicy struct {
	ID        string
	Decorator string
	Preferred string
	Message   string
}

func (p *ParameterPolicy) Name() string { return p.ID }

func (p *ParameterPolicy) Apply(tree *parse.Tree) ([]lint.Failure, error) {
	src := tree.Unit.Text
	w := lint.NewWalker(p.ID, tree.Unit)

	check := func(param *ast.Node) lint.Action {
		if !isConstructorParameter(param, src) {
			return lint.Descend
		}
		for _, dec := range ng.Decorators(param) {
			if ng.DecoratorName(dec, src) != p.Decorator {
				continue
			}
			class := enclosingClass(param)
			w.ReportNode(dec, fmt.Sprintf(p.Message, ng.ClassName(class, src), p.Decorator, ng.MemberName(param, src), p.Preferred))
		}
		return lint.Descend
	}
	w.Handle("required_parameter", check)
	w.Handle("optional_parameter", check)
	return w.Walk(tree.Root), nil
}

func isConstructorParameter(param *ast.Node, src string) bool {
	method := param.Ancestor("method_definition")
	if method == nil || method.ChildByField("name").Text(src) != "constructor" {
		return false
	}
	// Parameters of functions nested in the constructor body do not count.
	params := param.Ancestor("formal_parameters")
	return params != nil && params.Parent == method
}

func enclosingClass(n *ast.Node) *ast.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == "class_declaration" || p.Kind == "abstract_class_declaration" {
			return p
		}
	}
	return nil
}
