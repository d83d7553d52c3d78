package rules

import (
	"fmt"
	"strings"

	"github.com/chris-regnier/nglint/internal/ast"
	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/ng"
	"github.com/chris-regnier/nglint/internal/parse"
)

// ClassSuffix requires classes carrying the Target role to end with one of
// Suffixes, or with Default when none are configured.
//
// Message receives, in order: class name and the accepted suffixes.
type ClassSuffix struct {
	ID       string
	Target   ng.Role
	Suffixes []string
	Default  string
	Message  string
}

func (r *ClassSuffix) Name() string { return r.ID }

func (r *ClassSuffix) suffixes() []string {
	if len(r.Suffixes) == 0 {
		return []string{r.Default}
	}
	return r.Suffixes
}

func (r *ClassSuffix) Apply(tree *parse.Tree) ([]lint.Failure, error) {
	src := tree.Unit.Text
	suffixes := r.suffixes()

	var w *ng.Walker
	check := func(class, _ *ast.Node) {
		name := class.ChildByField("name")
		if name == nil {
			return
		}
		className := name.Text(src)
		for _, s := range suffixes {
			if strings.HasSuffix(className, s) {
				return
			}
		}
		w.ReportNode(name, fmt.Sprintf(r.Message, className, strings.Join(suffixes, `" or "`)))
	}

	var hooks ng.Hooks
	switch r.Target {
	case ng.Component:
		hooks.Component = check
	case ng.Directive:
		hooks.Directive = check
	case ng.Pipe:
		hooks.Pipe = check
	}
	w = ng.NewWalker(r.ID, tree, hooks)
	return w.Run(), nil
}
