package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chris-regnier/nglint/internal/ast"
	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/ng"
	"github.com/chris-regnier/nglint/internal/parse"
)

// templateRule applies template handlers to the inline templates of
// components.
type templateRule struct {
	id       string
	handlers map[string]ng.TemplateVisitFunc
}

func (r *templateRule) Name() string { return r.id }

func (r *templateRule) Apply(tree *parse.Tree) ([]lint.Failure, error) {
	w := ng.NewWalker(r.id, tree, ng.Hooks{})
	for kind, fn := range r.handlers {
		w.HandleTemplate(kind, fn)
	}
	return w.Run(), nil
}

var autofocusAttributes = map[string]bool{
	"autofocus":        true,
	"[autofocus]":      true,
	"[attr.autofocus]": true,
}

// TemplateNoAutofocus flags the autofocus attribute and its bindings.
func TemplateNoAutofocus() lint.Rule {
	return &templateRule{id: "template-no-autofocus", handlers: map[string]ng.TemplateVisitFunc{
		"attribute_name": func(tw *ng.TemplateWalker, n *ast.Node) lint.Action {
			if autofocusAttributes[strings.ToLower(tw.Text(n))] {
				tw.ReportNode(n, fmt.Sprintf("autofocus attribute should not be used in the template of %s", tw.Context.ClassName))
			}
			return lint.Descend
		},
	}}
}

var distractingElements = map[string]bool{
	"blink":   true,
	"marquee": true,
}

// TemplateNoDistractingElements flags <marquee> and <blink>.
func TemplateNoDistractingElements() lint.Rule {
	return &templateRule{id: "template-no-distracting-elements", handlers: map[string]ng.TemplateVisitFunc{
		"start_tag": func(tw *ng.TemplateWalker, n *ast.Node) lint.Action {
			tag := n.FirstChildOfKind("tag_name")
			if tag == nil {
				return lint.Descend
			}
			name := strings.ToLower(tw.Text(tag))
			if distractingElements[name] {
				tw.ReportNode(tag, fmt.Sprintf("Avoid using <%s/> elements as they create visual accessibility issues (in %s)", name, tw.Context.ClassName))
			}
			return lint.Skip
		},
	}}
}

var bananaInBox = regexp.MustCompile(`^\(\[(.+)\]\)$`)

// TemplateBananaInBox flags `([prop])` bindings and offers `[(prop)]`.
func TemplateBananaInBox() lint.Rule {
	return &templateRule{id: "template-banana-in-box", handlers: map[string]ng.TemplateVisitFunc{
		"attribute_name": func(tw *ng.TemplateWalker, n *ast.Node) lint.Action {
			m := bananaInBox.FindStringSubmatch(tw.Text(n))
			if m == nil {
				return lint.Descend
			}
			tw.ReportWithFix(n.Start, n.End, "Invalid binding syntax. Use [(expr)] instead", []ng.Edit{
				{Start: n.Start, End: n.End, Text: "[(" + m[1] + ")]"},
			})
			return lint.Descend
		},
	}}
}

// TemplateUseTrackByFunction requires *ngFor to declare a trackBy.
func TemplateUseTrackByFunction() lint.Rule {
	return &templateRule{id: "template-use-track-by-function", handlers: map[string]ng.TemplateVisitFunc{
		"attribute": func(tw *ng.TemplateWalker, n *ast.Node) lint.Action {
			name := n.FirstChildOfKind("attribute_name")
			if name == nil || tw.Text(name) != "*ngFor" {
				return lint.Skip
			}
			var value string
			if quoted := n.FirstChildOfKind("quoted_attribute_value"); quoted != nil {
				value = tw.Text(quoted)
			} else if raw := n.FirstChildOfKind("attribute_value"); raw != nil {
				value = tw.Text(raw)
			}
			if !strings.Contains(value, "trackBy") {
				tw.ReportNode(n, "Missing trackBy function in ngFor directive")
			}
			return lint.Skip
		},
	}}
}
