package ng

import (
	"github.com/chris-regnier/nglint/internal/ast"
	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/source"
)

// TemplateContext is the host-side context of a template being walked.
type TemplateContext struct {
	Class      *ast.Node
	ClassName  string
	Decorator  *ast.Node
	Text       string
	Translator source.Translator
}

// TemplateVisitFunc handles one template node kind.
type TemplateVisitFunc func(tw *TemplateWalker, n *ast.Node) lint.Action

// TemplateWalker traverses a template-dialect tree. Offsets of template
// nodes are relative to Context.Text; reports are translated into the host
// Unit and recorded on the host walker.
type TemplateWalker struct {
	Context TemplateContext

	host     *Walker
	handlers map[string][]TemplateVisitFunc
}

// Visit dispatches n and descends unless a handler returns Skip.
func (tw *TemplateWalker) Visit(n *ast.Node) {
	if n == nil {
		return
	}
	action := lint.Descend
	for _, fn := range tw.handlers[n.Kind] {
		if fn(tw, n) == lint.Skip {
			action = lint.Skip
		}
	}
	if action == lint.Skip {
		return
	}
	for _, c := range n.Children {
		tw.Visit(c)
	}
}

// Text returns the template text of n.
func (tw *TemplateWalker) Text(n *ast.Node) string {
	return n.Text(tw.Context.Text)
}

// Report records a failure at the template-relative range [relStart,
// relEnd). A range that falls outside the host text panics with a
// *source.OffsetTranslationError, which the Linter reports as a rule error.
func (tw *TemplateWalker) Report(relStart, relEnd int, message string) {
	tw.ReportWithFix(relStart, relEnd, message, nil)
}

// ReportNode records a failure spanning a template node.
func (tw *TemplateWalker) ReportNode(n *ast.Node, message string) {
	tw.Report(n.Start, n.End, message)
}

// Edit is a replacement of the template-relative range [Start, End).
type Edit struct {
	Start int
	End   int
	Text  string
}

// ReportWithFix records a failure whose edits are expressed in
// template-relative offsets.
func (tw *TemplateWalker) ReportWithFix(relStart, relEnd int, message string, edits []Edit) {
	t := tw.Context.Translator
	span, err := t.Span(relStart, relEnd)
	if err != nil {
		panic(err)
	}

	var fix *lint.Fix
	if len(edits) > 0 {
		fix = &lint.Fix{Replacements: make([]lint.Replacement, 0, len(edits))}
		for _, e := range edits {
			s, err := t.Span(e.Start, e.End)
			if err != nil {
				panic(err)
			}
			fix.Replacements = append(fix.Replacements, lint.Replacement{Span: s, Text: e.Text})
		}
	}
	tw.host.ReportWithFix(span, message, fix)
}
