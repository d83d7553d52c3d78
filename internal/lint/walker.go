package lint

import (
	"github.com/chris-regnier/nglint/internal/ast"
	"github.com/chris-regnier/nglint/internal/source"
)

// Action tells the Walker whether to descend into a node's children after
// its handlers ran.
type Action int

const (
	// Descend continues into the children.
	Descend Action = iota
	// Skip suppresses traversal of the subtree.
	Skip
)

// VisitFunc handles one node kind.
type VisitFunc func(n *ast.Node) Action

// ExitFunc runs after a node's subtree has been traversed.
type ExitFunc func(n *ast.Node)

// Walker is a depth-first, pre-order traversal with a per-kind dispatch
// table. Kinds without handlers are descended into without side effects.
// A Walker serves one rule over one Unit and is not safe for concurrent
// use.
type Walker struct {
	rule     string
	unit     *source.Unit
	handlers map[string][]VisitFunc
	exits    map[string][]ExitFunc
	failures []Failure
}

// NewWalker returns a Walker reporting as ruleName against unit.
func NewWalker(ruleName string, unit *source.Unit) *Walker {
	return &Walker{
		rule:     ruleName,
		unit:     unit,
		handlers: make(map[string][]VisitFunc),
		exits:    make(map[string][]ExitFunc),
	}
}

// RuleName returns the name failures are tagged with.
func (w *Walker) RuleName() string { return w.rule }

// Unit returns the source unit being walked.
func (w *Walker) Unit() *source.Unit { return w.unit }

// Handle registers fn for nodes of kind. Several handlers may be registered
// for one kind; they run in registration order and the subtree is skipped
// if any of them returns Skip.
func (w *Walker) Handle(kind string, fn VisitFunc) {
	w.handlers[kind] = append(w.handlers[kind], fn)
}

// HandleExit registers fn to run after the subtree of every node of kind.
// Exit handlers run even when the subtree was skipped.
func (w *Walker) HandleExit(kind string, fn ExitFunc) {
	w.exits[kind] = append(w.exits[kind], fn)
}

// Walk traverses root with a fresh failure buffer and returns the failures
// reported during this traversal.
func (w *Walker) Walk(root *ast.Node) []Failure {
	w.failures = nil
	w.Visit(root)
	return w.failures
}

// Visit dispatches n to its handlers and then descends into its children
// unless a handler asked to skip.
func (w *Walker) Visit(n *ast.Node) {
	if n == nil {
		return
	}
	action := Descend
	for _, fn := range w.handlers[n.Kind] {
		if fn(n) == Skip {
			action = Skip
		}
	}
	if action == Descend {
		w.VisitChildren(n)
	}
	for _, fn := range w.exits[n.Kind] {
		fn(n)
	}
}

// VisitChildren visits n's children in source order.
func (w *Walker) VisitChildren(n *ast.Node) {
	for _, c := range n.Children {
		w.Visit(c)
	}
}

// Failures returns the failures reported so far in the current traversal.
func (w *Walker) Failures() []Failure {
	return w.failures
}

// Report records a failure at span.
func (w *Walker) Report(span source.Span, message string) {
	w.ReportWithFix(span, message, nil)
}

// ReportWithFix records a failure carrying an autofix.
func (w *Walker) ReportWithFix(span source.Span, message string, fix *Fix) {
	w.failures = append(w.failures, Failure{
		FileName: w.unit.Identifier,
		RuleName: w.rule,
		Message:  message,
		Span:     span,
		Fix:      fix,
	})
}

// ReportNode records a failure spanning a host node.
func (w *Walker) ReportNode(n *ast.Node, message string) {
	w.Report(w.unit.Span(n.Start, n.End), message)
}

// ReportRange records a failure spanning absolute offsets [start, end).
func (w *Walker) ReportRange(start, end int, message string) {
	w.Report(w.unit.Span(start, end), message)
}
