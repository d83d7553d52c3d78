package ng

import (
	"context"
	"log/slog"

	"github.com/chris-regnier/nglint/internal/ast"
	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/parse"
	"github.com/chris-regnier/nglint/internal/source"
)

// ClassHook is invoked for a class carrying a class-role decorator.
type ClassHook func(class, decorator *ast.Node)

// MemberHook is invoked for a class member carrying an Input or Output
// decorator. args holds the decorator's string arguments, the rename if
// any.
type MemberHook func(member, decorator *ast.Node, args []string)

// Hooks are the role-specific visitors of a Walker. Nil hooks are no-ops.
type Hooks struct {
	Component ClassHook
	Directive ClassHook
	Pipe      ClassHook
	Input     MemberHook
	Output    MemberHook
}

var classKinds = []string{"class_declaration", "abstract_class_declaration"}

var memberKinds = map[string]bool{
	"public_field_definition": true,
	"method_definition":       true,
}

// Walker is a lint.Walker that recognises role decorators and descends
// into inline component templates.
type Walker struct {
	*lint.Walker

	tree     *parse.Tree
	hooks    Hooks
	template map[string][]TemplateVisitFunc
	classes  []*ast.Node
}

// NewWalker returns a Walker for one application of ruleName to tree.
func NewWalker(ruleName string, tree *parse.Tree, hooks Hooks) *Walker {
	w := &Walker{
		Walker:   lint.NewWalker(ruleName, tree.Unit),
		tree:     tree,
		hooks:    hooks,
		template: make(map[string][]TemplateVisitFunc),
	}
	for _, kind := range classKinds {
		w.Handle(kind, w.visitClass)
		w.HandleExit(kind, w.leaveClass)
	}
	return w
}

// SetHooks replaces the role hooks. Rules whose hooks report through the
// walker itself build it first and install the hooks afterwards.
func (w *Walker) SetHooks(h Hooks) { w.hooks = h }

// Source returns the host text.
func (w *Walker) Source() string { return w.tree.Unit.Text }

// Tree returns the tree being walked.
func (w *Walker) Tree() *parse.Tree { return w.tree }

// HandleTemplate registers fn for template nodes of kind. Templates are
// only parsed when at least one template handler is registered.
func (w *Walker) HandleTemplate(kind string, fn TemplateVisitFunc) {
	w.template[kind] = append(w.template[kind], fn)
}

// CurrentClass returns the innermost class being visited.
func (w *Walker) CurrentClass() *ast.Node {
	if len(w.classes) == 0 {
		return nil
	}
	return w.classes[len(w.classes)-1]
}

// Run walks the whole tree and returns the failures.
func (w *Walker) Run() []lint.Failure {
	w.classes = w.classes[:0]
	return w.Walk(w.tree.Root)
}

func (w *Walker) visitClass(class *ast.Node) lint.Action {
	w.classes = append(w.classes, class)
	src := w.Source()

	for _, dec := range Decorators(class) {
		role := RoleOf(dec, src)
		switch role {
		case Component:
			if w.hooks.Component != nil {
				w.hooks.Component(class, dec)
			}
			w.visitTemplate(class, dec)
		case Directive:
			if w.hooks.Directive != nil {
				w.hooks.Directive(class, dec)
			}
		case Pipe:
			if w.hooks.Pipe != nil {
				w.hooks.Pipe(class, dec)
			}
		}
	}

	if w.hooks.Input != nil || w.hooks.Output != nil {
		w.visitMembers(class)
	}
	return lint.Descend
}

func (w *Walker) leaveClass(*ast.Node) {
	if len(w.classes) > 0 {
		w.classes = w.classes[:len(w.classes)-1]
	}
}

func (w *Walker) visitMembers(class *ast.Node) {
	body := class.ChildByField("body")
	if body == nil {
		return
	}
	src := w.Source()
	for _, member := range body.Children {
		if !memberKinds[member.Kind] {
			continue
		}
		for _, dec := range Decorators(member) {
			switch RoleOf(dec, src) {
			case Input:
				if w.hooks.Input != nil {
					w.hooks.Input(member, dec, StringArgs(dec, src))
				}
			case Output:
				if w.hooks.Output != nil {
					w.hooks.Output(member, dec, StringArgs(dec, src))
				}
			}
		}
	}
}

// visitTemplate parses the inline template of a component decorator and
// walks it with the registered template handlers.
func (w *Walker) visitTemplate(class, dec *ast.Node) {
	if len(w.template) == 0 {
		return
	}
	src := w.Source()
	value := PropertyValue(ObjectArg(dec), "template", src)
	text, ok := StringValue(value, src)
	if !ok {
		return
	}

	root, err := parse.ParseTemplate(context.Background(), text)
	if err != nil {
		slog.Debug("skipping unparsable template", "rule", w.RuleName(), "class", ClassName(class, src), "err", err)
		return
	}

	tw := &TemplateWalker{
		host:     w,
		handlers: w.template,
		Context: TemplateContext{
			Class:      class,
			ClassName:  ClassName(class, src),
			Decorator:  dec,
			Text:       text,
			Translator: source.NewTranslator(w.tree.Unit, StringContentStart(value)),
		},
	}
	tw.Visit(root)
}
