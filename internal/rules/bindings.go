package rules

import (
	"fmt"
	"regexp"

	"github.com/chris-regnier/nglint/internal/ast"
	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/ng"
	"github.com/chris-regnier/nglint/internal/parse"
)

// hookRule is a rule whose behaviour is a set of role hooks.
type hookRule struct {
	id    string
	hooks func(w *ng.Walker) ng.Hooks
}

func (r *hookRule) Name() string { return r.id }

func (r *hookRule) Apply(tree *parse.Tree) ([]lint.Failure, error) {
	w := ng.NewWalker(r.id, tree, ng.Hooks{})
	w.SetHooks(r.hooks(w))
	return w.Run(), nil
}

// NoInputRename flags `@Input('alias')` unless the alias equals the
// property name or one of the directive's attribute selectors.
func NoInputRename() lint.Rule {
	return &hookRule{id: "no-input-rename", hooks: func(w *ng.Walker) ng.Hooks {
		src := w.Source()
		return ng.Hooks{Input: func(member, dec *ast.Node, args []string) {
			if len(args) == 0 {
				return
			}
			name := ng.MemberName(member, src)
			alias := args[0]
			if alias == name || selectorAttributes(w.CurrentClass(), src)[alias] {
				return
			}
			class := ng.ClassName(w.CurrentClass(), src)
			w.ReportNode(dec, fmt.Sprintf("In the class %q, the directive input property %q should not be renamed. However, you should use an alias when the directive name is also an input property, and the directive name doesn't describe the property.", class, name))
		}}
	}}
}

// selectorAttributes returns the attribute names of the class-role
// decorator selectors of class.
func selectorAttributes(class *ast.Node, src string) map[string]bool {
	out := make(map[string]bool)
	for _, dec := range ng.Decorators(class) {
		if !ng.RoleOf(dec, src).IsClassRole() {
			continue
		}
		selector, ok := ng.StringValue(ng.PropertyValue(ng.ObjectArg(dec), "selector", src), src)
		if !ok {
			continue
		}
		for _, sel := range ParseSelectors(selector) {
			for _, attr := range sel.Attributes {
				out[attr] = true
			}
		}
	}
	return out
}

// NoOutputRename flags any `@Output('alias')`.
func NoOutputRename() lint.Rule {
	return &hookRule{id: "no-output-rename", hooks: func(w *ng.Walker) ng.Hooks {
		src := w.Source()
		return ng.Hooks{Output: func(member, dec *ast.Node, args []string) {
			if len(args) == 0 || args[0] == ng.MemberName(member, src) {
				return
			}
			class := ng.ClassName(w.CurrentClass(), src)
			w.ReportNode(dec, fmt.Sprintf("In the class %q, the directive output property %q should not be renamed.", class, ng.MemberName(member, src)))
		}}
	}}
}

var onPrefix = regexp.MustCompile(`^on(?:[A-Z0-9_]|$)`)

// NoOutputOnPrefix flags outputs named `on` or `onSomething`.
func NoOutputOnPrefix() lint.Rule {
	return &hookRule{id: "no-output-on-prefix", hooks: func(w *ng.Walker) ng.Hooks {
		src := w.Source()
		return ng.Hooks{Output: func(member, dec *ast.Node, args []string) {
			name := ng.MemberName(member, src)
			if !onPrefix.MatchString(name) {
				return
			}
			class := ng.ClassName(w.CurrentClass(), src)
			w.ReportNode(member.ChildByField("name"), fmt.Sprintf("In the class %q, the output property %q should not be prefixed with on", class, name))
		}}
	}}
}

// nativeEvents are DOM event names outputs must not shadow.
var nativeEvents = map[string]bool{}

func init() {
	for _, e := range []string{
		"abort", "afterprint", "animationend", "animationiteration", "animationstart",
		"beforeprint", "beforeunload", "blur", "canplay", "canplaythrough", "change",
		"click", "contextmenu", "copy", "cut", "dblclick", "drag", "dragend", "dragenter",
		"dragleave", "dragover", "dragstart", "drop", "durationchange", "emptied", "ended",
		"error", "focus", "focusin", "focusout", "fullscreenchange", "fullscreenerror",
		"hashchange", "input", "invalid", "keydown", "keypress", "keyup", "load",
		"loadeddata", "loadedmetadata", "loadstart", "message", "mousedown", "mouseenter",
		"mouseleave", "mousemove", "mouseout", "mouseover", "mouseup", "offline", "online",
		"open", "pagehide", "pageshow", "paste", "pause", "play", "playing", "popstate",
		"progress", "ratechange", "reset", "resize", "scroll", "search", "seeked",
		"seeking", "select", "show", "stalled", "storage", "submit", "suspend",
		"timeupdate", "toggle", "touchcancel", "touchend", "touchmove", "touchstart",
		"transitionend", "unload", "volumechange", "waiting", "wheel",
	} {
		nativeEvents[e] = true
	}
}

// NoOutputNative flags outputs, or output aliases, named after native DOM
// events.
func NoOutputNative() lint.Rule {
	return &hookRule{id: "no-output-native", hooks: func(w *ng.Walker) ng.Hooks {
		src := w.Source()
		return ng.Hooks{Output: func(member, dec *ast.Node, args []string) {
			name := ng.MemberName(member, src)
			if len(args) > 0 {
				name = args[0]
			}
			if !nativeEvents[name] {
				return
			}
			class := ng.ClassName(w.CurrentClass(), src)
			w.ReportNode(member.ChildByField("name"), fmt.Sprintf("In the class %q, the output property %q should not be named or renamed as a native event", class, name))
		}}
	}}
}

// UsePipeTransformInterface requires pipes to implement PipeTransform.
func UsePipeTransformInterface() lint.Rule {
	return &hookRule{id: "use-pipe-transform-interface", hooks: func(w *ng.Walker) ng.Hooks {
		src := w.Source()
		return ng.Hooks{Pipe: func(class, dec *ast.Node) {
			if implements(class, "PipeTransform", src) {
				return
			}
			name := class.ChildByField("name")
			w.ReportNode(name, fmt.Sprintf("The %s class has the Pipe decorator, so it should implement the PipeTransform interface", name.Text(src)))
		}}
	}}
}

func implements(class *ast.Node, iface, src string) bool {
	for _, heritage := range class.ChildrenByKind("class_heritage") {
		for _, clause := range heritage.ChildrenByKind("implements_clause") {
			found := false
			clause.Walk(func(n *ast.Node) bool {
				if (n.Kind == "type_identifier" && n.Text(src) == iface) ||
					(n.Kind == "nested_type_identifier" && n.ChildByField("name").Text(src) == iface) {
					found = true
				}
				return !found
			})
			if found {
				return true
			}
		}
	}
	return false
}
