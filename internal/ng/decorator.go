package ng

import (
	"github.com/chris-regnier/nglint/internal/ast"
)

// Decorators returns the decorators applied to n in source order. It
// covers decorators held by n itself, by an enclosing export statement
// (`@Component(...) export class Foo`) and, for class members, decorators
// the grammar places as preceding siblings in the class body.
func Decorators(n *ast.Node) []*ast.Node {
	if n == nil {
		return nil
	}
	var out []*ast.Node
	if p := n.Parent; p != nil && p.Kind == "export_statement" {
		out = append(out, p.ChildrenByKind("decorator")...)
	}
	if p := n.Parent; p != nil && p.Kind == "class_body" {
		var siblings []*ast.Node
		for s := n.PrevSibling(); s != nil && s.Kind == "decorator"; s = s.PrevSibling() {
			siblings = append(siblings, s)
		}
		for i := len(siblings) - 1; i >= 0; i-- {
			out = append(out, siblings[i])
		}
	}
	return append(out, n.ChildrenByKind("decorator")...)
}

// callee returns the expression after '@'.
func callee(dec *ast.Node) *ast.Node {
	if dec == nil {
		return nil
	}
	named := dec.NamedChildren()
	if len(named) == 0 {
		return nil
	}
	return named[0]
}

// DecoratorName returns the name a decorator is invoked by: `Input` for
// `@Input()`, `@Input` and `@core.Input()`.
func DecoratorName(dec *ast.Node, src string) string {
	expr := callee(dec)
	if expr != nil && expr.Kind == "call_expression" {
		expr = expr.ChildByField("function")
	}
	if expr == nil {
		return ""
	}
	switch expr.Kind {
	case "identifier":
		return expr.Text(src)
	case "member_expression":
		return expr.ChildByField("property").Text(src)
	}
	return ""
}

// RoleOf classifies a decorator node.
func RoleOf(dec *ast.Node, src string) Role {
	return Classify(DecoratorName(dec, src))
}

// DecoratorArgs returns the argument expressions of a decorator call, or
// nil for a bare `@Name`.
func DecoratorArgs(dec *ast.Node) []*ast.Node {
	expr := callee(dec)
	if expr == nil || expr.Kind != "call_expression" {
		return nil
	}
	return expr.ChildByField("arguments").NamedChildren()
}

// ObjectArg returns the first object-literal argument of a decorator.
func ObjectArg(dec *ast.Node) *ast.Node {
	for _, arg := range DecoratorArgs(dec) {
		if arg.Kind == "object" {
			return arg
		}
	}
	return nil
}

// StringArgs returns the literal string arguments of a decorator.
func StringArgs(dec *ast.Node, src string) []string {
	var out []string
	for _, arg := range DecoratorArgs(dec) {
		if s, ok := StringValue(arg, src); ok {
			out = append(out, s)
		}
	}
	return out
}

// Properties returns the key/value pairs of an object literal.
func Properties(obj *ast.Node) []*ast.Node {
	return obj.ChildrenByKind("pair")
}

// PropertyKey returns the key of a pair as written, without quotes.
func PropertyKey(pair *ast.Node, src string) string {
	key := pair.ChildByField("key")
	if key == nil {
		return ""
	}
	if s, ok := StringValue(key, src); ok {
		return s
	}
	return key.Text(src)
}

// Property returns the pair of obj whose key is name.
func Property(obj *ast.Node, name, src string) *ast.Node {
	for _, pair := range Properties(obj) {
		if PropertyKey(pair, src) == name {
			return pair
		}
	}
	return nil
}

// PropertyValue returns the value expression of the pair named name.
func PropertyValue(obj *ast.Node, name, src string) *ast.Node {
	return Property(obj, name, src).ChildByField("value")
}

// StringValue returns the content of a string literal or of a template
// literal without substitutions. The content is the raw source text
// between the delimiters; escapes are not interpreted so offsets into it
// map one to one onto the host text.
func StringValue(n *ast.Node, src string) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind {
	case "string":
	case "template_string":
		if n.FirstChildOfKind("template_substitution") != nil {
			return "", false
		}
	default:
		return "", false
	}
	if n.End-n.Start < 2 {
		return "", false
	}
	return src[StringContentStart(n) : n.End-1], true
}

// StringContentStart returns the absolute offset of the first content byte
// of a string literal, just past its opening quote or backtick.
func StringContentStart(n *ast.Node) int {
	return n.Start + 1
}

// StringElements returns the string literals of an array literal.
func StringElements(array *ast.Node) []*ast.Node {
	if array == nil || array.Kind != "array" {
		return nil
	}
	var out []*ast.Node
	for _, el := range array.NamedChildren() {
		if el.Kind == "string" || el.Kind == "template_string" {
			out = append(out, el)
		}
	}
	return out
}

// ClassName returns the identifier of a class declaration.
func ClassName(class *ast.Node, src string) string {
	return class.ChildByField("name").Text(src)
}

// MemberName returns the declared name of a class member or parameter.
func MemberName(member *ast.Node, src string) string {
	if name := member.ChildByField("name"); name != nil {
		return name.Text(src)
	}
	if pattern := member.ChildByField("pattern"); pattern != nil {
		return pattern.Text(src)
	}
	return ""
}
