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

// Validator is a predicate over one selector together with a description
// of what it expects, used in messages.
type Validator struct {
	Expect string
	Valid  func(sel Selector) bool
}

// Selector is one comma-separated part of a selector string, split into
// its element name and attribute names.
type Selector struct {
	Raw        string
	Element    string
	Attributes []string
}

var (
	selectorAttr = regexp.MustCompile(`\[([^\]=~|^$*]+)[^\]]*\]`)
	kebabCase    = regexp.MustCompile(`^[a-z][a-z0-9]*(?:-[a-z0-9]+)+$`)
	camelCase    = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
)

// ParseSelectors splits a selector string on commas.
func ParseSelectors(s string) []Selector {
	var out []Selector
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sel := Selector{Raw: part}
		end := strings.IndexAny(part, "[.:")
		if end < 0 {
			end = len(part)
		}
		sel.Element = part[:end]
		for _, m := range selectorAttr.FindAllStringSubmatch(part, -1) {
			sel.Attributes = append(sel.Attributes, strings.TrimSpace(m[1]))
		}
		out = append(out, sel)
	}
	return out
}

// Names returns the names a naming convention applies to: the element
// name when present, the attribute names otherwise.
func (s Selector) Names() []string {
	if s.Element != "" {
		return []string{s.Element}
	}
	return s.Attributes
}

func everyName(s Selector, fn func(string) bool) bool {
	names := s.Names()
	if len(names) == 0 {
		return false
	}
	for _, n := range names {
		if !fn(n) {
			return false
		}
	}
	return true
}

// Attribute accepts `[name]` style selectors.
var Attribute = Validator{
	Expect: "an attribute selector",
	Valid:  func(s Selector) bool { return s.Element == "" && len(s.Attributes) > 0 },
}

// Element accepts bare element selectors.
var Element = Validator{
	Expect: "an element selector",
	Valid:  func(s Selector) bool { return s.Element != "" },
}

// KebabCase requires names like `app-foo`, with at least one hyphen.
var KebabCase = Validator{
	Expect: "kebab-case",
	Valid:  func(s Selector) bool { return everyName(s, kebabCase.MatchString) },
}

// CamelCase requires names like `appFoo`; brackets are ignored.
var CamelCase = Validator{
	Expect: "camelCase",
	Valid:  func(s Selector) bool { return everyName(s, camelCase.MatchString) },
}

// Prefix requires names to start with p followed by a hyphen or an upper
// case letter.
func Prefix(p string) Validator {
	return AnyPrefix(p)
}

// AnyPrefix accepts names starting with one of prefixes.
func AnyPrefix(prefixes ...string) Validator {
	return Validator{
		Expect: fmt.Sprintf("prefixed by %q", strings.Join(prefixes, `" or "`)),
		Valid: func(s Selector) bool {
			return everyName(s, func(name string) bool {
				for _, p := range prefixes {
					if hasPrefix(name, p) {
						return true
					}
				}
				return false
			})
		},
	}
}

func hasPrefix(name, prefix string) bool {
	if !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
		return false
	}
	next := name[len(prefix)]
	return next == '-' || (next >= 'A' && next <= 'Z')
}

// All combines validators; every one must pass.
func All(validators ...Validator) Validator {
	expects := make([]string, 0, len(validators))
	for _, v := range validators {
		expects = append(expects, v.Expect)
	}
	return Validator{
		Expect: strings.Join(expects, ", "),
		Valid: func(s Selector) bool {
			for _, v := range validators {
				if !v.Valid(s) {
					return false
				}
			}
			return true
		},
	}
}

// SelectorRule validates the selector of component or directive
// decorators. Target None applies to both.
//
// Message receives, in order: class name, selector and the expectation.
type SelectorRule struct {
	ID        string
	Target    ng.Role
	Validator Validator
	Message   string
}

func (r *SelectorRule) Name() string { return r.ID }

func (r *SelectorRule) Apply(tree *parse.Tree) ([]lint.Failure, error) {
	src := tree.Unit.Text
	var w *ng.Walker
	check := func(class, dec *ast.Node) {
		value := ng.PropertyValue(ng.ObjectArg(dec), "selector", src)
		selector, ok := ng.StringValue(value, src)
		if !ok {
			return
		}
		for _, sel := range ParseSelectors(selector) {
			if !r.Validator.Valid(sel) {
				w.ReportNode(value, fmt.Sprintf(r.Message, ng.ClassName(class, src), selector, r.Validator.Expect))
				return
			}
		}
	}

	var hooks ng.Hooks
	if r.Target == ng.None || r.Target == ng.Component {
		hooks.Component = check
	}
	if r.Target == ng.None || r.Target == ng.Directive {
		hooks.Directive = check
	}
	w = ng.NewWalker(r.ID, tree, hooks)
	return w.Run(), nil
}

// selectorType maps the "element"/"attribute" option to a validator.
func selectorType(name string) (Validator, error) {
	switch name {
	case "element":
		return Element, nil
	case "attribute":
		return Attribute, nil
	}
	return Validator{}, fmt.Errorf("unknown selector type %q (want element or attribute)", name)
}

// selectorStyle maps the naming style option to a validator.
func selectorStyle(name string) (Validator, error) {
	switch name {
	case "kebab-case":
		return KebabCase, nil
	case "camelCase":
		return CamelCase, nil
	}
	return Validator{}, fmt.Errorf("unknown selector style %q (want kebab-case or camelCase)", name)
}

// splitPrefixes accepts both ["app", "my"] and "app|my".
func splitPrefixes(values []string) []string {
	var out []string
	for _, v := range values {
		for _, p := range strings.Split(v, "|") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
