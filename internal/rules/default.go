package rules

import (
	"fmt"
	"strings"

	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/ng"
)

const (
	propertyMessage  = "Use @%[4]s rather than the %[3]q metadata property of @%[2]s in class %[1]s (%[5]s)"
	parameterMessage = "In the constructor of class %[1]q, the parameter %[3]q uses the @%[2]s decorator, which is considered a bad practice. Please consider %[4]s instead"
	selectorMessage  = "The selector of the %[4]s %[1]q should be %[3]s, got %[2]q"
	suffixMessage    = "The name of the class %[1]s should end with the suffix \"%[2]s\""
)

// DefaultRegistry returns a Registry with every built-in rule.
func DefaultRegistry() (*Registry, error) {
	docs, err := defaultMetadata()
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for name, ctor := range constructors() {
		meta, ok := docs[name]
		if !ok {
			return nil, fmt.Errorf("rule %s has no metadata", name)
		}
		r.Register(lint.Definition{Metadata: meta, New: ctor})
	}
	return r, nil
}

func constructors() map[string]lint.Constructor {
	return map[string]lint.Constructor{
		"use-input-property-decorator":  propertyPolicy("use-input-property-decorator", "inputs", "Input"),
		"use-output-property-decorator": propertyPolicy("use-output-property-decorator", "outputs", "Output"),
		"use-host-property-decorator":   propertyPolicy("use-host-property-decorator", "host", "HostBinding or @HostListener"),
		"no-queries-metadata-property":  propertyPolicy("no-queries-metadata-property", "queries", "ViewChild, @ViewChildren, @ContentChild or @ContentChildren"),

		"no-attribute-parameter-decorator": parameterPolicy("no-attribute-parameter-decorator", "Attribute", "an @Input() property"),
		"no-inject-parameter-decorator":    parameterPolicy("no-inject-parameter-decorator", "Inject", "a typed parameter resolved by its class"),

		"component-selector-name":   selectorName("component-selector-name", ng.Component, "kebab-case"),
		"component-selector-type":   selectorKind("component-selector-type", ng.Component, "element"),
		"component-selector-prefix": selectorPrefix("component-selector-prefix", ng.Component),
		"component-selector":        selectorCombined("component-selector", ng.Component),
		"directive-selector-name":   selectorName("directive-selector-name", ng.Directive, "camelCase"),
		"directive-selector-type":   selectorKind("directive-selector-type", ng.Directive, "attribute"),
		"directive-selector-prefix": selectorPrefix("directive-selector-prefix", ng.Directive),
		"directive-selector":        selectorCombined("directive-selector", ng.Directive),

		"component-class-suffix": classSuffix("component-class-suffix", ng.Component),
		"directive-class-suffix": classSuffix("directive-class-suffix", ng.Directive),
		"pipe-class-suffix":      classSuffix("pipe-class-suffix", ng.Pipe),

		"no-input-rename":              fixed(NoInputRename),
		"no-output-rename":             fixed(NoOutputRename),
		"no-output-on-prefix":          fixed(NoOutputOnPrefix),
		"no-output-native":             fixed(NoOutputNative),
		"use-pipe-transform-interface": fixed(UsePipeTransformInterface),

		"template-no-autofocus":            fixed(TemplateNoAutofocus),
		"template-no-distracting-elements": fixed(TemplateNoDistractingElements),
		"template-banana-in-box":           fixed(TemplateBananaInBox),
		"template-use-track-by-function":   fixed(TemplateUseTrackByFunction),
	}
}

func fixed(rule func() lint.Rule) lint.Constructor {
	return func(lint.Options) (lint.Rule, error) { return rule(), nil }
}

func propertyPolicy(id, property, replacement string) lint.Constructor {
	return func(lint.Options) (lint.Rule, error) {
		return &PropertyPolicy{
			ID:          id,
			Decorators:  []string{"Component", "Directive"},
			Property:    property,
			Replacement: replacement,
			Message:     propertyMessage,
		}, nil
	}
}

func parameterPolicy(id, decorator, preferred string) lint.Constructor {
	return func(lint.Options) (lint.Rule, error) {
		return &ParameterPolicy{
			ID:        id,
			Decorator: decorator,
			Preferred: preferred,
			Message:   parameterMessage,
		}, nil
	}
}

// selectorRule binds the role word into the shared selector message.
func selectorRule(id string, target ng.Role, v Validator) *SelectorRule {
	word := strings.ToLower(target.String())
	return &SelectorRule{
		ID:        id,
		Target:    target,
		Validator: v,
		Message:   strings.ReplaceAll(selectorMessage, "%[4]s", word),
	}
}

func selectorName(id string, target ng.Role, def string) lint.Constructor {
	return func(opts lint.Options) (lint.Rule, error) {
		style := def
		if s, ok := opts.Arg(0); ok {
			style = s
		}
		v, err := selectorStyle(style)
		if err != nil {
			return nil, err
		}
		return selectorRule(id, target, v), nil
	}
}

func selectorKind(id string, target ng.Role, def string) lint.Constructor {
	return func(opts lint.Options) (lint.Rule, error) {
		kind := def
		if s, ok := opts.Arg(0); ok {
			kind = s
		}
		v, err := selectorType(kind)
		if err != nil {
			return nil, err
		}
		return selectorRule(id, target, v), nil
	}
}

func selectorPrefix(id string, target ng.Role) lint.Constructor {
	return func(opts lint.Options) (lint.Rule, error) {
		prefixes := splitPrefixes(opts.Strings())
		if len(prefixes) == 0 {
			return nil, fmt.Errorf("%s requires at least one prefix", id)
		}
		return selectorRule(id, target, AnyPrefix(prefixes...)), nil
	}
}

// selectorCombined reads [type, prefix, style]. Missing type and style
// fall back to the role's conventions; an empty prefix is not checked.
func selectorCombined(id string, target ng.Role) lint.Constructor {
	kind, style := "element", "kebab-case"
	if target == ng.Directive {
		kind, style = "attribute", "camelCase"
	}
	return func(opts lint.Options) (lint.Rule, error) {
		k, s := kind, style
		if v, ok := opts.Arg(0); ok {
			k = v
		}
		if v, ok := opts.Arg(2); ok {
			s = v
		}
		kv, err := selectorType(k)
		if err != nil {
			return nil, err
		}
		sv, err := selectorStyle(s)
		if err != nil {
			return nil, err
		}
		validators := []Validator{kv, sv}

		var prefixes []string
		if len(opts.Args) > 1 {
			switch p := opts.Args[1].(type) {
			case string:
				prefixes = splitPrefixes([]string{p})
			case []any:
				prefixes = splitPrefixes(lint.Options{Args: p}.Strings())
			}
		}
		if len(prefixes) > 0 {
			validators = append(validators, AnyPrefix(prefixes...))
		}
		return selectorRule(id, target, All(validators...)), nil
	}
}

func classSuffix(id string, target ng.Role) lint.Constructor {
	return func(opts lint.Options) (lint.Rule, error) {
		return &ClassSuffix{
			ID:       id,
			Target:   target,
			Suffixes: opts.Strings(),
			Default:  target.String(),
			Message:  suffixMessage,
		}, nil
	}
}
