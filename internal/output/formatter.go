// Package output provides formatters for rendering lint failures in
// different output formats (JSON, HTML, SARIF, Markdown, pretty terminal).
package output

import (
	"fmt"

	"github.com/chris-regnier/nglint/internal/lint"
)

// Formatter renders failures into a string in a specific format. Every
// Formatter satisfies lint.Formatter and can be handed to a Linter.
type Formatter interface {
	Format(failures []lint.Failure) (string, error)
}

var _ lint.Formatter = Formatter(nil)

// Options carries the context some formats render with.
type Options struct {
	// Rules describes the rules that may appear in the failures. It sets
	// SARIF levels and rule descriptors.
	Rules []lint.Metadata
	// Sources maps file names to their text for snippets.
	Sources map[string]string
	// Version is reported as the tool version.
	Version string
	// Color enables ANSI styling in the pretty format.
	Color bool
}

// ResolveFormat determines the output format to use. If flagValue is non-empty,
// it is returned directly. Otherwise, "pretty" is returned for TTY output and
// "json" for non-TTY (piped) output.
func ResolveFormat(flagValue string, stdoutIsTTY bool) string {
	if flagValue != "" {
		return flagValue
	}
	if stdoutIsTTY {
		return "pretty"
	}
	return "json"
}

// NewFormatter returns a Formatter for the given format name.
// Supported formats: "json", "html", "sarif", "markdown", "pretty".
// Returns an error for unknown format names.
func NewFormatter(format string, opts Options) (Formatter, error) {
	switch format {
	case "json":
		return &JSONFormatter{}, nil
	case "html":
		return &HTMLFormatter{}, nil
	case "sarif":
		return &SARIFFormatter{Rules: opts.Rules, Version: opts.Version}, nil
	case "markdown":
		return &MarkdownFormatter{Rules: opts.Rules}, nil
	case "pretty":
		return &PrettyFormatter{Rules: opts.Rules, Sources: opts.Sources, Color: opts.Color}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q (supported: json, html, sarif, markdown, pretty)", format)
	}
}

// levels maps rule names to SARIF-style levels.
func levels(rules []lint.Metadata) map[string]string {
	out := make(map[string]string, len(rules))
	for _, m := range rules {
		switch m.Type {
		case lint.TypeFunctionality:
			out[m.Name] = "error"
		case lint.TypeMaintainability:
			out[m.Name] = "warning"
		default:
			out[m.Name] = "note"
		}
	}
	return out
}

func levelOf(levels map[string]string, rule string) string {
	if l, ok := levels[rule]; ok {
		return l
	}
	return "warning"
}
