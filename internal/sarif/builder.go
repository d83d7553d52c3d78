package sarif

import (
	"github.com/chris-regnier/nglint/internal/lint"
)

// Builder assembles a SARIF log from lint failures.
type Builder struct {
	tool    string
	version string
	rules   []ReportingDescriptor
	levels  map[string]string
	results []Result
	scope   string
}

// NewBuilder creates a Builder for the named tool.
func NewBuilder(tool, version string) *Builder {
	return &Builder{
		tool:    tool,
		version: version,
		levels:  make(map[string]string),
	}
}

// Level maps a rule type to a SARIF level.
func Level(t lint.RuleType) string {
	switch t {
	case lint.TypeFunctionality:
		return "error"
	case lint.TypeMaintainability:
		return "warning"
	default:
		return "note"
	}
}

// AddRules adds reporting descriptors for rule metadata.
func (b *Builder) AddRules(meta []lint.Metadata) *Builder {
	for _, m := range meta {
		d := ReportingDescriptor{
			ID:               m.Name,
			ShortDescription: Message{Text: m.Description},
			DefaultConfig:    &ReportingConfiguration{Level: Level(m.Type)},
		}
		if m.Rationale != "" {
			d.FullDescription = &Message{Text: m.Rationale}
		}
		if m.HasFix {
			d.Properties = map[string]interface{}{"nglint/hasFix": true}
		}
		b.rules = append(b.rules, d)
		b.levels[m.Name] = d.DefaultConfig.Level
	}
	return b
}

// AddFailures converts failures into results, in order.
func (b *Builder) AddFailures(failures []lint.Failure) *Builder {
	for _, f := range failures {
		level, ok := b.levels[f.RuleName]
		if !ok {
			level = "warning"
		}
		r := Result{
			RuleID:  f.RuleName,
			Level:   level,
			Message: Message{Text: f.Message},
			Locations: []Location{{
				PhysicalLocation: PhysicalLocation{
					ArtifactLocation: ArtifactLocation{URI: f.FileName},
					Region:           region(f.Span.Start.Line, f.Span.Start.Column, f.Span.End.Line, f.Span.End.Column, f.Span.Start.Offset, f.Span.End.Offset),
				},
			}},
		}
		if f.ID != "" {
			r.Properties = map[string]interface{}{"nglint/id": f.ID}
		}
		if f.Fix != nil && len(f.Fix.Replacements) > 0 {
			change := ArtifactChange{ArtifactLocation: ArtifactLocation{URI: f.FileName}}
			for _, rep := range f.Fix.Replacements {
				change.Replacements = append(change.Replacements, Replacement{
					DeletedRegion:   region(rep.Span.Start.Line, rep.Span.Start.Column, rep.Span.End.Line, rep.Span.End.Column, rep.Span.Start.Offset, rep.Span.End.Offset),
					InsertedContent: &Message{Text: rep.Text},
				})
			}
			r.Fixes = []Fix{{Description: Message{Text: "Apply suggested fix"}, ArtifactChanges: []ArtifactChange{change}}}
		}
		b.results = append(b.results, r)
	}
	return b
}

// WithInputScope records the linted input on the run.
func (b *Builder) WithInputScope(scope string) *Builder {
	b.scope = scope
	return b
}

// Build returns the log.
func (b *Builder) Build() *Log {
	log := NewLog(b.tool, b.version)
	log.Runs[0].Tool.Driver.Rules = b.rules
	if b.results != nil {
		log.Runs[0].Results = b.results
	}
	if b.scope != "" {
		log.Runs[0].Properties = map[string]interface{}{
			"nglint/inputScope": b.scope,
		}
	}
	return log
}

// region converts 0-based positions into a 1-based SARIF region.
func region(startLine, startCol, endLine, endCol, startOff, endOff int) Region {
	return Region{
		StartLine:   startLine + 1,
		StartColumn: startCol + 1,
		EndLine:     endLine + 1,
		EndColumn:   endCol + 1,
		CharOffset:  startOff,
		CharLength:  endOff - startOff,
	}
}
