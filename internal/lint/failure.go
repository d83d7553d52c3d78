package lint

import (
	"encoding/json"
	"fmt"

	"github.com/chris-regnier/nglint/internal/source"
)

// Replacement is one text edit of an autofix: replace the text under Span
// with Text.
type Replacement struct {
	Span source.Span `json:"span"`
	Text string      `json:"replacementText"`
}

// Fix is an ordered set of replacements that resolves a Failure.
type Fix struct {
	Replacements []Replacement `json:"replacements"`
}

// Apply returns text with the fix's replacements applied. Replacements are
// expected to be non-overlapping and ordered by start offset.
func (f *Fix) Apply(text string) string {
	if f == nil || len(f.Replacements) == 0 {
		return text
	}
	out := make([]byte, 0, len(text))
	last := 0
	for _, r := range f.Replacements {
		out = append(out, text[last:r.Span.Start.Offset]...)
		out = append(out, r.Text...)
		last = r.Span.End.Offset
	}
	return string(append(out, text[last:]...))
}

// Failure is one diagnostic produced by a rule. Failures are immutable once
// reported.
type Failure struct {
	FileName string
	RuleName string
	Message  string
	Span     source.Span
	// ID is a correlation token assigned by the presentation layer.
	ID  string
	Fix *Fix
}

// Key is the duplicate-detection identity of a Failure.
type Key struct {
	File    string
	Rule    string
	Start   int
	End     int
	Message string
}

// Key returns the dedup key: rule name, span and message. The file name is
// part of the span's identity since offsets are only meaningful per file.
func (f Failure) Key() Key {
	return Key{
		File:    f.FileName,
		Rule:    f.RuleName,
		Start:   f.Span.Start.Offset,
		End:     f.Span.End.Offset,
		Message: f.Message,
	}
}

// Equal reports whether f and other are duplicates.
func (f Failure) Equal(other Failure) bool {
	return f.Key() == other.Key()
}

func (f Failure) String() string {
	return fmt.Sprintf("%s:%s [%s] %s", f.FileName, f.Span.Start, f.RuleName, f.Message)
}

// failureJSON is the wire shape of a Failure.
type failureJSON struct {
	Name          string          `json:"name,omitempty"`
	Failure       string          `json:"failure"`
	RuleName      string          `json:"ruleName"`
	StartPosition source.Position `json:"startPosition"`
	EndPosition   source.Position `json:"endPosition"`
	ID            string          `json:"id,omitempty"`
	Fix           *Fix            `json:"fix,omitempty"`
}

// MarshalJSON encodes the wire shape.
func (f Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(failureJSON{
		Name:          f.FileName,
		Failure:       f.Message,
		RuleName:      f.RuleName,
		StartPosition: f.Span.Start,
		EndPosition:   f.Span.End,
		ID:            f.ID,
		Fix:           f.Fix,
	})
}

// UnmarshalJSON decodes the wire shape.
func (f *Failure) UnmarshalJSON(data []byte) error {
	var w failureJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*f = Failure{
		FileName: w.Name,
		RuleName: w.RuleName,
		Message:  w.Failure,
		Span:     source.Span{Start: w.StartPosition, End: w.EndPosition},
		ID:       w.ID,
		Fix:      w.Fix,
	}
	return nil
}

// MarshalFailures encodes failures as a JSON array, preserving order. A nil
// slice encodes as an empty array.
func MarshalFailures(failures []Failure) ([]byte, error) {
	if failures == nil {
		failures = []Failure{}
	}
	return json.Marshal(failures)
}

// UnmarshalFailures decodes the output of MarshalFailures.
func UnmarshalFailures(data []byte) ([]Failure, error) {
	var failures []Failure
	if err := json.Unmarshal(data, &failures); err != nil {
		return nil, fmt.Errorf("decoding failures: %w", err)
	}
	return failures, nil
}
