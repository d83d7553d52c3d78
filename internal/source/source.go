// Package source models the text being linted: absolute byte offsets,
// line/column positions derived from them, and spans anchoring both AST
// nodes and diagnostics.
package source

import (
	"fmt"
	"sort"
	"sync"
)

// Position is a location in a Unit. Line and Column are 0-based; Column
// counts bytes from the start of the line. Offset is the absolute byte
// offset into the Unit text.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"character"`
	Offset int `json:"position"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Span is a half-open [Start, End) range of a Unit.
type Span struct {
	Start Position `json:"startPosition"`
	End   Position `json:"endPosition"`
}

// Len returns the width of the span in bytes.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start.Offset >= s.Start.Offset && other.End.Offset <= s.End.Offset
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Unit is a single source buffer identified by a file name.
type Unit struct {
	Identifier string
	Text       string

	once  sync.Once
	lines []int // offsets of line starts
}

// NewUnit returns a Unit for text.
func NewUnit(identifier, text string) *Unit {
	return &Unit{Identifier: identifier, Text: text}
}

// Len returns the length of the text in bytes.
func (u *Unit) Len() int {
	return len(u.Text)
}

func (u *Unit) lineStarts() []int {
	u.once.Do(func() {
		u.lines = []int{0}
		for i := 0; i < len(u.Text); i++ {
			if u.Text[i] == '\n' {
				u.lines = append(u.lines, i+1)
			}
		}
	})
	return u.lines
}

// PositionAt converts an absolute offset into a Position. An offset past
// the end of the text is a programming error and panics.
func (u *Unit) PositionAt(offset int) Position {
	if offset < 0 || offset > len(u.Text) {
		panic(fmt.Sprintf("source: offset %d outside %s (len %d)", offset, u.Identifier, len(u.Text)))
	}
	lines := u.lineStarts()
	line := sort.Search(len(lines), func(i int) bool { return lines[i] > offset }) - 1
	return Position{Line: line, Column: offset - lines[line], Offset: offset}
}

// Span builds a Span from absolute start and end offsets.
func (u *Unit) Span(start, end int) Span {
	return Span{Start: u.PositionAt(start), End: u.PositionAt(end)}
}

// Slice returns the text covered by s.
func (u *Unit) Slice(s Span) string {
	return u.Text[s.Start.Offset:s.End.Offset]
}

// LineCount returns the number of lines in the text.
func (u *Unit) LineCount() int {
	return len(u.lineStarts())
}
