package source

import (
	"errors"
	"strings"
	"testing"
)

func TestPositionAt(t *testing.T) {
	u := NewUnit("a.ts", "ab\ncd\n\nefg")
	tests := []struct {
		offset    int
		line, col int
	}{
		{0, 0, 0},
		{1, 0, 1},
		{2, 0, 2},
		{3, 1, 0},
		{5, 1, 2},
		{6, 2, 0},
		{7, 3, 0},
		{10, 3, 3},
	}
	for _, tt := range tests {
		p := u.PositionAt(tt.offset)
		if p.Line != tt.line || p.Column != tt.col || p.Offset != tt.offset {
			t.Errorf("PositionAt(%d) = %+v, want line %d col %d", tt.offset, p, tt.line, tt.col)
		}
	}
	if u.LineCount() != 4 {
		t.Errorf("expected 4 lines, got %d", u.LineCount())
	}
}

func TestPositionAtMonotonic(t *testing.T) {
	u := NewUnit("a.ts", "class A {\n  x = 1;\n}\n// trailing\n")
	prev := u.PositionAt(0)
	for i := 1; i <= u.Len(); i++ {
		p := u.PositionAt(i)
		if p.Line < prev.Line || (p.Line == prev.Line && p.Column <= prev.Column) {
			t.Fatalf("position %d (%+v) not after %+v", i, p, prev)
		}
		prev = p
	}
}

func TestPositionAtOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for offset past end")
		}
	}()
	NewUnit("a.ts", "abc").PositionAt(4)
}

func TestSliceAndSpan(t *testing.T) {
	u := NewUnit("a.ts", "hello\nworld")
	s := u.Span(6, 11)
	if got := u.Slice(s); got != "world" {
		t.Errorf("Slice = %q", got)
	}
	if s.Len() != 5 {
		t.Errorf("Len = %d", s.Len())
	}
	if s.Start.String() != "2:1" {
		t.Errorf("Start.String() = %q", s.Start.String())
	}
	if !u.Span(0, 11).Contains(s) {
		t.Error("expected whole span to contain sub span")
	}
}

// ---------------------------------------------------------------------------
// Translator
// ---------------------------------------------------------------------------

func TestTranslatorRoundTrip(t *testing.T) {
	text := "const t = `\n  <div>\n    <span autofocus></span>\n  </div>`;"
	u := NewUnit("t.ts", text)
	base := 11 // first byte after the backtick
	tr := NewTranslator(u, base)

	for rel := 0; rel <= len(text)-base; rel++ {
		abs, err := tr.Absolute(rel)
		if err != nil {
			t.Fatalf("Absolute(%d): %v", rel, err)
		}
		if abs != base+rel {
			t.Fatalf("Absolute(%d) = %d, want %d", rel, abs, base+rel)
		}
		back, err := tr.Relative(abs)
		if err != nil || back != rel {
			t.Fatalf("Relative(%d) = %d, %v; want %d", abs, back, err, rel)
		}
	}
}

func TestTranslatorMultiLineSpan(t *testing.T) {
	text := "x = `\n<div>\n  <b autofocus></b>\n</div>`"
	u := NewUnit("t.ts", text)
	tr := NewTranslator(u, 5)
	tmpl := text[5 : len(text)-1]

	rel := strings.Index(tmpl, "autofocus")
	s, err := tr.Span(rel, rel+9)
	if err != nil {
		t.Fatal(err)
	}
	if u.Slice(s) != "autofocus" {
		t.Errorf("translated span covers %q", u.Slice(s))
	}
	if s.Start.Line != 2 || s.Start.Column != 5 {
		t.Errorf("expected 2:5 (0-based), got %d:%d", s.Start.Line, s.Start.Column)
	}
}

func TestTranslatorOutOfRange(t *testing.T) {
	u := NewUnit("t.ts", "abcdef")
	tr := NewTranslator(u, 4)

	_, err := tr.Absolute(3)
	var te *OffsetTranslationError
	if !errors.As(err, &te) {
		t.Fatalf("expected OffsetTranslationError, got %v", err)
	}
	if te.Base != 4 || te.Relative != 3 || te.Limit != 6 {
		t.Errorf("unexpected error fields: %+v", te)
	}
	if _, err := tr.Absolute(-1); err == nil {
		t.Error("expected error for negative relative offset")
	}
	if _, err := tr.Relative(2); err == nil {
		t.Error("expected error for absolute offset before base")
	}
	if _, err := tr.Span(0, 3); err == nil {
		t.Error("expected error for span end past host buffer")
	}
}
