package source

import "fmt"

// OffsetTranslationError reports a nested-dialect offset that falls outside
// the host Unit after translation.
type OffsetTranslationError struct {
	Base     int
	Relative int
	Limit    int
}

func (e *OffsetTranslationError) Error() string {
	return fmt.Sprintf("offset translation out of range: base %d + relative %d outside [0, %d]", e.Base, e.Relative, e.Limit)
}

// Translator maps offsets of an embedded buffer (a template string parsed
// as its own document) back into the host Unit. Base is the absolute
// offset of the first content byte of the embedded buffer, i.e. just past
// the opening quote or backtick.
type Translator struct {
	Unit *Unit
	Base int
}

// NewTranslator returns a Translator rooted at base.
func NewTranslator(u *Unit, base int) Translator {
	return Translator{Unit: u, Base: base}
}

// Absolute converts a relative offset into an absolute one.
func (t Translator) Absolute(rel int) (int, error) {
	abs := t.Base + rel
	if rel < 0 || abs < 0 || abs > t.Unit.Len() {
		return 0, &OffsetTranslationError{Base: t.Base, Relative: rel, Limit: t.Unit.Len()}
	}
	return abs, nil
}

// Relative is the inverse of Absolute.
func (t Translator) Relative(abs int) (int, error) {
	rel := abs - t.Base
	if rel < 0 || abs > t.Unit.Len() {
		return 0, &OffsetTranslationError{Base: t.Base, Relative: rel, Limit: t.Unit.Len()}
	}
	return rel, nil
}

// Span translates a relative [start, end) range into an absolute Span
// with line and column recomputed against the host text.
func (t Translator) Span(relStart, relEnd int) (Span, error) {
	start, err := t.Absolute(relStart)
	if err != nil {
		return Span{}, err
	}
	end, err := t.Absolute(relEnd)
	if err != nil {
		return Span{}, err
	}
	return t.Unit.Span(start, end), nil
}
