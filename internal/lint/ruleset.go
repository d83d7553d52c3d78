package lint

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is one rule of a RuleSet.
type Entry struct {
	ID      string
	Options Options
}

// RuleSet is an insertion-ordered mapping from rule id to options.
type RuleSet struct {
	entries []Entry
	index   map[string]int
}

// NewRuleSet returns an empty RuleSet.
func NewRuleSet() *RuleSet {
	return &RuleSet{index: make(map[string]int)}
}

// Set adds or replaces the options of id. Replacing keeps the original
// position.
func (rs *RuleSet) Set(id string, opts Options) *RuleSet {
	if i, ok := rs.index[id]; ok {
		rs.entries[i].Options = opts
		return rs
	}
	rs.index[id] = len(rs.entries)
	rs.entries = append(rs.entries, Entry{ID: id, Options: opts})
	return rs
}

// Get returns the options of id.
func (rs *RuleSet) Get(id string) (Options, bool) {
	i, ok := rs.index[id]
	if !ok {
		return Options{}, false
	}
	return rs.entries[i].Options, true
}

// Len returns the number of entries.
func (rs *RuleSet) Len() int {
	return len(rs.entries)
}

// Entries returns all entries in insertion order.
func (rs *RuleSet) Entries() []Entry {
	out := make([]Entry, len(rs.entries))
	copy(out, rs.entries)
	return out
}

// Enabled returns the enabled entries in insertion order.
func (rs *RuleSet) Enabled() []Entry {
	var out []Entry
	for _, e := range rs.entries {
		if e.Options.Enabled {
			out = append(out, e)
		}
	}
	return out
}

// MarshalJSON encodes the RuleSet as a JSON object in insertion order.
func (rs *RuleSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range rs.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Options.Value())
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", e.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (rs *RuleSet) UnmarshalJSON(data []byte) error {
	parsed, err := ParseRuleSetJSON(data)
	if err != nil {
		return err
	}
	*rs = *parsed
	return nil
}

// ParseRuleSetJSON decodes {"rule-id": true | [true, args...]} preserving
// the key order of the document.
func ParseRuleSetJSON(data []byte) (*RuleSet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing rule set: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parsing rule set: expected object")
	}

	rs := NewRuleSet()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing rule set: %w", err)
		}
		id, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parsing rule set: expected rule id, got %v", tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing rule %s: %w", id, err)
		}
		opts, err := ParseOptions(raw)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", id, err)
		}
		rs.Set(id, opts)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parsing rule set: %w", err)
	}
	return rs, nil
}
