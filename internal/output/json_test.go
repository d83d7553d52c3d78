package output

import (
	"encoding/json"
	"testing"

	"github.com/chris-regnier/nglint/internal/lint"
)

func TestJSONFormatter_Format(t *testing.T) {
	f := &JSONFormatter{}
	out, err := f.Format(testFailures())
	if err != nil {
		t.Fatalf("JSONFormatter.Format() returned error: %v", err)
	}

	var parsed []map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, out)
	}
	if len(parsed) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(parsed))
	}

	first := parsed[0]
	if first["ruleName"] != "component-class-suffix" {
		t.Errorf("ruleName = %v", first["ruleName"])
	}
	start, ok := first["startPosition"].(map[string]any)
	if !ok {
		t.Fatalf("startPosition missing: %v", first)
	}
	if start["line"] != float64(1) || start["character"] != float64(6) || start["position"] != float64(41) {
		t.Errorf("unexpected start position %v", start)
	}
	if _, ok := first["id"]; ok {
		t.Error("id should be omitted when empty")
	}
	if parsed[1]["id"] != "3" {
		t.Errorf("id = %v, want 3", parsed[1]["id"])
	}
}

func TestJSONFormatter_Empty(t *testing.T) {
	out, err := (&JSONFormatter{}).Format(nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "[]" {
		t.Errorf("empty output = %q, want []", out)
	}
}

func TestJSONFormatter_RoundTrip(t *testing.T) {
	want := testFailures()
	out, err := (&JSONFormatter{}).Format(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := lint.UnmarshalFailures([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d failures, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("failure %d: got %v, want %v", i, got[i], want[i])
		}
		if got[i].Span != want[i].Span {
			t.Errorf("failure %d: span %v, want %v", i, got[i].Span, want[i].Span)
		}
	}
}
