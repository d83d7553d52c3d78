package evaluator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chris-regnier/nglint/internal/lint"
)

func failures(n int) []lint.Failure {
	out := make([]lint.Failure, n)
	for i := range out {
		out[i] = lint.Failure{FileName: "a.ts", RuleName: "no-input-rename", Message: "renamed"}
	}
	return out
}

func TestEvaluator_Pass(t *testing.T) {
	e, err := NewEvaluator("", 0)
	if err != nil {
		t.Fatal(err)
	}

	verdict, err := e.Evaluate(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if verdict.Decision != Pass || !verdict.Passed() {
		t.Errorf("expected 'pass', got %q", verdict.Decision)
	}
}

func TestEvaluator_Fail(t *testing.T) {
	e, err := NewEvaluator("", 0)
	if err != nil {
		t.Fatal(err)
	}

	verdict, err := e.Evaluate(context.Background(), failures(1), nil)
	if err != nil {
		t.Fatal(err)
	}

	if verdict.Decision != Fail {
		t.Errorf("expected 'fail', got %q", verdict.Decision)
	}
	if verdict.Failures != 1 {
		t.Errorf("expected 1 failure counted, got %d", verdict.Failures)
	}
}

func TestEvaluator_Budget(t *testing.T) {
	e, err := NewEvaluator("", 3)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		n    int
		want string
	}{
		{0, Pass},
		{3, Pass},
		{4, Fail},
	}
	for _, tc := range tests {
		verdict, err := e.Evaluate(context.Background(), failures(tc.n), nil)
		if err != nil {
			t.Fatal(err)
		}
		if verdict.Decision != tc.want {
			t.Errorf("%d failures: expected %q, got %q", tc.n, tc.want, verdict.Decision)
		}
	}
}

func TestEvaluator_CustomPolicy(t *testing.T) {
	policy := `package nglint.gate

import rego.v1

default decision := "pass"

decision := "fail" if {
    some f in input.failures
    f.level == "error"
}
`

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "errors-only.rego"), []byte(policy), 0644); err != nil {
		t.Fatal(err)
	}

	e, err := NewEvaluator(dir, 0)
	if err != nil {
		t.Fatal(err)
	}

	rules := []lint.Metadata{
		{Name: "no-input-rename", Type: lint.TypeMaintainability},
		{Name: "template-no-autofocus", Type: lint.TypeFunctionality},
	}

	verdict, err := e.Evaluate(context.Background(), failures(5), rules)
	if err != nil {
		t.Fatal(err)
	}
	if verdict.Decision != Pass {
		t.Errorf("expected warnings to pass the custom policy, got %q", verdict.Decision)
	}

	withError := append(failures(1), lint.Failure{FileName: "a.ts", RuleName: "template-no-autofocus", Message: "autofocus"})
	verdict, err = e.Evaluate(context.Background(), withError, rules)
	if err != nil {
		t.Fatal(err)
	}
	if verdict.Decision != Fail {
		t.Errorf("expected 'fail' from custom policy, got %q", verdict.Decision)
	}
}

func TestEvaluator_MissingPolicyDirUsesDefault(t *testing.T) {
	e, err := NewEvaluator(filepath.Join(t.TempDir(), "missing"), 0)
	if err != nil {
		t.Fatal(err)
	}
	verdict, err := e.Evaluate(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !verdict.Passed() {
		t.Errorf("expected default policy to pass, got %q", verdict.Decision)
	}
}
