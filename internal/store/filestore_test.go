package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/chris-regnier/nglint/internal/evaluator"
	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/sarif"
	"github.com/chris-regnier/nglint/internal/source"
)

func testFailures() []lint.Failure {
	return []lint.Failure{{
		FileName: "app.component.ts",
		RuleName: "no-input-rename",
		Message:  "In the class \"AppComponent\", the directive input property \"caption\" should not be renamed.",
		Span: source.Span{
			Start: source.Position{Line: 1, Column: 6, Offset: 41},
			End:   source.Position{Line: 1, Column: 12, Offset: 47},
		},
	}}
}

func TestFileStore_WriteAndReadRun(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	ctx := context.Background()

	doc := sarif.NewBuilder("nglint", "0.1.0").AddFailures(testFailures()).Build()
	id, err := fs.WriteRun(ctx, testFailures(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected non-empty ID")
	}

	failures, err := fs.ReadFailures(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if !failures[0].Equal(testFailures()[0]) {
		t.Errorf("failure changed on round trip: %v", failures[0])
	}

	loaded, err := fs.ReadSARIF(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Runs[0].Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(loaded.Runs[0].Results))
	}
	if loaded.Runs[0].Results[0].RuleID != "no-input-rename" {
		t.Errorf("expected ruleId 'no-input-rename', got %q", loaded.Runs[0].Results[0].RuleID)
	}
}

func TestFileStore_WriteRunWithoutSARIF(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	ctx := context.Background()

	id, err := fs.WriteRun(ctx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	failures, err := fs.ReadFailures(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(failures) != 0 {
		t.Errorf("expected no failures, got %d", len(failures))
	}
	if _, err := fs.ReadSARIF(ctx, id); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected missing sarif, got %v", err)
	}
}

func TestFileStore_WriteAndReadVerdict(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	ctx := context.Background()

	id, err := fs.WriteRun(ctx, testFailures(), nil)
	if err != nil {
		t.Fatal(err)
	}

	verdict := &evaluator.Verdict{
		Decision: evaluator.Fail,
		Reason:   "1 failures exceed the limit of 0",
		Failures: 1,
	}
	if err := fs.WriteVerdict(ctx, id, verdict); err != nil {
		t.Fatal(err)
	}

	loaded, err := fs.ReadVerdict(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Decision != evaluator.Fail || loaded.Failures != 1 {
		t.Errorf("unexpected verdict %+v", loaded)
	}
}

func TestFileStore_WriteVerdictUnknownRun(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	err := fs.WriteVerdict(context.Background(), "missing", &evaluator.Verdict{Decision: evaluator.Pass})
	if err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestFileStore_ListAndLatest(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	ctx := context.Background()

	if _, err := fs.Latest(ctx); !errors.Is(err, ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns, got %v", err)
	}

	for _, name := range []string{"2026-01-01T00-00-00Z-aaaaaa", "2026-02-01T00-00-00Z-bbbbbb"} {
		if err := os.MkdirAll(fs.runDir(name), 0755); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := fs.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(ids))
	}
	latest, err := fs.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest != "2026-02-01T00-00-00Z-bbbbbb" {
		t.Errorf("expected newest run, got %s", latest)
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	fs := NewFileStore(t.TempDir() + "/nope")
	ids, err := fs.List(context.Background())
	if err != nil || ids != nil {
		t.Errorf("expected nil, nil; got %v, %v", ids, err)
	}
}
