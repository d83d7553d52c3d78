package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chris-regnier/nglint/internal/evaluator"
	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/sarif"
)

var storeTracer = otel.Tracer("github.com/chris-regnier/nglint/internal/store")

const (
	failuresFile = "failures.json"
	sarifFile    = "sarif.json"
	verdictFile  = "verdict.json"
)

// FileStore keeps one directory per run under dir. Run ids sort by
// creation time.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) generateID() string {
	b := make([]byte, 3)
	rand.Read(b)
	ts := time.Now().UTC().Format("2006-01-02T15-04-05Z")
	return fmt.Sprintf("%s-%s", ts, hex.EncodeToString(b))
}

func (s *FileStore) runDir(id string) string {
	return filepath.Join(s.dir, id)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// WriteRun archives failures in wire form and, when doc is non-nil, the
// SARIF log. It returns the new run id.
func (s *FileStore) WriteRun(ctx context.Context, failures []lint.Failure, doc *sarif.Log) (string, error) {
	_, span := storeTracer.Start(ctx, "write run")
	defer span.End()

	id := s.generateID()
	dir := s.runDir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fail(span, err)
	}

	data, err := lint.MarshalFailures(failures)
	if err != nil {
		return "", fail(span, err)
	}
	if err := os.WriteFile(filepath.Join(dir, failuresFile), data, 0644); err != nil {
		return "", fail(span, err)
	}

	if doc != nil {
		if err := writeJSON(filepath.Join(dir, sarifFile), doc); err != nil {
			return "", fail(span, err)
		}
	}

	span.SetAttributes(
		attribute.String("nglint.store.id", id),
		attribute.Int("nglint.store.failure_count", len(failures)),
	)
	return id, nil
}

func (s *FileStore) WriteVerdict(ctx context.Context, id string, verdict *evaluator.Verdict) error {
	_, span := storeTracer.Start(ctx, "write verdict")
	defer span.End()

	if _, err := os.Stat(s.runDir(id)); err != nil {
		return fail(span, fmt.Errorf("run %s: %w", id, err))
	}
	if err := writeJSON(filepath.Join(s.runDir(id), verdictFile), verdict); err != nil {
		return fail(span, err)
	}

	span.SetAttributes(
		attribute.String("nglint.store.id", id),
		attribute.String("nglint.decision", verdict.Decision),
	)
	return nil
}

func (s *FileStore) ReadFailures(ctx context.Context, id string) ([]lint.Failure, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(id), failuresFile))
	if err != nil {
		return nil, err
	}
	failures, err := lint.UnmarshalFailures(data)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	return failures, nil
}

func (s *FileStore) ReadSARIF(ctx context.Context, id string) (*sarif.Log, error) {
	var log sarif.Log
	if err := readJSON(filepath.Join(s.runDir(id), sarifFile), &log); err != nil {
		return nil, err
	}
	return &log, nil
}

func (s *FileStore) ReadVerdict(ctx context.Context, id string) (*evaluator.Verdict, error) {
	var v evaluator.Verdict
	if err := readJSON(filepath.Join(s.runDir(id), verdictFile), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns run ids, newest first.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// Latest returns the newest run id.
func (s *FileStore) Latest(ctx context.Context) (string, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", ErrNoRuns
	}
	return ids[0], nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
