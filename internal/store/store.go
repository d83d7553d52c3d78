// Package store archives lint runs on disk so a gate can be re-evaluated
// later against the same failures.
package store

import (
	"context"
	"errors"

	"github.com/chris-regnier/nglint/internal/evaluator"
	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/sarif"
)

// ErrNoRuns is returned by Latest when nothing has been archived.
var ErrNoRuns = errors.New("no stored runs")

type Store interface {
	WriteRun(ctx context.Context, failures []lint.Failure, doc *sarif.Log) (string, error)
	WriteVerdict(ctx context.Context, id string, verdict *evaluator.Verdict) error
	ReadFailures(ctx context.Context, id string) ([]lint.Failure, error)
	ReadSARIF(ctx context.Context, id string) (*sarif.Log, error)
	ReadVerdict(ctx context.Context, id string) (*evaluator.Verdict, error)
	List(ctx context.Context) ([]string, error)
	Latest(ctx context.Context) (string, error)
}

var _ Store = (*FileStore)(nil)
