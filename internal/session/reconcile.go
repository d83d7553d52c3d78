package session

import (
	"strconv"

	"github.com/chris-regnier/nglint/internal/lint"
)

// Status summarizes what the editor should show for a session.
type Status int

const (
	// NotRun means no lint result has been applied yet.
	NotRun Status = iota
	// Clean means the last pass succeeded without failures.
	Clean
	// HasWarnings means the last pass succeeded with failures.
	HasWarnings
	// Failed means the last pass did not produce a result.
	Failed
)

func (s Status) String() string {
	switch s {
	case NotRun:
		return "not run"
	case Clean:
		return "no warnings"
	case HasWarnings:
		return "warnings"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is the editor view of a session.
type State struct {
	Status     Status `json:"status"`
	Generation uint64 `json:"generation"`
	// Diagnostics carry display ids in Failure.ID.
	Diagnostics []lint.Failure `json:"diagnostics"`
	// Markers maps 0-based start lines to the display ids on that line.
	Markers map[int][]string `json:"markers,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Display id bounds.
const (
	DefaultFirstID = 1
	DefaultMaxID   = 1 << 30
)

// Reconciler assigns display ids to diagnostics. Ids increase
// monotonically and wrap back to the first id past the maximum.
type Reconciler struct {
	first, max int
	next       int
}

// NewReconciler returns a reconciler with the default id range.
func NewReconciler() *Reconciler {
	return NewReconcilerRange(DefaultFirstID, DefaultMaxID)
}

// NewReconcilerRange returns a reconciler issuing ids in [first, max].
func NewReconcilerRange(first, max int) *Reconciler {
	if max < first {
		max = first
	}
	return &Reconciler{first: first, max: max, next: first}
}

func (r *Reconciler) nextID() string {
	if r.next > r.max {
		r.next = r.first
	}
	id := r.next
	r.next++
	return strconv.Itoa(id)
}

// Reconcile builds the state for a successful pass.
func (r *Reconciler) Reconcile(gen uint64, failures []lint.Failure) State {
	st := State{
		Status:      Clean,
		Generation:  gen,
		Diagnostics: make([]lint.Failure, len(failures)),
	}
	if len(failures) == 0 {
		return st
	}

	st.Status = HasWarnings
	st.Markers = make(map[int][]string)
	for i, f := range failures {
		f.ID = r.nextID()
		st.Diagnostics[i] = f
		line := f.Span.Start.Line
		st.Markers[line] = append(st.Markers[line], f.ID)
	}
	return st
}
