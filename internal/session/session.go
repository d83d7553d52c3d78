// Package session is the editor side of live linting: it debounces
// source changes, posts tagged requests to a worker and reconciles the
// responses into editor state.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/worker"
)

// Poster accepts lint requests, e.g. a *worker.Worker.
type Poster interface {
	Post(req worker.Request) error
}

// Option configures a Session.
type Option func(*Session)

// WithDebounce sets the quiet period between a change and its request.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// WithFile names the edited file in requests.
func WithFile(name string) Option {
	return func(s *Session) { s.file = name }
}

// WithRenderer is called with every new state.
func WithRenderer(fn func(State)) Option {
	return func(s *Session) { s.render = fn }
}

// WithOnError receives the raw error of every failed pass.
func WithOnError(fn func(err string)) Option {
	return func(s *Session) { s.onError = fn }
}

// WithReconciler replaces the default id assignment.
func WithReconciler(r *Reconciler) Option {
	return func(s *Session) { s.reconciler = r }
}

// Session tracks one edited document.
type Session struct {
	poster     Poster
	delay      time.Duration
	file       string
	render     func(State)
	onError    func(string)
	reconciler *Reconciler
	debouncer  *Debouncer

	postMu sync.Mutex

	mu         sync.Mutex
	text       string
	generation uint64
	state      State
}

// New creates a session posting to p.
func New(p Poster, opts ...Option) *Session {
	s := &Session{
		poster:     p,
		delay:      300 * time.Millisecond,
		reconciler: NewReconciler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.debouncer = NewDebouncer(s.delay, s.post)
	return s
}

// Changed records the full current text and schedules a lint request.
func (s *Session) Changed(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
	s.debouncer.Trigger()
}

// Flush posts a pending change immediately.
func (s *Session) Flush() {
	s.debouncer.Flush()
}

// Close stops pending requests.
func (s *Session) Close() {
	s.debouncer.Stop()
}

func (s *Session) post() {
	s.postMu.Lock()
	defer s.postMu.Unlock()

	s.mu.Lock()
	s.generation++
	req := worker.Request{Program: s.text, Generation: s.generation, File: s.file}
	s.mu.Unlock()

	if err := s.poster.Post(req); err != nil {
		slog.Warn("posting lint request", "generation", req.Generation, "err", err)
		s.fail(req.Generation, err.Error())
	}
}

// Generation returns the generation of the newest request.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// State returns the current editor state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Deliver applies a worker response. Responses older than the newest
// request are dropped; the result reports whether resp was applied. The
// error channel wins whenever it is set.
func (s *Session) Deliver(resp worker.Response) bool {
	if resp.Failed() {
		return s.fail(resp.Generation, resp.Error)
	}

	failures, err := lint.UnmarshalFailures([]byte(resp.Output))
	if err != nil {
		chErr := &worker.ChannelError{Op: "decoding output", Err: err}
		return s.fail(resp.Generation, chErr.Error())
	}
	return s.apply(resp.Generation, failures)
}

// stale reports whether gen is older than the newest request. s.mu must
// be held.
func (s *Session) stale(gen uint64) bool {
	if gen < s.generation {
		slog.Debug("dropping stale lint response", "generation", gen, "current", s.generation)
		return true
	}
	return false
}

// apply installs the failures of generation gen unless a newer request
// has been posted. The check and the write share one critical section.
func (s *Session) apply(gen uint64, failures []lint.Failure) bool {
	s.mu.Lock()
	if s.stale(gen) {
		s.mu.Unlock()
		return false
	}
	st := s.reconciler.Reconcile(gen, failures)
	s.state = st
	s.mu.Unlock()

	if s.render != nil {
		s.render(st)
	}
	return true
}

func (s *Session) fail(gen uint64, raw string) bool {
	st := State{Status: Failed, Generation: gen, Error: raw}
	s.mu.Lock()
	if s.stale(gen) {
		s.mu.Unlock()
		return false
	}
	s.state = st
	s.mu.Unlock()

	if s.onError != nil {
		s.onError(raw)
	}
	if s.render != nil {
		s.render(st)
	}
	return true
}

// Run delivers responses until the channel closes or ctx is done.
func (s *Session) Run(ctx context.Context, responses <-chan worker.Response) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case resp, ok := <-responses:
			if !ok {
				return nil
			}
			s.Deliver(resp)
		}
	}
}

// ErrNotRun is reported by Err while no result has been applied.
var ErrNotRun = errors.New("lint has not run")

// Err returns the reason the current state carries no result, or nil.
func (s *Session) Err() error {
	st := s.State()
	switch st.Status {
	case NotRun:
		return ErrNotRun
	case Failed:
		return errors.New(st.Error)
	}
	return nil
}
