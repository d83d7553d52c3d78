// Package server exposes the lint worker over HTTP and websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/metrics"
	"github.com/chris-regnier/nglint/internal/worker"
)

const maxRequestBytes = 4 << 20

// HandlerFactory builds a fresh handler for each live session.
type HandlerFactory func() (*worker.Handler, error)

// Option configures a Server.
type Option func(*Server)

// WithCollector serves c on /metrics.
func WithCollector(c *metrics.Collector) Option {
	return func(s *Server) { s.collector = c }
}

// WithDebounce sets the quiet period of websocket sessions.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) { s.debounce = d }
}

// WithHandlerFactory gives every websocket session its own handler.
// Without it sessions share the /lint handler.
func WithHandlerFactory(f HandlerFactory) Option {
	return func(s *Server) { s.newHandler = f }
}

// Server routes lint requests to a worker handler.
type Server struct {
	handler    *worker.Handler
	metadata   []lint.Metadata
	collector  *metrics.Collector
	newHandler HandlerFactory
	debounce   time.Duration
	router     chi.Router
}

// New creates a server around h. metadata is listed on /rules.
func New(h *worker.Handler, metadata []lint.Metadata, opts ...Option) *Server {
	s := &Server{
		handler:  h,
		metadata: metadata,
		debounce: 300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.collector == nil {
		s.collector = metrics.NewCollector()
	}
	if s.newHandler == nil {
		s.newHandler = func() (*worker.Handler, error) { return s.handler, nil }
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Post("/lint", s.handleLint)
	r.Get("/rules", s.handleRules)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/ws", s.handleSession)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, worker.Response{Error: err.Error()})
		return
	}
	req, err := worker.DecodeRequest(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, worker.Response{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.handler.Handle(r.Context(), req))
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	type ruleInfo struct {
		lint.Metadata
		Enabled bool `json:"enabled"`
	}
	rs := s.handler.Rules()
	out := make([]ruleInfo, 0, len(s.metadata))
	for _, md := range s.metadata {
		opts, ok := rs.Get(md.Name)
		out = append(out, ruleInfo{Metadata: md, Enabled: ok && opts.Enabled})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	n := 100
	if v := r.URL.Query().Get("events"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			http.Error(w, "events must be a non-negative integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, metrics.NewExporter(s.collector).Snapshot(n))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "err", err)
	}
}

// ListenAndServe serves h on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
