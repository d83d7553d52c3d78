package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chris-regnier/nglint/internal/lint"
)

// DefaultIdentifier names programs posted without a file name.
const DefaultIdentifier = "program.ts"

// CacheRecorder observes result cache lookups.
type CacheRecorder interface {
	RecordCache(hit bool)
}

// Handler owns one Linter and serves requests against a fixed RuleSet.
// Calls are serialized; the Linter is reset after every pass.
type Handler struct {
	mu       sync.Mutex
	linter   *lint.Linter
	rules    *lint.RuleSet
	rulesKey string

	cacheSize int
	cache     *lru.Cache[string, string]
	recorder  CacheRecorder
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithCache keeps the outputs of the last size distinct programs.
func WithCache(size int) HandlerOption {
	return func(h *Handler) { h.cacheSize = size }
}

// WithCacheRecorder reports cache hits and misses to r.
func WithCacheRecorder(r CacheRecorder) HandlerOption {
	return func(h *Handler) { h.recorder = r }
}

// NewHandler returns a Handler linting with linter and rules.
func NewHandler(linter *lint.Linter, rules *lint.RuleSet, opts ...HandlerOption) (*Handler, error) {
	h := &Handler{linter: linter, rules: rules}
	for _, opt := range opts {
		opt(h)
	}

	fingerprint, err := rules.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("fingerprinting rule set: %w", err)
	}
	h.rulesKey = string(fingerprint)

	if h.cacheSize > 0 {
		cache, err := lru.New[string, string](h.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating result cache: %w", err)
		}
		h.cache = cache
	}
	return h, nil
}

// Rules returns the rule set requests are linted with.
func (h *Handler) Rules() *lint.RuleSet {
	return h.rules
}

// Handle runs one lint pass and returns its serialized failures, or the
// error that stopped the pass.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	h.mu.Lock()
	defer h.mu.Unlock()

	identifier := req.File
	if identifier == "" {
		identifier = DefaultIdentifier
	}

	key := h.cacheKey(identifier, req.Program)
	if h.cache != nil {
		out, ok := h.cache.Get(key)
		if h.recorder != nil {
			h.recorder.RecordCache(ok)
		}
		if ok {
			return Response{Output: out, Generation: req.Generation}
		}
	}

	defer h.linter.Reset()
	h.linter.Reset()
	if err := h.linter.Lint(ctx, identifier, req.Program, h.rules); err != nil {
		slog.Debug("lint pass failed", "file", identifier, "generation", req.Generation, "err", err)
		return errorResponse(req.Generation, err)
	}
	res, err := h.linter.Result()
	if err != nil {
		return errorResponse(req.Generation, err)
	}
	data, err := lint.MarshalFailures(res.Failures)
	if err != nil {
		return errorResponse(req.Generation, &ChannelError{Op: "encoding output", Err: err})
	}

	out := string(data)
	if h.cache != nil {
		h.cache.Add(key, out)
	}
	return Response{Output: out, Generation: req.Generation}
}

// HandleRaw decodes a serialized request, handles it and encodes the
// response. Decoding failures are answered on the error channel.
func (h *Handler) HandleRaw(ctx context.Context, data []byte) ([]byte, error) {
	req, err := DecodeRequest(data)
	if err != nil {
		return EncodeResponse(errorResponse(0, err))
	}
	return EncodeResponse(h.Handle(ctx, req))
}

func (h *Handler) cacheKey(identifier, program string) string {
	sum := sha256.New()
	sum.Write([]byte(identifier))
	sum.Write([]byte{0})
	sum.Write([]byte(program))
	sum.Write([]byte{0})
	sum.Write([]byte(h.rulesKey))
	return hex.EncodeToString(sum.Sum(nil))
}
