// Package cache keeps lint results on disk keyed by file content and
// rule configuration, so unchanged files are not linted again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/chris-regnier/nglint/internal/lint"
)

var ErrCacheMiss = errors.New("cache miss")

// CacheKey identifies a unique lint result.
type CacheKey struct {
	FileHash    string `json:"file_hash"`
	FilePath    string `json:"file_path"`
	Rules       string `json:"rules"` // rule set JSON, in order
	ToolVersion string `json:"tool_version"`
}

// NewKey builds the key of linting content as path with rs.
func NewKey(path, content string, rs *lint.RuleSet, version string) (CacheKey, error) {
	rules, err := rs.MarshalJSON()
	if err != nil {
		return CacheKey{}, err
	}
	sum := sha256.Sum256([]byte(content))
	return CacheKey{
		FileHash:    hex.EncodeToString(sum[:]),
		FilePath:    path,
		Rules:       string(rules),
		ToolVersion: version,
	}, nil
}

// Hash computes deterministic cache key
func (k CacheKey) Hash() string {
	b, err := json.Marshal(k)
	if err != nil {
		// CacheKey is a simple struct that should always marshal successfully
		panic("failed to marshal CacheKey: " + err.Error())
	}
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// CacheEntry is a cached lint result.
type CacheEntry struct {
	Key       CacheKey       `json:"key"`
	Failures  []lint.Failure `json:"failures"`
	Timestamp int64          `json:"timestamp"`
}

type CacheManager interface {
	Get(ctx context.Context, key CacheKey) (*CacheEntry, error)
	Put(ctx context.Context, entry *CacheEntry) error
	Delete(ctx context.Context, key CacheKey) error
}
