package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var cacheTracer = otel.Tracer("github.com/chris-regnier/nglint/internal/cache")

var _ CacheManager = (*LocalCache)(nil)

// LocalCache stores one JSON file per key under dir. Writes go through a
// temporary file and a rename, so concurrent linters never observe a
// partial entry.
type LocalCache struct {
	dir string
}

func NewLocalCache(dir string) *LocalCache {
	return &LocalCache{dir: dir}
}

func (c *LocalCache) entryPath(hash string) string {
	return filepath.Join(c.dir, hash[:2], hash+".json")
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (c *LocalCache) Get(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	ctx, span := cacheTracer.Start(ctx, "cache lookup")
	defer span.End()

	hash := key.Hash()
	span.SetAttributes(attribute.String("nglint.cache.key", hash))

	if err := ctx.Err(); err != nil {
		return nil, spanError(span, err)
	}

	data, err := os.ReadFile(c.entryPath(hash))
	if errors.Is(err, os.ErrNotExist) {
		span.SetAttributes(attribute.Bool("nglint.cache.hit", false))
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, spanError(span, err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, spanError(span, err)
	}
	if entry.Key != key {
		span.SetAttributes(attribute.Bool("nglint.cache.hit", false))
		return nil, ErrCacheMiss
	}

	span.SetAttributes(attribute.Bool("nglint.cache.hit", true))
	return &entry, nil
}

func (c *LocalCache) Put(ctx context.Context, entry *CacheEntry) error {
	_, span := cacheTracer.Start(ctx, "cache store")
	defer span.End()

	hash := entry.Key.Hash()
	span.SetAttributes(attribute.String("nglint.cache.key", hash))

	if err := ctx.Err(); err != nil {
		return spanError(span, err)
	}

	path := c.entryPath(hash)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return spanError(span, err)
	}

	entry.Timestamp = time.Now().Unix()
	data, err := json.Marshal(entry)
	if err != nil {
		return spanError(span, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), hash+".*.tmp")
	if err != nil {
		return spanError(span, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return spanError(span, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return spanError(span, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return spanError(span, err)
	}
	return nil
}

func (c *LocalCache) Delete(ctx context.Context, key CacheKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(c.entryPath(key.Hash()))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
