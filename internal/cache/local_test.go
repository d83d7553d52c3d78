package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/source"
)

func testKey(t *testing.T, content string) CacheKey {
	t.Helper()
	rs := lint.NewRuleSet().Set("no-input-rename", lint.Enabled())
	key, err := NewKey("app.component.ts", content, rs, "dev")
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func TestNewKey(t *testing.T) {
	a := testKey(t, "class A {}")
	b := testKey(t, "class B {}")
	if a.Hash() == b.Hash() {
		t.Error("different content should hash differently")
	}
	if a.Hash() != testKey(t, "class A {}").Hash() {
		t.Error("hash should be deterministic")
	}
	if a.Rules != `{"no-input-rename":true}` {
		t.Errorf("unexpected rules fingerprint %q", a.Rules)
	}

	other, err := NewKey("app.component.ts", "class A {}", lint.NewRuleSet().Set("no-output-rename", lint.Enabled()), "dev")
	if err != nil {
		t.Fatal(err)
	}
	if other.Hash() == a.Hash() {
		t.Error("different rules should hash differently")
	}
}

func TestLocalCacheGetMiss(t *testing.T) {
	cache := NewLocalCache(t.TempDir())

	_, err := cache.Get(context.Background(), testKey(t, "class A {}"))
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestLocalCachePutGet(t *testing.T) {
	cache := NewLocalCache(t.TempDir())
	key := testKey(t, "class A {}")

	entry := &CacheEntry{
		Key: key,
		Failures: []lint.Failure{{
			FileName: "app.component.ts",
			RuleName: "no-input-rename",
			Message:  "renamed",
			Span: source.Span{
				Start: source.Position{Line: 0, Column: 6, Offset: 6},
				End:   source.Position{Line: 0, Column: 7, Offset: 7},
			},
		}},
	}

	ctx := context.Background()
	if err := cache.Put(ctx, entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if entry.Timestamp == 0 {
		t.Error("expected Put to stamp the entry")
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(got.Failures))
	}
	if !got.Failures[0].Equal(entry.Failures[0]) {
		t.Errorf("failure changed: %v", got.Failures[0])
	}
}

func TestLocalCacheDelete(t *testing.T) {
	cache := NewLocalCache(t.TempDir())
	key := testKey(t, "class A {}")
	ctx := context.Background()

	if err := cache.Put(ctx, &CacheEntry{Key: key}); err != nil {
		t.Fatal(err)
	}
	if err := cache.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("deleting a missing entry should succeed, got %v", err)
	}
}

func TestLocalCacheCancelledContext(t *testing.T) {
	cache := NewLocalCache(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cache.Get(ctx, testKey(t, "x")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if err := cache.Put(ctx, &CacheEntry{Key: testKey(t, "x")}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
