package blob

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	if _, err := cache.Get(ctx, "sources/demo/a.png"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss on empty cache, got %v", err)
	}

	if err := cache.Set(ctx, "sources/demo/a.png", []byte("bytes"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := cache.Get(ctx, "sources/demo/a.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if data, ok := value.([]byte); !ok || string(data) != "bytes" {
		t.Fatalf("unexpected cached value %v", value)
	}

	if err := cache.Delete(ctx, "sources/demo/a.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cache.Get(ctx, "sources/demo/a.png"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestMemoryCacheExpiresEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	if err := cache.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := cache.Get(ctx, "key"); err != nil {
		t.Fatalf("expected live entry, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := cache.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryCacheClearDropsEverything(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	for _, key := range []string{"a", "b", "c"} {
		if err := cache.Set(ctx, key, key, 0); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, key := range []string{"a", "b", "c"} {
		if _, err := cache.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
			t.Fatalf("expected %s to be gone, got %v", key, err)
		}
	}
}
