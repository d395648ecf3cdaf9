package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "hello", 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	var got string
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}

	if err := mc.Get(ctx, "missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", 1, 10*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	var got int
	if err := mc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after expiry, got %v", err)
	}
	ok, err := mc.Exists(ctx, "k")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if ok {
		t.Fatal("expired key reported as existing")
	}
}

func TestMemoryCacheEvictsLeastRecentlyRead(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "a", 1, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := mc.Set(ctx, "b", 2, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	// Reading "a" makes "b" the eviction candidate.
	var v int
	if err := mc.Get(ctx, "a", &v); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := mc.Set(ctx, "c", 3, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if ok, _ := mc.Exists(ctx, "a"); !ok {
		t.Fatal("expected a to survive")
	}
	if ok, _ := mc.Exists(ctx, "c"); !ok {
		t.Fatal("expected c to be present")
	}
}
