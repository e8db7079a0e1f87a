// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package embedding

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/coursematch/internal/metrics"
)

// setupTestRedis starts miniredis and returns a store backed by it.
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client)
	t.Cleanup(func() {
		_ = store.Close()
		mr.Close()
	})
	return store, mr
}

func openTestBadger(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStores_RoundTrip(t *testing.T) {
	t.Parallel()

	redisStore, _ := setupTestRedis(t)
	stores := []Store{
		NewMemoryStore(10, time.Minute),
		redisStore,
		openTestBadger(t),
	}

	for _, s := range stores {
		t.Run(s.Name(), func(t *testing.T) {
			ctx := context.Background()
			if _, ok, err := s.Get(ctx, "embed_missing"); ok || err != nil {
				t.Errorf("Get(missing) = %v, %v; want miss", ok, err)
			}

			vec := []float32{0.25, -0.5, 1}
			if err := s.Set(ctx, "embed_k", vec, time.Minute); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, ok, err := s.Get(ctx, "embed_k")
			if err != nil || !ok {
				t.Fatalf("Get() = %v, %v", ok, err)
			}
			if !reflect.DeepEqual(got, vec) {
				t.Errorf("Get() = %v, want %v", got, vec)
			}
		})
	}
}

func TestRedisStore_TTL(t *testing.T) {
	t.Parallel()

	store, mr := setupTestRedis(t)
	ctx := context.Background()
	if err := store.Set(ctx, "embed_ttl", []float32{1}, time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ttl := mr.TTL("embed_ttl"); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, ok, _ := store.Get(ctx, "embed_ttl"); ok {
		t.Error("entry should have expired")
	}
}

func TestRedisStore_StoresJSON(t *testing.T) {
	t.Parallel()

	store, mr := setupTestRedis(t)
	if err := store.Set(context.Background(), "embed_json", []float32{1, 2}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	raw, err := mr.Get("embed_json")
	if err != nil {
		t.Fatalf("miniredis Get: %v", err)
	}
	if raw != "[1,2]" {
		t.Errorf("stored value = %q, want [1,2]", raw)
	}
}

func TestRedisStore_CorruptEntryIsError(t *testing.T) {
	t.Parallel()

	store, mr := setupTestRedis(t)
	if err := mr.Set("embed_bad", "not json"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := store.Get(context.Background(), "embed_bad"); ok || err == nil {
		t.Errorf("Get(corrupt) = %v, %v; want error", ok, err)
	}
}

func TestDialRedis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	store, err := DialRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("DialRedis() error = %v", err)
	}
	_ = store.Close()

	if _, err := DialRedis(context.Background(), "not-a-url"); err == nil {
		t.Error("DialRedis(bad url) should fail")
	}
}

func TestCachedEmbedder_WithRedis(t *testing.T) {
	t.Parallel()

	store, mr := setupTestRedis(t)
	inner := &countingEmbedder{HashEmbedder: NewHashEmbedder(8)}
	c := NewCachedEmbedder(inner, store, time.Hour, "embed_")

	if _, err := c.Embed(context.Background(), []string{"python"}); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if !mr.Exists(c.Key("python")) {
		t.Error("vector was not written to redis")
	}
	if _, err := c.Embed(context.Background(), []string{"python"}); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if inner.texts.Load() != 1 {
		t.Errorf("oracle saw %d texts, want 1", inner.texts.Load())
	}
}

// Not parallel: asserts the shared memory cache gauge.
func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10, time.Hour)
	if err := store.Set(ctx, "short", []float32{1}, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, "long", []float32{2}, time.Hour); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)

	if removed := store.Sweep(); removed != 1 {
		t.Errorf("Sweep() = %d, want 1", removed)
	}
	if got := testutil.ToFloat64(metrics.CacheEntries.WithLabelValues("memory")); got != 1 {
		t.Errorf("cache_entries{memory} = %v, want 1", got)
	}
	if _, ok, _ := store.Get(ctx, "long"); !ok {
		t.Error("unexpired vector was swept")
	}
	if removed := store.Sweep(); removed != 0 {
		t.Errorf("second Sweep() = %d, want 0", removed)
	}
}

func TestCachedEmbedderSweep(t *testing.T) {
	t.Parallel()

	redisStore, _ := setupTestRedis(t)
	tests := []struct {
		name  string
		store Store
	}{
		{"memory store", NewMemoryStore(10, time.Hour)},
		{"redis store", redisStore},
	}
	for _, tt := range tests {
		c := NewCachedEmbedder(NewHashEmbedder(8), tt.store, time.Hour, "")
		if _, err := c.Embed(context.Background(), []string{"go", "rust"}); err != nil {
			t.Fatalf("%s: Embed() error = %v", tt.name, err)
		}
		if removed := c.Sweep(); removed != 0 {
			t.Errorf("%s: Sweep() = %d, want 0", tt.name, removed)
		}
	}
}
