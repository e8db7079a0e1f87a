// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/coursematch/internal/cache"
	"github.com/tomtom215/coursematch/internal/metrics"
)

// Sweeper is implemented by stores that hold expiring entries in process
// and need periodic cleanup. Remote stores expire keys themselves.
type Sweeper interface {
	Sweep() int
}

// Store persists vectors by key. A miss is (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vec []float32, ttl time.Duration) error
	// Name labels metrics: memory, redis or badger.
	Name() string
	Close() error
}

// Vectors are stored as JSON arrays so entries stay readable from
// redis-cli and compatible with other writers of the same keys.
func encodeVector(v []float32) ([]byte, error) {
	return json.Marshal(v)
}

func decodeVector(data []byte) ([]float32, error) {
	var v []float32
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode cached vector: %w", err)
	}
	return v, nil
}

// MemoryStore keeps vectors in an in-process LRU.
type MemoryStore struct {
	lru *cache.LRU[[]float32]
}

// NewMemoryStore returns a MemoryStore holding at most capacity vectors.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{lru: cache.New[[]float32](capacity, ttl)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) ([]float32, bool, error) {
	v, ok := m.lru.Get(key)
	return v, ok, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key string, vec []float32, ttl time.Duration) error {
	m.lru.AddWithTTL(key, vec, ttl)
	return nil
}

// Name implements Store.
func (m *MemoryStore) Name() string { return "memory" }

// Sweep drops expired vectors, publishes the remaining size and returns how
// many were removed.
func (m *MemoryStore) Sweep() int {
	removed := m.lru.CleanupExpired()
	_, _, size := m.lru.Stats()
	metrics.RecordCacheSweep(m.Name(), removed, size)
	return removed
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.lru.Clear()
	return nil
}

// RedisStore keeps vectors in Redis with per-key expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedis parses a redis:// URL, connects and pings.
func DialRedis(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, key string) ([]float32, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	v, err := decodeVector(data)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set implements Store.
func (r *RedisStore) Set(ctx context.Context, key string, vec []float32, ttl time.Duration) error {
	data, err := encodeVector(vec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Name implements Store.
func (r *RedisStore) Name() string { return "redis" }

// Close implements Store.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// BadgerStore keeps vectors in an embedded BadgerDB with entry TTLs, so the
// cache survives restarts without an external service.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a BadgerDB at dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get implements Store.
func (b *BadgerStore) Get(_ context.Context, key string) ([]float32, bool, error) {
	var v []float32
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var derr error
			v, derr = decodeVector(val)
			return derr
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get: %w", err)
	}
	return v, true, nil
}

// Set implements Store.
func (b *BadgerStore) Set(_ context.Context, key string, vec []float32, ttl time.Duration) error {
	data, err := encodeVector(vec)
	if err != nil {
		return err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("badger set: %w", err)
	}
	return nil
}

// Name implements Store.
func (b *BadgerStore) Name() string { return "badger" }

// Close implements Store.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
