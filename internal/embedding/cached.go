// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/tomtom215/coursematch/internal/logging"
	"github.com/tomtom215/coursematch/internal/metrics"
)

// DefaultCacheTTL is how long a cached vector lives.
const DefaultCacheTTL = time.Hour

// CachedEmbedder serves vectors from a Store and asks the wrapped Embedder
// only for misses. Store errors are logged and counted, then treated as
// misses.
type CachedEmbedder struct {
	inner  Embedder
	store  Store
	ttl    time.Duration
	prefix string
}

// NewCachedEmbedder wraps inner with store. Keys are prefix followed by the
// hex SHA-256 of "model|text".
func NewCachedEmbedder(inner Embedder, store Store, ttl time.Duration, prefix string) *CachedEmbedder {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if prefix == "" {
		prefix = "embed_"
	}
	return &CachedEmbedder{inner: inner, store: store, ttl: ttl, prefix: prefix}
}

// Key returns the cache key of text.
func (c *CachedEmbedder) Key(text string) string {
	sum := sha256.Sum256([]byte(c.inner.Model() + "|" + text))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Embed implements Embedder.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	log := logging.Ctx(ctx)
	out := make([][]float32, len(texts))

	// Duplicate texts in one call are fetched once.
	missing := make(map[string][]int)
	var order []string
	for i, text := range texts {
		key := c.Key(text)
		vec, ok, err := c.store.Get(ctx, key)
		if err != nil {
			metrics.RecordCacheError(c.store.Name(), "get")
			log.Warn().Err(err).Str("cache", c.store.Name()).Msg("Embedding cache read failed")
		}
		if ok && len(vec) == c.inner.Dimensions() {
			metrics.RecordCacheLookup(c.store.Name(), true)
			out[i] = vec
			continue
		}
		metrics.RecordCacheLookup(c.store.Name(), false)
		if _, seen := missing[text]; !seen {
			order = append(order, text)
		}
		missing[text] = append(missing[text], i)
	}
	if len(order) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Embed(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := checkVectors(vecs, len(order), c.inner.Dimensions()); err != nil {
		return nil, err
	}

	for j, text := range order {
		for _, i := range missing[text] {
			out[i] = vecs[j]
		}
		if err := c.store.Set(ctx, c.Key(text), vecs[j], c.ttl); err != nil {
			metrics.RecordCacheError(c.store.Name(), "set")
			log.Warn().Err(err).Str("cache", c.store.Name()).Msg("Embedding cache write failed")
		}
	}
	return out, nil
}

// Dimensions implements Embedder.
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

// Model implements Embedder.
func (c *CachedEmbedder) Model() string { return c.inner.Model() }

// Sweep implements Sweeper by delegating to the store. Stores without
// in-process state report 0.
func (c *CachedEmbedder) Sweep() int {
	if sw, ok := c.store.(Sweeper); ok {
		return sw.Sweep()
	}
	return 0
}

// Close closes the store and the wrapped embedder.
func (c *CachedEmbedder) Close() error {
	storeErr := c.store.Close()
	if err := c.inner.Close(); err != nil {
		return err
	}
	return storeErr
}
