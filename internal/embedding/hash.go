// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package embedding

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/coursematch/internal/recommend/lexical"
)

// HashEmbedder embeds text by signed feature hashing of its terms and
// adjacent term pairs, then L2-normalizes. It needs no model and is fully
// deterministic, which makes it the offline default and the test oracle.
// Texts without terms map to the zero vector.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder returns a HashEmbedder producing dims-sized vectors.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashEmbedder{dims: dims}
}

// Embed implements Embedder.
func (h *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embedOne(text)
	}
	return out, nil
}

func (h *HashEmbedder) embedOne(text string) []float32 {
	v := make([]float32, h.dims)
	terms := lexical.Tokenize(text)
	for i, t := range terms {
		h.add(v, t, 1)
		if i > 0 {
			h.add(v, terms[i-1]+" "+t, 0.5)
		}
	}
	Normalize(v)
	return v
}

func (h *HashEmbedder) add(v []float32, feature string, weight float32) {
	sum := xxhash.Sum64String(feature)
	bucket := sum % uint64(h.dims)
	if sum>>63 == 1 {
		weight = -weight
	}
	v[bucket] += weight
}

// Dimensions implements Embedder.
func (h *HashEmbedder) Dimensions() int { return h.dims }

// Model implements Embedder.
func (h *HashEmbedder) Model() string { return fmt.Sprintf("hash-%d", h.dims) }

// Close implements Embedder.
func (h *HashEmbedder) Close() error { return nil }
