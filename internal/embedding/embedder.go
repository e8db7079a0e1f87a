// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

// Package embedding turns text into fixed-size vectors.
//
// Three oracles implement Embedder:
//
//   - HashEmbedder: deterministic feature hashing, no model or network
//   - OpenAIEmbedder: any OpenAI-compatible /embeddings endpoint
//   - HugotEmbedder: a local sentence-transformers ONNX model run by hugot
//
// CachedEmbedder wraps any of them with a Store (memory, Redis or Badger).
// Cache failures never fail an Embed call.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// DefaultDimensions is the vector size of the MiniLM sentence models.
const DefaultDimensions = 384

var (
	// ErrDimensionMismatch is returned when an oracle yields vectors of the
	// wrong size.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCountMismatch is returned when an oracle yields a different number
	// of vectors than texts.
	ErrCountMismatch = errors.New("embedding count mismatch")
)

// Embedder maps texts to vectors. Implementations are safe for concurrent use.
type Embedder interface {
	// Embed returns one vector per text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions is the size of every returned vector.
	Dimensions() int
	// Model names the underlying model; it scopes cache keys.
	Model() string
	// Close releases model or connection resources.
	Close() error
}

// checkVectors verifies count and dimension of an oracle response.
func checkVectors(vecs [][]float32, n, dims int) error {
	if len(vecs) != n {
		return fmt.Errorf("%w: got %d vectors for %d texts", ErrCountMismatch, len(vecs), n)
	}
	for i, v := range vecs {
		if len(v) != dims {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(v), dims)
		}
	}
	return nil
}

// Normalize scales v to unit length in place. Zero vectors are left alone.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
