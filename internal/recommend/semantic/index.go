// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

// Package semantic holds the embedding index over course texts.
//
// Every course text is embedded once at build time. Queries are embedded
// per request and compared to every course; similarity is clamped to [0,1].
package semantic

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/coursematch/internal/embedding"
)

// Measure selects how vector closeness becomes a similarity.
type Measure string

const (
	// Cosine is cosine similarity clamped to [0,1].
	Cosine Measure = "cosine"
	// Distance is max(0, 1 - d) where d is the squared Euclidean distance
	// between the unit vectors, i.e. max(0, 2*cos - 1). This matches scoring
	// against an L2 vector store.
	Distance Measure = "distance"
)

// ErrDimensionMismatch is returned when a query vector does not match the index.
var ErrDimensionMismatch = errors.New("query dimension does not match index")

// Index is an immutable set of unit-normalized course vectors.
type Index struct {
	vectors [][]float32
	dims    int
	measure Measure
}

// Build embeds texts with e and returns the index. An empty text list
// returns an empty index without calling e.
func Build(ctx context.Context, e embedding.Embedder, texts []string, measure Measure) (*Index, error) {
	if measure == "" {
		measure = Cosine
	}
	if measure != Cosine && measure != Distance {
		return nil, fmt.Errorf("unknown similarity measure %q", measure)
	}

	idx := &Index{dims: e.Dimensions(), measure: measure}
	if len(texts) == 0 {
		return idx, nil
	}

	vecs, err := e.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed catalog: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embed catalog: got %d vectors for %d texts", len(vecs), len(texts))
	}
	idx.vectors = make([][]float32, len(vecs))
	for i, v := range vecs {
		if len(v) != idx.dims {
			return nil, fmt.Errorf("embed catalog: vector %d has %d dimensions, want %d", i, len(v), idx.dims)
		}
		cp := make([]float32, len(v))
		copy(cp, v)
		embedding.Normalize(cp)
		idx.vectors[i] = cp
	}
	return idx, nil
}

// EmbedQuery embeds a single query with e.
func EmbedQuery(ctx context.Context, e embedding.Embedder, query string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("got %d vectors for one query", len(vecs))
	}
	return vecs[0], nil
}

// Similarity scores q against every course, in catalog order, each in [0,1].
// An empty index returns an empty slice. A zero query vector scores zero.
func (idx *Index) Similarity(q []float32) ([]float64, error) {
	scores := make([]float64, len(idx.vectors))
	if len(idx.vectors) == 0 {
		return scores, nil
	}
	if len(q) != idx.dims {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(q), idx.dims)
	}

	var qn float64
	for _, x := range q {
		qn += float64(x) * float64(x)
	}
	if qn == 0 {
		return scores, nil
	}
	qn = math.Sqrt(qn)

	for i, v := range idx.vectors {
		var dot float64
		for j := range v {
			dot += float64(v[j]) * float64(q[j])
		}
		cos := dot / qn
		switch idx.measure {
		case Distance:
			scores[i] = clamp01(1 - (2 - 2*cos))
		default:
			scores[i] = clamp01(cos)
		}
	}
	return scores, nil
}

// Len returns the number of indexed courses.
func (idx *Index) Len() int { return len(idx.vectors) }

// Dimensions returns the vector size.
func (idx *Index) Dimensions() int { return idx.dims }

// Measure returns the similarity measure.
func (idx *Index) Measure() Measure { return idx.measure }

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
