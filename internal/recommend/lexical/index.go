// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

// Package lexical implements the TF-IDF keyword index.
//
// Fit builds a vocabulary over the course texts (stop words removed, capped
// at MaxFeatures terms), weights each document with smoothed idf
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
//
// and L2-normalizes every row. Score projects a query into the same space
// and returns its cosine similarity to every document, in corpus order.
//
// Fitting is deterministic: the same texts always produce the same
// vocabulary and weights.
package lexical

import (
	"math"
	"sort"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 5000

// Options configures Fit.
type Options struct {
	// MaxFeatures keeps only the most frequent terms across the corpus.
	// Zero means DefaultMaxFeatures.
	MaxFeatures int
}

// entry is one non-zero weight in a sparse row.
type entry struct {
	term   int
	weight float64
}

// Index is an immutable fitted TF-IDF model. It is safe for concurrent use.
type Index struct {
	vocab map[string]int // term -> column
	terms []string       // column -> term
	idf   []float64
	rows  [][]entry
}

// Fit builds an Index over texts.
func Fit(texts []string, opts Options) *Index {
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = DefaultMaxFeatures
	}

	docs := make([][]string, len(texts))
	corpusTF := make(map[string]int)
	df := make(map[string]int)
	for i, text := range texts {
		docs[i] = Tokenize(text)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, t := range docs[i] {
			corpusTF[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				df[t]++
			}
		}
	}

	// Highest corpus frequency wins; ties by term for a stable vocabulary.
	candidates := make([]string, 0, len(corpusTF))
	for t := range corpusTF {
		candidates = append(candidates, t)
	}
	sort.Slice(candidates, func(a, b int) bool {
		ca, cb := corpusTF[candidates[a]], corpusTF[candidates[b]]
		if ca != cb {
			return ca > cb
		}
		return candidates[a] < candidates[b]
	})
	if len(candidates) > opts.MaxFeatures {
		candidates = candidates[:opts.MaxFeatures]
	}
	sort.Strings(candidates)

	idx := &Index{
		vocab: make(map[string]int, len(candidates)),
		terms: candidates,
		idf:   make([]float64, len(candidates)),
		rows:  make([][]entry, len(texts)),
	}
	n := float64(len(texts))
	for col, t := range candidates {
		idx.vocab[t] = col
		idx.idf[col] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	for i, tokens := range docs {
		idx.rows[i] = idx.vectorize(tokens)
	}
	return idx
}

// vectorize turns tokens into an L2-normalized sparse tf-idf row sorted by
// column. Tokens outside the vocabulary are ignored.
func (idx *Index) vectorize(tokens []string) []entry {
	counts := make(map[int]int)
	for _, t := range tokens {
		if col, ok := idx.vocab[t]; ok {
			counts[col]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	row := make([]entry, 0, len(counts))
	var norm float64
	for col, c := range counts {
		w := float64(c) * idx.idf[col]
		row = append(row, entry{term: col, weight: w})
		norm += w * w
	}
	sort.Slice(row, func(a, b int) bool { return row[a].term < row[b].term })

	norm = math.Sqrt(norm)
	for i := range row {
		row[i].weight /= norm
	}
	return row
}

// Score returns the cosine similarity between query and every document, in
// corpus order, each in [0,1]. A query with no vocabulary terms scores zero
// everywhere. An empty corpus yields an empty slice.
func (idx *Index) Score(query string) []float64 {
	scores := make([]float64, len(idx.rows))
	q := idx.vectorize(Tokenize(query))
	if len(q) == 0 {
		return scores
	}

	qw := make(map[int]float64, len(q))
	for _, e := range q {
		qw[e.term] = e.weight
	}
	for i, row := range idx.rows {
		var dot float64
		for _, e := range row {
			dot += e.weight * qw[e.term]
		}
		scores[i] = clamp01(dot)
	}
	return scores
}

// Len returns the number of fitted documents.
func (idx *Index) Len() int {
	return len(idx.rows)
}

// VocabularySize returns the number of retained terms.
func (idx *Index) VocabularySize() int {
	return len(idx.terms)
}

// Terms returns a copy of the vocabulary in column order.
func (idx *Index) Terms() []string {
	out := make([]string, len(idx.terms))
	copy(out, idx.terms)
	return out
}

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
