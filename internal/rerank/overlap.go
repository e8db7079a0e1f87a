// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package rerank

import (
	"context"
	"math"
	"strings"

	"github.com/tomtom215/coursematch/internal/recommend/lexical"
)

// OverlapReranker is a local, deterministic stand-in for a cross-encoder.
//
// The logit of a document is
//
//	coverage + 0.5*titleCoverage + 0.25*bigramHits/(queryTerms-1)
//
// where coverage is the fraction of distinct query terms present in the
// document, titleCoverage the fraction present in its first eight words (the
// course title leads every course text), and bigramHits the number of
// adjacent query term pairs that also appear adjacently in the document.
type OverlapReranker struct{}

// NewOverlapReranker returns an OverlapReranker.
func NewOverlapReranker() *OverlapReranker {
	return &OverlapReranker{}
}

// Name implements Reranker.
func (OverlapReranker) Name() string { return "overlap" }

// Score implements Reranker.
func (OverlapReranker) Score(ctx context.Context, query string, docs []string) ([]float64, error) {
	qTerms := lexical.Tokenize(query)
	distinct := dedupe(qTerms)

	scores := make([]float64, len(docs))
	if len(distinct) == 0 {
		return scores, nil
	}
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores[i] = overlapLogit(qTerms, distinct, doc)
	}
	return scores, nil
}

func overlapLogit(qTerms, distinct []string, doc string) float64 {
	dTerms := lexical.Tokenize(doc)
	inDoc := make(map[string]struct{}, len(dTerms))
	for _, t := range dTerms {
		inDoc[t] = struct{}{}
	}
	pairs := make(map[string]struct{}, len(dTerms))
	for j := 1; j < len(dTerms); j++ {
		pairs[dTerms[j-1]+" "+dTerms[j]] = struct{}{}
	}
	title := titleTerms(doc)

	var hits, titleHits float64
	for _, t := range distinct {
		if _, ok := inDoc[t]; ok {
			hits++
		}
		if _, ok := title[t]; ok {
			titleHits++
		}
	}
	n := float64(len(distinct))
	logit := hits/n + 0.5*titleHits/n

	if len(qTerms) > 1 {
		var bigrams float64
		for j := 1; j < len(qTerms); j++ {
			if _, ok := pairs[qTerms[j-1]+" "+qTerms[j]]; ok {
				bigrams++
			}
		}
		logit += 0.25 * bigrams / float64(len(qTerms)-1)
	}
	return math.Round(logit*1e9) / 1e9
}

// titleTerms returns the terms of the first few words of doc.
func titleTerms(doc string) map[string]struct{} {
	const titleWords = 8
	words := strings.Fields(doc)
	if len(words) > titleWords {
		words = words[:titleWords]
	}
	set := make(map[string]struct{})
	for _, t := range lexical.Tokenize(strings.Join(words, " ")) {
		set[t] = struct{}{}
	}
	return set
}

func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
