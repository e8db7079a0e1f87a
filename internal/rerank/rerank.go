// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

// Package rerank provides pairwise relevance oracles. A Reranker returns one
// raw logit per (query, document) pair; callers normalize the scale.
package rerank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/coursematch/internal/breaker"
	"github.com/tomtom215/coursematch/internal/httpclient"
	"github.com/tomtom215/coursematch/internal/metrics"
)

// DefaultModel is the cross-encoder run by HugotReranker and requested from
// the HTTP reranker.
const DefaultModel = "cross-encoder/ms-marco-MiniLM-L-6-v2"

// ErrScoreCount is returned when an oracle returns the wrong number of scores.
var ErrScoreCount = errors.New("rerank score count mismatch")

// Reranker scores every document against query in one call.
type Reranker interface {
	Name() string
	Score(ctx context.Context, query string, docs []string) ([]float64, error)
}

// HTTPConfig configures an HTTPReranker.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

// rerankResponse accepts either a flat score list or indexed results
// (Cohere/Jina/TEI style).
type rerankResponse struct {
	Scores  []float64 `json:"scores"`
	Results []struct {
		Index          int      `json:"index"`
		Score          *float64 `json:"score"`
		RelevanceScore *float64 `json:"relevance_score"`
	} `json:"results"`
}

// HTTPReranker calls a cross-encoder service at {base}/rerank.
type HTTPReranker struct {
	client *httpclient.Client
	cb     *breaker.Breaker[[]float64]
	model  string
}

// NewHTTPReranker creates an HTTPReranker.
func NewHTTPReranker(cfg HTTPConfig, opts ...httpclient.Option) *HTTPReranker {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &HTTPReranker{
		client: httpclient.New(cfg.BaseURL, cfg.APIKey, cfg.Timeout, opts...),
		cb:     breaker.New[[]float64](breaker.DefaultSettings("rerank-api")),
		model:  cfg.Model,
	}
}

// Name implements Reranker.
func (r *HTTPReranker) Name() string { return "http" }

// Score implements Reranker.
func (r *HTTPReranker) Score(ctx context.Context, query string, docs []string) ([]float64, error) {
	if len(docs) == 0 {
		return []float64{}, nil
	}

	start := time.Now()
	scores, err := r.cb.Execute(func() ([]float64, error) {
		var resp rerankResponse
		req := rerankRequest{Model: r.model, Query: query, Documents: docs}
		if err := r.client.PostJSON(ctx, "/rerank", req, &resp); err != nil {
			return nil, err
		}
		return resp.ordered(len(docs))
	})
	metrics.RecordOracleCall("rerank", "http", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// ordered returns one score per document in document order.
func (resp *rerankResponse) ordered(n int) ([]float64, error) {
	if resp.Scores != nil {
		if len(resp.Scores) != n {
			return nil, fmt.Errorf("%w: got %d scores for %d documents", ErrScoreCount, len(resp.Scores), n)
		}
		return resp.Scores, nil
	}

	if len(resp.Results) != n {
		return nil, fmt.Errorf("%w: got %d results for %d documents", ErrScoreCount, len(resp.Results), n)
	}
	scores := make([]float64, n)
	seen := make([]bool, n)
	for _, res := range resp.Results {
		if res.Index < 0 || res.Index >= n || seen[res.Index] {
			return nil, fmt.Errorf("%w: invalid result index %d", ErrScoreCount, res.Index)
		}
		seen[res.Index] = true
		switch {
		case res.Score != nil:
			scores[res.Index] = *res.Score
		case res.RelevanceScore != nil:
			scores[res.Index] = *res.RelevanceScore
		default:
			return nil, fmt.Errorf("%w: result %d has no score", ErrScoreCount, res.Index)
		}
	}
	return scores, nil
}
