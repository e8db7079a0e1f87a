// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package embedding

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/coursematch/internal/breaker"
	"github.com/tomtom215/coursematch/internal/httpclient"
	"github.com/tomtom215/coursematch/internal/metrics"
)

// OpenAIConfig configures an OpenAIEmbedder.
type OpenAIConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	// BatchSize is the number of texts per request.
	BatchSize int
	// Concurrency bounds in-flight batch requests.
	Concurrency int
	Timeout     time.Duration
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	client      *httpclient.Client
	cb          *breaker.Breaker[[][]float32]
	model       string
	dims        int
	batchSize   int
	concurrency int
}

// NewOpenAIEmbedder creates an OpenAIEmbedder.
func NewOpenAIEmbedder(cfg OpenAIConfig, opts ...httpclient.Option) *OpenAIEmbedder {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &OpenAIEmbedder{
		client:      httpclient.New(cfg.BaseURL, cfg.APIKey, cfg.Timeout, opts...),
		cb:          breaker.New[[][]float32](breaker.DefaultSettings("embedding-api")),
		model:       cfg.Model,
		dims:        cfg.Dimensions,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
	}
}

// Embed implements Embedder. Batches run concurrently; results keep input order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		g.Go(func() error {
			vecs, err := e.embedBatch(gctx, texts[start:end])
			if err != nil {
				return err
			}
			copy(out[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := e.cb.Execute(func() ([][]float32, error) {
		var resp embeddingsResponse
		if err := e.client.PostJSON(ctx, "/embeddings", embeddingsRequest{Model: e.model, Input: batch}, &resp); err != nil {
			return nil, err
		}
		sort.Slice(resp.Data, func(a, b int) bool { return resp.Data[a].Index < resp.Data[b].Index })
		vecs := make([][]float32, len(resp.Data))
		for i := range resp.Data {
			vecs[i] = resp.Data[i].Embedding
		}
		if err := checkVectors(vecs, len(batch), e.dims); err != nil {
			return nil, err
		}
		return vecs, nil
	})
	metrics.RecordOracleCall("embedding", "openai", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("embed batch of %d: %w", len(batch), err)
	}
	return vecs, nil
}

// Dimensions implements Embedder.
func (e *OpenAIEmbedder) Dimensions() int { return e.dims }

// Model implements Embedder.
func (e *OpenAIEmbedder) Model() string { return e.model }

// Close implements Embedder.
func (e *OpenAIEmbedder) Close() error { return nil }
