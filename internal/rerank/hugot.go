// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package rerank

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/tomtom215/coursematch/internal/embedding"
	"github.com/tomtom215/coursematch/internal/metrics"
)

// HugotConfig configures a HugotReranker.
type HugotConfig struct {
	// Model is a Hugging Face cross-encoder repository.
	Model string
	// ModelDir caches downloaded models.
	ModelDir string
	// OnnxFile is the ONNX file inside the repository.
	OnnxFile  string
	BatchSize int
}

// HugotReranker runs a cross-encoder ONNX model in-process with the pure Go
// hugot backend.
type HugotReranker struct {
	mu      sync.Mutex
	session *hugot.Session
	run     func(query string, docs []string) ([]pipelines.CrossEncoderResult, error)
	model   string
}

// NewHugotReranker downloads the model if needed and starts a pipeline.
func NewHugotReranker(cfg HugotConfig) (*HugotReranker, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}

	modelPath, err := embedding.PrepareModel(cfg.Model, cfg.ModelDir, cfg.OnnxFile)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("create hugot session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.CrossEncoderConfig{
		ModelPath: modelPath,
		Name:      "course-reranker",
		Options: []hugot.CrossEncoderOption{
			pipelines.WithBatchSize(cfg.BatchSize),
			pipelines.WithSortResults(false),
		},
	})
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("create rerank pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("create rerank pipeline: %w", err)
	}

	return &HugotReranker{
		session: session,
		run: func(query string, docs []string) ([]pipelines.CrossEncoderResult, error) {
			out, err := pipeline.RunPipeline(query, docs)
			if err != nil {
				return nil, err
			}
			return out.Results, nil
		},
		model: cfg.Model,
	}, nil
}

// Name implements Reranker.
func (r *HugotReranker) Name() string { return "hugot" }

// Model returns the cross-encoder repository name.
func (r *HugotReranker) Model() string { return r.model }

// Score implements Reranker. The pipeline reports sigmoid probabilities;
// they are mapped back to logits so callers see the model's raw scale.
func (r *HugotReranker) Score(ctx context.Context, query string, docs []string) ([]float64, error) {
	if len(docs) == 0 {
		return []float64{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	r.mu.Lock()
	results, err := r.run(query, docs)
	r.mu.Unlock()
	metrics.RecordOracleCall("rerank", "hugot", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("run rerank pipeline: %w", err)
	}
	return logits(results, len(docs))
}

// Close destroys the hugot session.
func (r *HugotReranker) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil
	}
	err := r.session.Destroy()
	r.session = nil
	return err
}

// logits places one logit per document in document order.
func logits(results []pipelines.CrossEncoderResult, n int) ([]float64, error) {
	if len(results) != n {
		return nil, fmt.Errorf("%w: got %d results for %d documents", ErrScoreCount, len(results), n)
	}
	scores := make([]float64, n)
	seen := make([]bool, n)
	for _, res := range results {
		if res.Index < 0 || res.Index >= n || seen[res.Index] {
			return nil, fmt.Errorf("%w: invalid result index %d", ErrScoreCount, res.Index)
		}
		seen[res.Index] = true
		scores[res.Index] = logit(float64(res.Score))
	}
	return scores, nil
}

// logit is the inverse sigmoid, bounded so saturated probabilities stay finite.
func logit(p float64) float64 {
	const eps = 1e-7
	p = math.Min(math.Max(p, eps), 1-eps)
	return math.Round(math.Log(p/(1-p))*1e9) / 1e9
}
