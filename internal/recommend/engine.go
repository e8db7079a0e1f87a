// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/coursematch/internal/logging"
	"github.com/tomtom215/coursematch/internal/metrics"
	"github.com/tomtom215/coursematch/internal/recommend/semantic"
	"github.com/tomtom215/coursematch/internal/rerank"
)

// Engine ranks courses for a free-text query against the installed Snapshot.
// It is safe for concurrent use; Swap installs a new snapshot without
// disturbing requests already running on the old one.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	reranker rerank.Reranker

	snapshot atomic.Pointer[Snapshot]

	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewEngine creates a new recommendation engine. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, reranker rerank.Reranker, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if reranker == nil {
		return nil, errors.New("reranker is required")
	}

	return &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		reranker: reranker,
	}, nil
}

// Swap installs snap and returns the previous snapshot, if any.
func (e *Engine) Swap(snap *Snapshot) *Snapshot {
	old := e.snapshot.Swap(snap)
	if snap == nil {
		return old
	}
	e.logger.Info().
		Str("version", snap.Version()).
		Int("courses", snap.Len()).
		Msg("Index snapshot installed")
	return old
}

// Snapshot returns the installed snapshot, or nil.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return *e.config
}

// Stats returns request counters and details of the installed snapshot.
func (e *Engine) Stats() Stats {
	st := Stats{
		Requests: e.requestCount.Load(),
		Errors:   e.errorCount.Load(),
		Reranker: e.reranker.Name(),
	}
	if snap := e.snapshot.Load(); snap != nil {
		st.SnapshotVersion = snap.Version()
		st.Courses = snap.Len()
		st.Vocabulary = snap.Vocabulary()
		st.EmbeddingModel = snap.EmbeddingModel()
		st.BuiltAt = snap.BuiltAt()
	}
	return st
}

// Recommend returns the topK best courses for query, best first.
//
// Errors: ErrInvalidQuery, ErrInvalidTopK, ErrNoResults for an empty
// catalog, ErrNoSnapshot, or an oracle failure wrapped with its stage name.
func (e *Engine) Recommend(ctx context.Context, query string, topK int) ([]Recommendation, error) {
	e.requestCount.Add(1)
	start := time.Now()

	logger := logging.CtxWith(ctx, e.logger).With().
		Int("query_len", len(query)).
		Int("top_k", topK).
		Logger()

	recs, err := e.recommend(ctx, query, topK)
	metrics.RecordStage(metrics.StageTotal, time.Since(start))

	if err != nil {
		e.errorCount.Add(1)
		metrics.RecordRecommendation(resultLabel(err), 0)
		logger.Debug().Err(err).Dur("latency", time.Since(start)).Msg("recommendation failed")
		return nil, err
	}

	metrics.RecordRecommendation(metrics.ResultSuccess, len(recs))
	logger.Debug().
		Int("returned", len(recs)).
		Dur("latency", time.Since(start)).
		Msg("recommendation complete")
	return recs, nil
}

func (e *Engine) recommend(ctx context.Context, query string, topK int) ([]Recommendation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidQuery
	}
	if topK < 1 || topK > e.config.MaxTopK {
		return nil, fmt.Errorf("%w: got %d, want 1..%d", ErrInvalidTopK, topK, e.config.MaxTopK)
	}

	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	if snap.Len() == 0 {
		return nil, ErrNoResults
	}

	candidates, err := e.shortlist(ctx, snap, query)
	if err != nil {
		return nil, err
	}
	if err := e.rerank(ctx, snap, query, candidates); err != nil {
		return nil, err
	}

	fuse(e.config, candidates)
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	recs := make([]Recommendation, len(candidates))
	for i, c := range candidates {
		recs[i] = Recommendation{
			Course:        snap.catalog.Course(c.Index),
			Score:         toScore(c.Final),
			SemanticScore: toScore(c.Semantic100),
			KeywordScore:  toScore(c.Keyword100),
			RerankScore:   toScore(c.Rerank100),
		}
	}
	return recs, nil
}

// shortlist scores every course on both signals and keeps the best
// CandidateLimit by hybrid score.
func (e *Engine) shortlist(ctx context.Context, snap *Snapshot, query string) ([]ScoredCandidate, error) {
	t := time.Now()
	qvec, err := semantic.EmbedQuery(ctx, snap.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	metrics.RecordStage(metrics.StageEmbedQuery, time.Since(t))

	t = time.Now()
	sem, err := snap.semantic.Similarity(qvec)
	if err != nil {
		return nil, fmt.Errorf("semantic similarity: %w", err)
	}
	metrics.RecordStage(metrics.StageSemantic, time.Since(t))

	t = time.Now()
	kw := snap.lexical.Score(query)
	metrics.RecordStage(metrics.StageLexical, time.Since(t))

	// Both indexes return scores already clamped to [0,1].
	all := make([]ScoredCandidate, snap.Len())
	for i := range all {
		s, k := sem[i], kw[i]
		all[i] = ScoredCandidate{
			CourseID:    snap.catalog.Course(i).ID,
			Index:       i,
			SemanticRaw: s,
			KeywordRaw:  k,
			Hybrid:      e.config.SemanticWeight*s + e.config.KeywordWeight*k,
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Hybrid != all[j].Hybrid {
			return all[i].Hybrid > all[j].Hybrid
		}
		return all[i].CourseID < all[j].CourseID
	})

	n := min(e.config.CandidateLimit, len(all))
	return all[:n:n], nil
}

// rerank fills RerankRaw and Rerank100 with one batched oracle call.
func (e *Engine) rerank(ctx context.Context, snap *Snapshot, query string, candidates []ScoredCandidate) error {
	t := time.Now()
	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = snap.texts[c.Index]
	}

	logits, err := e.reranker.Score(ctx, query, docs)
	if err != nil {
		return fmt.Errorf("rerank: %w", err)
	}
	if len(logits) != len(candidates) {
		return fmt.Errorf("rerank: %w: got %d scores for %d candidates", rerank.ErrScoreCount, len(logits), len(candidates))
	}
	for i, l := range logits {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return fmt.Errorf("rerank: non-finite score for course %d", candidates[i].CourseID)
		}
	}
	metrics.RecordStage(metrics.StageRerank, time.Since(t))

	lo, hi := logits[0], logits[0]
	for _, l := range logits[1:] {
		lo = min(lo, l)
		hi = max(hi, l)
	}
	// Equal logits carry no ranking signal: every candidate gets 0 and the
	// final order falls back to the hybrid score.
	span := hi - lo
	if span == 0 {
		span = 1
	}
	for i := range candidates {
		candidates[i].RerankRaw = logits[i]
		candidates[i].Rerank100 = (logits[i] - lo) / span * 100
	}
	return nil
}

// fuse computes the 0-100 scores and sorts candidates by final score, then
// hybrid score, then course id.
func fuse(cfg *Config, candidates []ScoredCandidate) {
	t := time.Now()
	for i := range candidates {
		c := &candidates[i]
		c.Semantic100 = c.SemanticRaw * 100
		c.Keyword100 = c.KeywordRaw * 100
		c.Hybrid100 = cfg.SemanticWeight*c.Semantic100 + cfg.KeywordWeight*c.Keyword100
		c.Final = cfg.HybridWeight*c.Hybrid100 + cfg.RerankWeight*c.Rerank100
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Final != b.Final {
			return a.Final > b.Final
		}
		if a.Hybrid100 != b.Hybrid100 {
			return a.Hybrid100 > b.Hybrid100
		}
		return a.CourseID < b.CourseID
	})
	metrics.RecordStage(metrics.StageFuse, time.Since(t))
}

// toScore truncates v toward zero and clamps it to [0,100].
func toScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(100, int(v)))
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrNoResults):
		return metrics.ResultNoResults
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrInvalidTopK):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
