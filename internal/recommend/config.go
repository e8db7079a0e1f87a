// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package recommend

import (
	"fmt"
	"math"

	"github.com/tomtom215/coursematch/internal/recommend/lexical"
	"github.com/tomtom215/coursematch/internal/recommend/semantic"
)

// weightTolerance is how far a weight pair may drift from summing to 1.
const weightTolerance = 1e-6

// Config contains the fusion constants of the engine.
type Config struct {
	// SemanticWeight and KeywordWeight combine the two retrieval signals into
	// the hybrid score. They must sum to 1.
	SemanticWeight float64 `json:"semantic_weight"`
	KeywordWeight  float64 `json:"keyword_weight"`

	// HybridWeight and RerankWeight combine the hybrid score and the
	// normalized rerank score into the final score. They must sum to 1.
	HybridWeight float64 `json:"hybrid_weight"`
	RerankWeight float64 `json:"rerank_weight"`

	// CandidateLimit is the size of the shortlist sent to the reranker.
	CandidateLimit int `json:"candidate_limit"`

	// MaxTopK is the largest topK the engine accepts.
	MaxTopK int `json:"max_top_k"`

	// MaxFeatures caps the lexical vocabulary.
	MaxFeatures int `json:"max_features"`

	// Similarity selects how semantic closeness is scored.
	Similarity semantic.Measure `json:"similarity"`
}

// DefaultConfig returns the standard 70/30 hybrid and 60/40 final weighting.
func DefaultConfig() *Config {
	return &Config{
		SemanticWeight: 0.7,
		KeywordWeight:  0.3,
		HybridWeight:   0.6,
		RerankWeight:   0.4,
		CandidateLimit: 20,
		MaxTopK:        20,
		MaxFeatures:    lexical.DefaultMaxFeatures,
		Similarity:     semantic.Cosine,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := validatePair("semantic_weight", c.SemanticWeight, "keyword_weight", c.KeywordWeight); err != nil {
		return err
	}
	if err := validatePair("hybrid_weight", c.HybridWeight, "rerank_weight", c.RerankWeight); err != nil {
		return err
	}
	if c.CandidateLimit < 1 {
		return fmt.Errorf("candidate_limit must be positive, got %d", c.CandidateLimit)
	}
	if c.MaxTopK < 1 {
		return fmt.Errorf("max_top_k must be positive, got %d", c.MaxTopK)
	}
	if c.MaxTopK > c.CandidateLimit {
		return fmt.Errorf("max_top_k (%d) must not exceed candidate_limit (%d)", c.MaxTopK, c.CandidateLimit)
	}
	if c.MaxFeatures < 1 {
		return fmt.Errorf("max_features must be positive, got %d", c.MaxFeatures)
	}
	switch c.Similarity {
	case semantic.Cosine, semantic.Distance:
	default:
		return fmt.Errorf("similarity must be cosine or distance, got %q", c.Similarity)
	}
	return nil
}

func validatePair(aName string, a float64, bName string, b float64) error {
	if a < 0 || a > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %f", aName, a)
	}
	if b < 0 || b > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %f", bName, b)
	}
	if math.Abs(a+b-1) > weightTolerance {
		return fmt.Errorf("%s + %s must equal 1, got %f", aName, bName, a+b)
	}
	return nil
}
