// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package recommend

import (
	"errors"
	"time"

	"github.com/tomtom215/coursematch/internal/catalog"
)

var (
	// ErrInvalidQuery is returned for an empty or whitespace-only query.
	ErrInvalidQuery = errors.New("query must not be empty")

	// ErrInvalidTopK is returned when topK is outside [1, MaxTopK].
	ErrInvalidTopK = errors.New("top_k out of range")

	// ErrNoResults is returned when the catalog has no courses to rank.
	ErrNoResults = errors.New("no recommendations found")

	// ErrNoSnapshot is returned when Recommend runs before a snapshot is installed.
	ErrNoSnapshot = errors.New("no index snapshot loaded")
)

// ScoredCandidate carries every intermediate score of one shortlisted course.
// It lives for a single request.
type ScoredCandidate struct {
	CourseID int
	Index    int

	// SemanticRaw and KeywordRaw are in [0,1].
	SemanticRaw float64
	KeywordRaw  float64
	// Hybrid is the fused 0-1 score used to build the shortlist.
	Hybrid float64

	Semantic100 float64
	Keyword100  float64
	Hybrid100   float64

	// RerankRaw is the unbounded reranker logit.
	RerankRaw float64
	Rerank100 float64

	Final float64
}

// Recommendation is one ranked course with its integer scores.
type Recommendation struct {
	catalog.Course

	Score         int `json:"score"`
	SemanticScore int `json:"semantic_score"`
	KeywordScore  int `json:"keyword_score"`
	RerankScore   int `json:"rerank_score"`
}

// Stats reports engine counters and the active snapshot.
type Stats struct {
	Requests        int64     `json:"requests"`
	Errors          int64     `json:"errors"`
	SnapshotVersion string    `json:"snapshot_version,omitempty"`
	Courses         int       `json:"courses"`
	Vocabulary      int       `json:"vocabulary"`
	EmbeddingModel  string    `json:"embedding_model,omitempty"`
	Reranker        string    `json:"reranker"`
	BuiltAt         time.Time `json:"built_at"`
}
