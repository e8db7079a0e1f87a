// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

// Package recommend implements the hybrid fusion and reranking engine.
//
// # Pipeline
//
// For a query the engine:
//
//  1. Embeds the query and scores every course by semantic similarity in [0,1].
//  2. Scores every course by TF-IDF cosine similarity in [0,1].
//  3. Fuses them: hybrid = 0.7*semantic + 0.3*keyword.
//  4. Keeps the best 20 courses by hybrid score (ties by course id).
//  5. Scores each shortlisted (query, course text) pair with a reranker in
//     one batched call.
//  6. Min-max normalizes the rerank logits to [0,100]. When all logits are
//     equal every candidate gets 0.
//  7. Rescales semantic, keyword and hybrid scores to [0,100].
//  8. Computes final = 0.6*hybrid100 + 0.4*rerank100.
//  9. Sorts by final, then hybrid100 (both descending), then course id.
//  10. Truncates to topK and converts each score to an int in [0,100].
//
// All weights and the shortlist size come from Config.
//
// # Snapshots
//
// Catalog, course texts and both indexes live in an immutable Snapshot.
// Engine.Swap installs a new one atomically; a running request keeps the
// snapshot it loaded. For a fixed snapshot the ranking is a pure function of
// the query, provided the embedder and reranker are deterministic.
//
// # Usage
//
//	snap, err := recommend.BuildSnapshot(ctx, cat, embedder, cfg)
//	engine, err := recommend.NewEngine(cfg, rerank.NewOverlapReranker(), logging.Logger())
//	engine.Swap(snap)
//	recs, err := engine.Recommend(ctx, "intro to machine learning", 5)
package recommend
