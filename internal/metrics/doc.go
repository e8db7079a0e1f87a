// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:5000/metrics

# Available Metrics

HTTP Metrics:
  - api_requests_total: requests by method, endpoint and status code
  - api_request_duration_seconds: request latency (histogram)
  - api_active_requests: in-flight requests (gauge)
  - api_rate_limit_hits_total: rate limit rejections

Recommendation Metrics:
  - recommend_requests_total: requests by result
  - recommend_stage_duration_seconds: latency per pipeline stage
    (embed_query, semantic, lexical, fuse, rerank, total)
  - recommend_results: recommendations returned per request

Snapshot Metrics:
  - catalog_courses, lexical_vocabulary_terms: size of the active snapshot
  - snapshot_builds_total, snapshot_build_duration_seconds,
    snapshot_last_success_timestamp

Oracle Metrics:
  - oracle_requests_total, oracle_request_duration_seconds: labelled by
    oracle (embedding, rerank, personalize) and provider
  - cache_hits_total, cache_misses_total, cache_errors_total: embedding cache
  - circuit_breaker_*: state, requests, consecutive failures, transitions

# Usage

	start := time.Now()
	vecs, err := embedder.Embed(ctx, texts)
	metrics.RecordOracleCall("embedding", "openai", time.Since(start), err)
*/
package metrics
