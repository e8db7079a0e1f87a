// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package config

import (
	"fmt"
	"math"
	"net/url"

	"github.com/tomtom215/coursematch/internal/logging"
)

const weightTolerance = 1e-6

var (
	validLogFormats = map[string]bool{
		"json": true, "console": true,
	}
	validCatalogDrivers = map[string]bool{
		"file": true, "duckdb": true, "sqlite": true,
	}
	validEmbeddingProviders = map[string]bool{
		"hash": true, "openai": true, "hugot": true,
	}
	validCacheBackends = map[string]bool{
		"none": true, "memory": true, "redis": true, "badger": true,
	}
	validRerankProviders = map[string]bool{
		"overlap": true, "hugot": true, "http": true,
	}
	validSimilarities = map[string]bool{
		"cosine": true, "distance": true,
	}
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateCatalog,
		c.validateEmbedding,
		c.validateEmbeddingCache,
		c.validateRerank,
		c.validateRecommend,
		c.validatePersonalize,
		c.validateSecurity,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error, fatal, disabled")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if !validCatalogDrivers[c.Catalog.Driver] {
		return fmt.Errorf("CATALOG_DRIVER must be one of: file, duckdb, sqlite")
	}
	if c.Catalog.Driver == "file" && c.Catalog.Path == "" {
		return fmt.Errorf("COURSES_PATH is required when CATALOG_DRIVER=file")
	}
	if c.Catalog.Driver != "file" {
		if c.Catalog.DSN == "" {
			return fmt.Errorf("CATALOG_DSN is required when CATALOG_DRIVER=%s", c.Catalog.Driver)
		}
		if !isIdentifier(c.Catalog.Table) {
			return fmt.Errorf("CATALOG_TABLE must be a plain SQL identifier, got %q", c.Catalog.Table)
		}
	}
	if c.Catalog.ReloadInterval < 0 {
		return fmt.Errorf("catalog.reload_interval must not be negative")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	e := c.Embedding
	if !validEmbeddingProviders[e.Provider] {
		return fmt.Errorf("EMBEDDING_PROVIDER must be one of: hash, openai, hugot")
	}
	if e.Dimensions < 1 {
		return fmt.Errorf("embedding.dimensions must be >= 1")
	}
	if e.BatchSize < 1 {
		return fmt.Errorf("embedding.batch_size must be >= 1")
	}
	if e.Provider == "openai" {
		if err := validateHTTPURL(e.BaseURL, "EMBEDDING_BASE_URL"); err != nil {
			return err
		}
		if e.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}
	}
	if e.Provider == "hugot" && e.ModelDir == "" {
		return fmt.Errorf("embedding.model_dir is required when EMBEDDING_PROVIDER=hugot")
	}
	return nil
}

func (c *Config) validateEmbeddingCache() error {
	ec := c.EmbeddingCache
	if !validCacheBackends[ec.Backend] {
		return fmt.Errorf("CACHE_BACKEND must be one of: none, memory, redis, badger")
	}
	if ec.Backend != "none" && ec.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	switch ec.Backend {
	case "memory":
		if ec.Capacity < 1 {
			return fmt.Errorf("embedding_cache.capacity must be >= 1")
		}
	case "redis":
		u, err := url.Parse(ec.RedisURL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			return fmt.Errorf("REDIS_URL must be a redis:// or rediss:// URL")
		}
	case "badger":
		if ec.BadgerPath == "" {
			return fmt.Errorf("CACHE_BADGER_PATH is required when CACHE_BACKEND=badger")
		}
	}
	return nil
}

func (c *Config) validateRerank() error {
	if !validRerankProviders[c.Rerank.Provider] {
		return fmt.Errorf("RERANK_PROVIDER must be one of: overlap, hugot, http")
	}
	switch c.Rerank.Provider {
	case "http":
		return validateHTTPURL(c.Rerank.BaseURL, "RERANK_BASE_URL")
	case "hugot":
		if c.Rerank.ModelDir == "" {
			return fmt.Errorf("RERANK_MODEL_DIR is required when RERANK_PROVIDER=hugot")
		}
		if c.Rerank.BatchSize < 1 {
			return fmt.Errorf("RERANK_BATCH_SIZE must be at least 1")
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.SemanticWeight < 0 || r.KeywordWeight < 0 || r.HybridWeight < 0 || r.RerankWeight < 0 {
		return fmt.Errorf("recommend weights must not be negative")
	}
	if math.Abs(r.SemanticWeight+r.KeywordWeight-1) > weightTolerance {
		return fmt.Errorf("recommend.semantic_weight + recommend.keyword_weight must equal 1")
	}
	if math.Abs(r.HybridWeight+r.RerankWeight-1) > weightTolerance {
		return fmt.Errorf("recommend.hybrid_weight + recommend.rerank_weight must equal 1")
	}
	if r.CandidateLimit < 1 {
		return fmt.Errorf("recommend.candidate_limit must be >= 1")
	}
	if r.MaxTopK < 1 {
		return fmt.Errorf("recommend.max_top_k must be >= 1")
	}
	if r.DefaultTopK < 1 || r.DefaultTopK > r.MaxTopK {
		return fmt.Errorf("recommend.default_top_k must be between 1 and max_top_k (%d)", r.MaxTopK)
	}
	if r.MaxFeatures < 1 {
		return fmt.Errorf("recommend.max_features must be >= 1")
	}
	if !validSimilarities[r.Similarity] {
		return fmt.Errorf("RECOMMEND_SIMILARITY must be one of: cosine, distance")
	}
	return nil
}

func (c *Config) validatePersonalize() error {
	p := c.Personalize
	if !p.Enabled {
		return nil
	}
	if err := validateHTTPURL(p.BaseURL, "PERSONALIZE_BASE_URL"); err != nil {
		return err
	}
	if p.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when PERSONALIZE_ENABLED=true")
	}
	if p.MaxTokens < 1 {
		return fmt.Errorf("personalize.max_tokens must be >= 1")
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("personalize.temperature must be between 0 and 2")
	}
	if p.RatePerSecond <= 0 || p.Burst < 1 {
		return fmt.Errorf("personalize.rate_per_second and personalize.burst must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be >= 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// validateHTTPURL validates an http(s) base URL. A path is allowed (".../v1"),
// query parameters are not.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters", fieldName)
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
