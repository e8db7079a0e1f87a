// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

// Package config loads Coursematch configuration.
//
// Configuration is layered with Koanf v2 (highest priority wins):
//
//  1. Environment variables (PORT, COURSES_PATH, OPENAI_API_KEY, ...)
//  2. YAML config file (CONFIG_PATH, ./config.yaml, /etc/coursematch/config.yaml)
//  3. Built-in defaults (defaultConfig)
//
// Environment variable names are mapped explicitly in envTransformFunc;
// unknown variables are ignored.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server         ServerConfig         `koanf:"server"`
	Logging        LoggingConfig        `koanf:"logging"`
	Catalog        CatalogConfig        `koanf:"catalog"`
	Embedding      EmbeddingConfig      `koanf:"embedding"`
	EmbeddingCache EmbeddingCacheConfig `koanf:"embedding_cache"`
	Rerank         RerankConfig         `koanf:"rerank"`
	Recommend      RecommendConfig      `koanf:"recommend"`
	Personalize    PersonalizeConfig    `koanf:"personalize"`
	Security       SecurityConfig       `koanf:"security"`

	// OpenAIAPIKey is the shared OPENAI_API_KEY. It fills embedding.api_key and
	// personalize.api_key when those are not set explicitly.
	OpenAIAPIKey string `koanf:"openai_api_key"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	// Default: 0.0.0.0
	Host string `koanf:"host"`

	// Port is the listen port.
	// Default: 5000
	Port int `koanf:"port"`

	// Timeout is the read/write timeout of the HTTP server.
	// Default: 60s
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Environment is development or production.
	// Default: production
	Environment string `koanf:"environment"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// CatalogConfig describes where the course catalog comes from.
type CatalogConfig struct {
	// Driver selects the source: "file" (JSON or YAML by extension),
	// "duckdb" or "sqlite".
	// Default: file
	Driver string `koanf:"driver"`

	// Path is the catalog file for the file driver.
	// Default: courses.json
	Path string `koanf:"path"`

	// DSN is the database DSN for the duckdb and sqlite drivers.
	DSN string `koanf:"dsn"`

	// Table is the table holding courses for SQL drivers.
	// Default: courses
	Table string `koanf:"table"`

	// ReloadInterval rebuilds the index snapshot periodically. 0 disables reloads.
	// Default: 0
	ReloadInterval time.Duration `koanf:"reload_interval"`
}

// EmbeddingConfig selects and configures the embedding oracle.
type EmbeddingConfig struct {
	// Provider is hash, openai or hugot.
	// Default: hash
	Provider string `koanf:"provider"`

	// Model is the embedding model name.
	// Default: sentence-transformers/all-MiniLM-L12-v2
	Model string `koanf:"model"`

	// BaseURL is the OpenAI-compatible API base URL.
	// Default: https://api.openai.com/v1
	BaseURL string `koanf:"base_url"`

	// APIKey is the bearer token for the OpenAI-compatible API.
	APIKey string `koanf:"api_key"`

	// Dimensions is the expected vector size.
	// Default: 384
	Dimensions int `koanf:"dimensions"`

	// BatchSize is the number of texts sent per embedding call.
	// Default: 64
	BatchSize int `koanf:"batch_size"`

	// Timeout bounds one embedding call.
	// Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// ModelDir is where hugot models are downloaded.
	// Default: ./models
	ModelDir string `koanf:"model_dir"`

	// OnnxFile is the ONNX file inside the model repository.
	// Default: onnx/model.onnx
	OnnxFile string `koanf:"onnx_file"`
}

// EmbeddingCacheConfig configures the embedding cache.
type EmbeddingCacheConfig struct {
	// Backend is none, memory, redis or badger.
	// Default: memory
	Backend string `koanf:"backend"`

	// TTL is the lifetime of a cached vector. Bare integers are seconds.
	// Default: 1h
	TTL time.Duration `koanf:"ttl"`

	// Capacity bounds the memory backend.
	// Default: 10000
	Capacity int `koanf:"capacity"`

	// RedisURL is the redis:// URL for the redis backend.
	// Default: redis://localhost:6379/0
	RedisURL string `koanf:"redis_url"`

	// BadgerPath is the data directory for the badger backend.
	// Default: /data/embeddings
	BadgerPath string `koanf:"badger_path"`

	// KeyPrefix prefixes every cache key.
	// Default: embed_
	KeyPrefix string `koanf:"key_prefix"`
}

// RerankConfig selects and configures the pairwise relevance oracle.
type RerankConfig struct {
	// Provider is overlap (local heuristic), hugot (local cross-encoder)
	// or http.
	// Default: overlap
	Provider string `koanf:"provider"`

	// BaseURL of the cross-encoder service for the http provider.
	BaseURL string `koanf:"base_url"`

	// Model is the cross-encoder model name.
	// Default: cross-encoder/ms-marco-MiniLM-L-6-v2
	Model string `koanf:"model"`

	// APIKey is an optional bearer token for the rerank service.
	APIKey string `koanf:"api_key"`

	// Timeout bounds one rerank call.
	// Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// ModelDir caches the downloaded model for the hugot provider.
	// Default: ./models
	ModelDir string `koanf:"model_dir"`

	// OnnxFile is the ONNX file inside the model repository.
	// Default: onnx/model.onnx
	OnnxFile string `koanf:"onnx_file"`

	// BatchSize is the number of pairs per forward pass.
	// Default: 20
	BatchSize int `koanf:"batch_size"`
}

// RecommendConfig holds the fusion constants and request limits.
type RecommendConfig struct {
	// SemanticWeight and KeywordWeight form the hybrid score. Must sum to 1.
	// Default: 0.7 / 0.3
	SemanticWeight float64 `koanf:"semantic_weight"`
	KeywordWeight  float64 `koanf:"keyword_weight"`

	// HybridWeight and RerankWeight form the final score. Must sum to 1.
	// Default: 0.6 / 0.4
	HybridWeight float64 `koanf:"hybrid_weight"`
	RerankWeight float64 `koanf:"rerank_weight"`

	// CandidateLimit is the size of the rerank shortlist.
	// Default: 20
	CandidateLimit int `koanf:"candidate_limit"`

	// DefaultTopK is used when a request omits top_k.
	// Default: 5
	DefaultTopK int `koanf:"default_top_k"`

	// MaxTopK is the largest accepted top_k.
	// Default: 20
	MaxTopK int `koanf:"max_top_k"`

	// MaxFeatures caps the lexical vocabulary.
	// Default: 5000
	MaxFeatures int `koanf:"max_features"`

	// Similarity is cosine or distance.
	// Default: cosine
	Similarity string `koanf:"similarity"`

	// RequestTimeout bounds one recommendation request.
	// Default: 30s
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// PersonalizeConfig configures the optional explanation collaborator.
type PersonalizeConfig struct {
	// Enabled turns on personalized explanations.
	// Default: false
	Enabled bool `koanf:"enabled"`

	// BaseURL is the OpenAI-compatible API base URL.
	// Default: https://api.openai.com/v1
	BaseURL string `koanf:"base_url"`

	// APIKey is the bearer token.
	APIKey string `koanf:"api_key"`

	// Model is the chat model.
	// Default: gpt-3.5-turbo
	Model string `koanf:"model"`

	// MaxTokens bounds the generated explanation.
	// Default: 500
	MaxTokens int `koanf:"max_tokens"`

	// Temperature is the sampling temperature.
	// Default: 0.7
	Temperature float64 `koanf:"temperature"`

	// TopCourses is how many ranked courses are described to the model.
	// Default: 3
	TopCourses int `koanf:"top_courses"`

	// Timeout bounds one completion call.
	// Default: 20s
	Timeout time.Duration `koanf:"timeout"`

	// RatePerSecond and Burst limit outbound completion calls.
	// Default: 2 / 4
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	// CORSOrigins lists allowed origins. Empty allows none, "*" allows all.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs per RateLimitWindow per client IP.
	// Default: 100 per 1m
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled turns rate limiting off.
	// Default: false
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// ShouldWarnAboutCORS reports whether CORS is configured with a wildcard.
func (c *Config) ShouldWarnAboutCORS() bool {
	for _, o := range c.Security.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}
