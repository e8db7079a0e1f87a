// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/coursematch/config.yaml",
	"/etc/coursematch/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			Timeout:         60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "production",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Catalog: CatalogConfig{
			Driver: "file",
			Path:   "courses.json",
			Table:  "courses",
		},
		Embedding: EmbeddingConfig{
			Provider:   "hash",
			Model:      "sentence-transformers/all-MiniLM-L12-v2",
			BaseURL:    "https://api.openai.com/v1",
			Dimensions: 384,
			BatchSize:  64,
			Timeout:    30 * time.Second,
			ModelDir:   "./models",
			OnnxFile:   "onnx/model.onnx",
		},
		EmbeddingCache: EmbeddingCacheConfig{
			Backend:    "memory",
			TTL:        time.Hour,
			Capacity:   10000,
			RedisURL:   "redis://localhost:6379/0",
			BadgerPath: "/data/embeddings",
			KeyPrefix:  "embed_",
		},
		Rerank: RerankConfig{
			Provider: "overlap",
			Model:     "cross-encoder/ms-marco-MiniLM-L-6-v2",
			Timeout:   30 * time.Second,
			ModelDir:  "./models",
			OnnxFile:  "onnx/model.onnx",
			BatchSize: 20,
		},
		Recommend: RecommendConfig{
			SemanticWeight: 0.7,
			KeywordWeight:  0.3,
			HybridWeight:   0.6,
			RerankWeight:   0.4,
			CandidateLimit: 20,
			DefaultTopK:    5,
			MaxTopK:        20,
			MaxFeatures:    5000,
			Similarity:     "cosine",
			RequestTimeout: 30 * time.Second,
		},
		Personalize: PersonalizeConfig{
			Enabled:       false,
			BaseURL:       "https://api.openai.com/v1",
			Model:         "gpt-3.5-turbo",
			MaxTokens:     500,
			Temperature:   0.7,
			TopCourses:    3,
			Timeout:       20 * time.Second,
			RatePerSecond: 2,
			Burst:         4,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
	}
}

// Load loads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	if err := processSecondsFields(k); err != nil {
		return nil, fmt.Errorf("failed to process duration fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.applySharedKeys()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applySharedKeys copies OPENAI_API_KEY into sections without their own key.
func (c *Config) applySharedKeys() {
	if c.OpenAIAPIKey == "" {
		return
	}
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = c.OpenAIAPIKey
	}
	if c.Personalize.APIKey == "" {
		c.Personalize.APIKey = c.OpenAIAPIKey
	}
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// secondsConfigPaths accept a bare integer meaning seconds (CACHE_TTL=3600).
var secondsConfigPaths = []string{
	"embedding_cache.ttl",
	"catalog.reload_interval",
}

func processSecondsFields(k *koanf.Koanf) error {
	for _, path := range secondsConfigPaths {
		var n int
		switch v := k.Get(path).(type) {
		case string:
			parsed, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				continue
			}
			n = parsed
		case int:
			n = v
		case int64:
			n = int(v)
		case float64:
			n = int(v)
		default:
			continue
		}
		if err := k.Set(path, (time.Duration(n) * time.Second).String()); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to config paths.
var envMappings = map[string]string{
	// Server
	"port":             "server.port",
	"http_port":        "server.port",
	"http_host":        "server.host",
	"server_timeout":   "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"app_env":          "server.environment",
	"flask_env":        "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Catalog
	"catalog_driver":          "catalog.driver",
	"courses_path":            "catalog.path",
	"catalog_path":            "catalog.path",
	"catalog_dsn":             "catalog.dsn",
	"catalog_table":           "catalog.table",
	"catalog_reload_interval": "catalog.reload_interval",

	// Embedding
	"openai_api_key":       "openai_api_key",
	"embedding_provider":   "embedding.provider",
	"embedding_model":      "embedding.model",
	"embedding_base_url":   "embedding.base_url",
	"embedding_api_key":    "embedding.api_key",
	"embedding_dimensions": "embedding.dimensions",
	"embedding_batch_size": "embedding.batch_size",
	"embedding_timeout":    "embedding.timeout",
	"embedding_model_dir":  "embedding.model_dir",

	// Embedding cache
	"cache_backend":     "embedding_cache.backend",
	"cache_ttl":         "embedding_cache.ttl",
	"cache_capacity":    "embedding_cache.capacity",
	"redis_url":         "embedding_cache.redis_url",
	"cache_badger_path": "embedding_cache.badger_path",

	// Rerank
	"rerank_provider":   "rerank.provider",
	"rerank_base_url":   "rerank.base_url",
	"rerank_model":      "rerank.model",
	"rerank_api_key":    "rerank.api_key",
	"rerank_timeout":    "rerank.timeout",
	"rerank_model_dir":  "rerank.model_dir",
	"rerank_onnx_file":  "rerank.onnx_file",
	"rerank_batch_size": "rerank.batch_size",

	// Recommend
	"recommend_semantic_weight": "recommend.semantic_weight",
	"recommend_keyword_weight":  "recommend.keyword_weight",
	"recommend_hybrid_weight":   "recommend.hybrid_weight",
	"recommend_rerank_weight":   "recommend.rerank_weight",
	"recommend_candidate_limit": "recommend.candidate_limit",
	"recommend_default_top_k":   "recommend.default_top_k",
	"recommend_max_top_k":       "recommend.max_top_k",
	"recommend_max_features":    "recommend.max_features",
	"recommend_similarity":      "recommend.similarity",
	"recommend_request_timeout": "recommend.request_timeout",

	// Personalize
	"personalize_enabled":     "personalize.enabled",
	"personalize_base_url":    "personalize.base_url",
	"personalize_api_key":     "personalize.api_key",
	"llm_model":               "personalize.model",
	"personalize_max_tokens":  "personalize.max_tokens",
	"personalize_temperature": "personalize.temperature",
	"personalize_timeout":     "personalize.timeout",
	"personalize_rate":        "personalize.rate_per_second",
	"personalize_burst":       "personalize.burst",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_reqs":     "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"rate_limit_disabled": "security.rate_limit_disabled",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
