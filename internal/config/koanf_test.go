// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points CONFIG_PATH at a missing file and moves into an empty
// directory so no stray config.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Catalog.Path != "courses.json" {
		t.Errorf("Catalog.Path = %q, want courses.json", cfg.Catalog.Path)
	}
	if cfg.Recommend.SemanticWeight != 0.7 || cfg.Recommend.KeywordWeight != 0.3 {
		t.Errorf("hybrid weights = %v/%v, want 0.7/0.3", cfg.Recommend.SemanticWeight, cfg.Recommend.KeywordWeight)
	}
	if cfg.Recommend.HybridWeight != 0.6 || cfg.Recommend.RerankWeight != 0.4 {
		t.Errorf("final weights = %v/%v, want 0.6/0.4", cfg.Recommend.HybridWeight, cfg.Recommend.RerankWeight)
	}
	if cfg.Recommend.CandidateLimit != 20 {
		t.Errorf("CandidateLimit = %d, want 20", cfg.Recommend.CandidateLimit)
	}
	if cfg.Recommend.MaxFeatures != 5000 {
		t.Errorf("MaxFeatures = %d, want 5000", cfg.Recommend.MaxFeatures)
	}
	if cfg.Recommend.DefaultTopK != 5 || cfg.Recommend.MaxTopK != 20 {
		t.Errorf("top_k bounds = %d/%d, want 5/20", cfg.Recommend.DefaultTopK, cfg.Recommend.MaxTopK)
	}
	if cfg.EmbeddingCache.TTL != time.Hour {
		t.Errorf("EmbeddingCache.TTL = %v, want 1h", cfg.EmbeddingCache.TTL)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("Embedding.Dimensions = %d, want 384", cfg.Embedding.Dimensions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"PORT", "server.port"},
		{"COURSES_PATH", "catalog.path"},
		{"OPENAI_API_KEY", "openai_api_key"},
		{"REDIS_URL", "embedding_cache.redis_url"},
		{"CACHE_TTL", "embedding_cache.ttl"},
		{"LLM_MODEL", "personalize.model"},
		{"FLASK_ENV", "server.environment"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"HOME", ""},
		{"RANDOM_THING", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)

	t.Setenv("PORT", "8080")
	t.Setenv("COURSES_PATH", "/srv/catalog.json")
	t.Setenv("CACHE_TTL", "120")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Catalog.Path != "/srv/catalog.json" {
		t.Errorf("Catalog.Path = %q", cfg.Catalog.Path)
	}
	if cfg.EmbeddingCache.TTL != 2*time.Minute {
		t.Errorf("EmbeddingCache.TTL = %v, want 2m", cfg.EmbeddingCache.TTL)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Embedding.APIKey != "sk-test" || cfg.Personalize.APIKey != "sk-test" {
		t.Errorf("shared API key not applied: embedding=%q personalize=%q", cfg.Embedding.APIKey, cfg.Personalize.APIKey)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfigFileAndEnvPriority(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "coursematch.yaml")
	content := `
server:
  port: 7000
recommend:
  candidate_limit: 10
  similarity: distance
embedding_cache:
  backend: none
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("RECOMMEND_CANDIDATE_LIMIT", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 from file", cfg.Server.Port)
	}
	if cfg.Recommend.CandidateLimit != 15 {
		t.Errorf("CandidateLimit = %d, want 15 from env", cfg.Recommend.CandidateLimit)
	}
	if cfg.Recommend.Similarity != "distance" {
		t.Errorf("Similarity = %q, want distance", cfg.Recommend.Similarity)
	}
	if cfg.EmbeddingCache.Backend != "none" {
		t.Errorf("EmbeddingCache.Backend = %q, want none", cfg.EmbeddingCache.Backend)
	}
	if cfg.Recommend.SemanticWeight != 0.7 {
		t.Errorf("SemanticWeight = %v, want default 0.7", cfg.Recommend.SemanticWeight)
	}
}

func TestLoadValidationFailure(t *testing.T) {
	isolate(t)
	t.Setenv("RECOMMEND_SEMANTIC_WEIGHT", "0.9")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error for weights not summing to 1")
	}
	if !strings.Contains(err.Error(), "semantic_weight") {
		t.Errorf("error = %v, want mention of semantic_weight", err)
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := isolate(t)

	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: {}\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if got := findConfigFile(); got != "config.yaml" {
		t.Errorf("findConfigFile() = %q, want config.yaml", got)
	}
}
