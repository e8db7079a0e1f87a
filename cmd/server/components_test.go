// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/coursematch/internal/catalog"
	"github.com/tomtom215/coursematch/internal/catalog/sqlcatalog"
	"github.com/tomtom215/coursematch/internal/config"
	"github.com/tomtom215/coursematch/internal/embedding"
	"github.com/tomtom215/coursematch/internal/personalize"
	"github.com/tomtom215/coursematch/internal/recommend/semantic"
	"github.com/tomtom215/coursematch/internal/service"
)

const testCatalog = `[
  {"id": 1, "title": "Machine Learning", "author": "Andrew Ng", "category": "Data Science",
   "description": "Supervised learning, neural networks and model evaluation", "link": "https://courses.example.com/ml"},
  {"id": 2, "title": "French Cooking", "author": "Julia Child", "category": "Culinary",
   "description": "Sauces, pastry and classic French techniques", "link": "https://courses.example.com/cooking"},
  {"id": 3, "title": "Statistics 101", "author": "Jane Doe", "category": "Mathematics",
   "description": "Probability, distributions and hypothesis testing", "link": "https://courses.example.com/stats"},
  {"id": 4, "title": "Go Web Services", "author": "Rob Pike", "category": "Programming",
   "description": "HTTP servers, routing and concurrency in Go", "link": "https://courses.example.com/go"}
]`

// testConfig mirrors the built-in defaults with a local catalog and no
// network oracles.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courses.json")
	if err := os.WriteFile(path, []byte(testCatalog), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return &config.Config{
		Catalog: config.CatalogConfig{Driver: "file", Path: path, Table: "courses"},
		Embedding: config.EmbeddingConfig{
			Provider:   "hash",
			Dimensions: 384,
		},
		EmbeddingCache: config.EmbeddingCacheConfig{
			Backend:   "memory",
			TTL:       time.Hour,
			Capacity:  100,
			KeyPrefix: "embed_",
		},
		Rerank: config.RerankConfig{Provider: "overlap"},
		Recommend: config.RecommendConfig{
			SemanticWeight: 0.7,
			KeywordWeight:  0.3,
			HybridWeight:   0.6,
			RerankWeight:   0.4,
			CandidateLimit: 20,
			DefaultTopK:    5,
			MaxTopK:        20,
			MaxFeatures:    5000,
			Similarity:     "cosine",
		},
	}
}

func TestNewCatalogSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      config.CatalogConfig
		wantFile bool
		wantSQL  bool
		wantErr  bool
	}{
		{name: "file", cfg: config.CatalogConfig{Driver: "file", Path: "courses.json"}, wantFile: true},
		{name: "empty driver", cfg: config.CatalogConfig{Path: "courses.yaml"}, wantFile: true},
		{name: "duckdb", cfg: config.CatalogConfig{Driver: "duckdb", DSN: "catalog.db", Table: "courses"}, wantSQL: true},
		{name: "sqlite", cfg: config.CatalogConfig{Driver: "sqlite", DSN: "catalog.sqlite", Table: "courses"}, wantSQL: true},
		{name: "unknown", cfg: config.CatalogConfig{Driver: "postgres"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := newCatalogSource(&tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("newCatalogSource() = %v, want error", src)
				}
				return
			}
			if err != nil {
				t.Fatalf("newCatalogSource() error = %v", err)
			}
			_, isFile := src.(*catalog.FileSource)
			_, isSQL := src.(*sqlcatalog.Source)
			if isFile != tt.wantFile || isSQL != tt.wantSQL {
				t.Errorf("newCatalogSource() = %T", src)
			}
		})
	}
}

func TestNewEmbeddingStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      config.EmbeddingCacheConfig
		wantName string
		wantErr  bool
	}{
		{name: "none", cfg: config.EmbeddingCacheConfig{Backend: "none"}},
		{name: "memory", cfg: config.EmbeddingCacheConfig{Backend: "memory", Capacity: 10, TTL: time.Minute}, wantName: "memory"},
		{name: "default is memory", cfg: config.EmbeddingCacheConfig{Capacity: 10}, wantName: "memory"},
		{name: "badger", cfg: config.EmbeddingCacheConfig{Backend: "badger", BadgerPath: t.TempDir()}, wantName: "badger"},
		{name: "unknown", cfg: config.EmbeddingCacheConfig{Backend: "memcached"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, err := newEmbeddingStore(context.Background(), &tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("newEmbeddingStore() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("newEmbeddingStore() error = %v", err)
			}
			if tt.wantName == "" {
				if store != nil {
					t.Errorf("newEmbeddingStore() = %s, want no store", store.Name())
				}
				return
			}
			defer func() { _ = store.Close() }()
			if store.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", store.Name(), tt.wantName)
			}
		})
	}
}

func TestNewEmbedder(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	e, err := newEmbedder(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newEmbedder() error = %v", err)
	}
	defer func() { _ = e.Close() }()
	if _, ok := e.(*embedding.CachedEmbedder); !ok {
		t.Errorf("newEmbedder() = %T, want a cached embedder", e)
	}
	if e.Dimensions() != 384 {
		t.Errorf("Dimensions() = %d", e.Dimensions())
	}

	cfg.EmbeddingCache.Backend = "none"
	bare, err := newEmbedder(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newEmbedder(no cache) error = %v", err)
	}
	if _, ok := bare.(*embedding.HashEmbedder); !ok {
		t.Errorf("newEmbedder(no cache) = %T, want the bare hash embedder", bare)
	}

	cfg.Embedding.Provider = "word2vec"
	if _, err := newEmbedder(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Error("unknown provider should fail")
	}
}

func TestNewReranker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		provider string
		want     string
	}{
		{"overlap", "overlap"},
		{"", "overlap"},
		{"http", "http"},
	}
	for _, tt := range tests {
		cfg := config.RerankConfig{Provider: tt.provider, BaseURL: "http://rerank.local", Timeout: time.Second}
		r, err := newReranker(&cfg)
		if err != nil {
			t.Fatalf("newReranker(%q) error = %v", tt.provider, err)
		}
		if got := r.Name(); got != tt.want {
			t.Errorf("newReranker(%q).Name() = %q, want %q", tt.provider, got, tt.want)
		}
	}

	if _, err := newReranker(&config.RerankConfig{Provider: "bm25"}); err == nil {
		t.Error("unknown provider should fail")
	}
}

type closingReranker struct {
	closed int
	err    error
}

func (r *closingReranker) Name() string { return "closing" }

func (r *closingReranker) Score(_ context.Context, _ string, docs []string) ([]float64, error) {
	return make([]float64, len(docs)), nil
}

func (r *closingReranker) Close() error {
	r.closed++
	return r.err
}

func TestComponentsClose(t *testing.T) {
	t.Parallel()

	closeErr := errors.New("session busy")
	r := &closingReranker{err: closeErr}
	c := &Components{Embedder: embedding.NewHashEmbedder(8), Reranker: r}
	if err := c.Close(); !errors.Is(err, closeErr) {
		t.Errorf("Close() = %v, want %v", err, closeErr)
	}
	if r.closed != 1 {
		t.Errorf("reranker closed %d times, want 1", r.closed)
	}

	if err := (&Components{}).Close(); err != nil {
		t.Errorf("empty Close() = %v, want nil", err)
	}
}

func TestNewExplainer(t *testing.T) {
	t.Parallel()

	if x := newExplainer(&config.PersonalizeConfig{}); x != nil {
		t.Errorf("disabled explainer = %T, want nil", x)
	}
	x := newExplainer(&config.PersonalizeConfig{Enabled: true, APIKey: "sk-test"})
	if _, ok := x.(*personalize.OpenAIExplainer); !ok {
		t.Errorf("enabled explainer = %T", x)
	}
}

func TestEngineConfig(t *testing.T) {
	t.Parallel()

	rc := testConfig(t).Recommend
	rc.SemanticWeight, rc.KeywordWeight = 0.5, 0.5
	rc.Similarity = "distance"
	rc.CandidateLimit = 0

	ec := engineConfig(&rc)
	if err := ec.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if ec.SemanticWeight != 0.5 || ec.KeywordWeight != 0.5 || ec.Similarity != semantic.Distance {
		t.Errorf("engineConfig() = %+v", ec)
	}
	if ec.CandidateLimit != 20 || ec.MaxTopK != 20 || ec.MaxFeatures != 5000 {
		t.Errorf("unset limits should keep defaults: %+v", ec)
	}
}

func TestBuildComponents(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	comps, err := buildComponents(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("buildComponents() error = %v", err)
	}
	defer func() { _ = comps.Close() }()

	if comps.Explainer != nil {
		t.Error("explainer should be disabled by default")
	}
	if h := comps.Service.Health(); h.Status != service.StatusStarting {
		t.Errorf("Health() before load = %+v", h)
	}

	changed, err := comps.Loader.Load(context.Background())
	if err != nil || !changed {
		t.Fatalf("Load() = %v, %v", changed, err)
	}

	topK := 2
	resp, err := comps.Service.Recommend(context.Background(), service.Request{Query: "cooking sauces", TopK: &topK})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.TotalResults != 2 || resp.Recommendations[0].ID != 2 {
		t.Errorf("Recommend() = %+v", resp.Recommendations)
	}
	if h := comps.Service.Health(); h.Status != service.StatusHealthy || h.Courses != 4 || h.Version != version {
		t.Errorf("Health() after load = %+v", h)
	}
}

func TestBuildComponentsMissingCatalog(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.json")
	comps, err := buildComponents(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("buildComponents() error = %v", err)
	}
	defer func() { _ = comps.Close() }()

	if _, err := comps.Loader.Load(context.Background()); !errors.Is(err, catalog.ErrLoad) {
		t.Errorf("Load() error = %v, want ErrLoad", err)
	}
}

func TestBuildComponentsBadDriver(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Catalog.Driver = "csv"
	if _, err := buildComponents(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Error("buildComponents() should reject an unknown catalog driver")
	}
}
