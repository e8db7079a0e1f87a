// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package recommend

import (
	"context"
	"testing"

	"github.com/tomtom215/coursematch/internal/catalog"
	"github.com/tomtom215/coursematch/internal/embedding"
	"github.com/tomtom215/coursematch/internal/recommend/semantic"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"semantic only", func(c *Config) { c.SemanticWeight, c.KeywordWeight = 1, 0 }, false},
		{"distance measure", func(c *Config) { c.Similarity = semantic.Distance }, false},
		{"hybrid weights off", func(c *Config) { c.KeywordWeight = 0.4 }, true},
		{"final weights off", func(c *Config) { c.RerankWeight = 0.5 }, true},
		{"negative weight", func(c *Config) { c.SemanticWeight, c.KeywordWeight = -0.2, 1.2 }, true},
		{"zero candidates", func(c *Config) { c.CandidateLimit = 0 }, true},
		{"topK above shortlist", func(c *Config) { c.MaxTopK = 25 }, true},
		{"zero features", func(c *Config) { c.MaxFeatures = 0 }, true},
		{"unknown measure", func(c *Config) { c.Similarity = "dot" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildSnapshot(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New([]catalog.Course{
		course(10, "Intro to Go", "goroutines and channels"),
		course(20, "Advanced Go", "generics and the runtime"),
	})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}

	cfg := DefaultConfig()
	cfg.MaxFeatures = 3
	snap, err := BuildSnapshot(context.Background(), cat, embedding.NewHashEmbedder(32), cfg)
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}
	if snap.Len() != 2 || snap.Catalog() != cat {
		t.Errorf("snapshot catalog = %d courses", snap.Len())
	}
	if snap.Vocabulary() != 3 {
		t.Errorf("Vocabulary() = %d, want 3", snap.Vocabulary())
	}
	if snap.EmbeddingModel() != "hash-32" {
		t.Errorf("EmbeddingModel() = %q", snap.EmbeddingModel())
	}
	if snap.Version() == "" || snap.BuiltAt().IsZero() {
		t.Error("snapshot should carry a version and build time")
	}

	if _, err := BuildSnapshot(context.Background(), nil, embedding.NewHashEmbedder(32), nil); err == nil {
		t.Error("BuildSnapshot(nil catalog) should fail")
	}
	if _, err := BuildSnapshot(context.Background(), cat, nil, nil); err == nil {
		t.Error("BuildSnapshot(nil embedder) should fail")
	}
}
