// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/coursematch/internal/catalog"
	"github.com/tomtom215/coursematch/internal/embedding"
	"github.com/tomtom215/coursematch/internal/logging"
	"github.com/tomtom215/coursematch/internal/metrics"
	"github.com/tomtom215/coursematch/internal/recommend/lexical"
	"github.com/tomtom215/coursematch/internal/recommend/semantic"
)

// Snapshot is everything a request needs to score a query: the catalog, its
// course texts, both indexes and the embedder that built the semantic index.
// A Snapshot never changes after BuildSnapshot returns, so requests may share
// it without locking.
type Snapshot struct {
	catalog  *catalog.Catalog
	texts    []string
	lexical  *lexical.Index
	semantic *semantic.Index
	embedder embedding.Embedder

	version     string
	fingerprint uint64
	builtAt     time.Time
}

// BuildSnapshot fits the lexical index and embeds every course text. A nil
// cfg uses DefaultConfig.
func BuildSnapshot(ctx context.Context, cat *catalog.Catalog, e embedding.Embedder, cfg *Config) (*Snapshot, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cat == nil {
		return nil, fmt.Errorf("build snapshot: nil catalog")
	}
	if e == nil {
		return nil, fmt.Errorf("build snapshot: nil embedder")
	}

	start := time.Now()
	texts := cat.Texts()
	lex := lexical.Fit(texts, lexical.Options{MaxFeatures: cfg.MaxFeatures})

	sem, err := semantic.Build(ctx, e, texts, cfg.Similarity)
	if err != nil {
		metrics.RecordSnapshotBuild(time.Since(start), 0, 0, err)
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	snap := &Snapshot{
		catalog:  cat,
		texts:    texts,
		lexical:  lex,
		semantic: sem,
		embedder: e,
		version:  uuid.New().String(),
		builtAt:  time.Now().UTC(),
	}
	snap.fingerprint, err = Fingerprint(cat, e.Model())
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	metrics.RecordSnapshotBuild(time.Since(start), cat.Len(), lex.VocabularySize(), nil)

	logging.Ctx(ctx).Info().
		Str("version", snap.version).
		Int("courses", cat.Len()).
		Int("vocabulary", lex.VocabularySize()).
		Str("embedding_model", e.Model()).
		Str("similarity", string(sem.Measure())).
		Dur("duration", time.Since(start)).
		Msg("Index snapshot built")

	return snap, nil
}

// Catalog returns the snapshot's catalog.
func (s *Snapshot) Catalog() *catalog.Catalog { return s.catalog }

// Len returns the number of courses.
func (s *Snapshot) Len() int { return s.catalog.Len() }

// Version is a unique id assigned at build time.
func (s *Snapshot) Version() string { return s.version }

// BuiltAt returns the build time.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Vocabulary returns the lexical vocabulary size.
func (s *Snapshot) Vocabulary() int { return s.lexical.VocabularySize() }

// EmbeddingModel names the model behind the semantic index.
func (s *Snapshot) EmbeddingModel() string { return s.embedder.Model() }

// Fingerprint returns the content hash of the snapshot's catalog and model.
func (s *Snapshot) Fingerprint() uint64 { return s.fingerprint }

// Fingerprint hashes every course record together with the embedding model
// name. Equal fingerprints mean a rebuild would produce the same rankings.
func Fingerprint(cat *catalog.Catalog, model string) (uint64, error) {
	d := xxhash.New()
	_, _ = d.WriteString(model)
	_, _ = d.Write([]byte{0})
	for i := 0; i < cat.Len(); i++ {
		data, err := json.Marshal(cat.Course(i))
		if err != nil {
			return 0, fmt.Errorf("fingerprint course %d: %w", i, err)
		}
		_, _ = d.Write(data)
		_, _ = d.Write([]byte{'\n'})
	}
	return d.Sum64(), nil
}
