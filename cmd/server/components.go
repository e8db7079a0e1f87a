// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/coursematch/internal/catalog"
	"github.com/tomtom215/coursematch/internal/catalog/sqlcatalog"
	"github.com/tomtom215/coursematch/internal/config"
	"github.com/tomtom215/coursematch/internal/embedding"
	"github.com/tomtom215/coursematch/internal/httpclient"
	"github.com/tomtom215/coursematch/internal/personalize"
	"github.com/tomtom215/coursematch/internal/recommend"
	"github.com/tomtom215/coursematch/internal/recommend/semantic"
	"github.com/tomtom215/coursematch/internal/rerank"
	"github.com/tomtom215/coursematch/internal/service"
)

// Outbound oracle calls retry HTTP 429 responses this many times.
const (
	oracleRetries    = 2
	oracleRetryDelay = 250 * time.Millisecond
)

// Components holds everything main wires into the supervisor tree.
type Components struct {
	Embedder  embedding.Embedder
	Reranker  rerank.Reranker
	Engine    *recommend.Engine
	Loader    *recommend.Loader
	Service   *service.Service
	Explainer personalize.Explainer
}

// Close releases the local models and cache connections.
func (c *Components) Close() error {
	var errs []error
	if c.Embedder != nil {
		errs = append(errs, c.Embedder.Close())
	}
	if closer, ok := c.Reranker.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}

// buildComponents constructs the catalog source, oracles, engine and
// service from cfg. It does not load the catalog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildComponents(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Components, error) {
	source, err := newCatalogSource(&cfg.Catalog)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c := &Components{Embedder: embedder}

	c.Reranker, err = newReranker(&cfg.Rerank)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	engine, err := recommend.NewEngine(engineConfig(&cfg.Recommend), c.Reranker, logger)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("create engine: %w", err)
	}
	c.Engine = engine

	c.Loader, err = recommend.NewLoader(source, embedder, engine)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("create loader: %w", err)
	}

	c.Explainer = newExplainer(&cfg.Personalize)
	c.Service = service.New(engine, c.Explainer, service.Options{
		DefaultTopK:    cfg.Recommend.DefaultTopK,
		MaxTopK:        cfg.Recommend.MaxTopK,
		RequestTimeout: cfg.Recommend.RequestTimeout,
		ExplainTimeout: cfg.Personalize.Timeout,
		Version:        version,
	}, logger)

	logger.Info().
		Str("catalog", source.String()).
		Str("embedding_model", embedder.Model()).
		Str("reranker", c.Reranker.Name()).
		Bool("personalize", c.Explainer != nil).
		Msg("Components initialized")
	return c, nil
}

func newCatalogSource(cfg *config.CatalogConfig) (catalog.Source, error) {
	switch cfg.Driver {
	case "", "file":
		return catalog.NewFileSource(cfg.Path), nil
	case "duckdb", "sqlite":
		return sqlcatalog.New(cfg.Driver, cfg.DSN, cfg.Table), nil
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.Driver)
	}
}

// newEmbedder builds the configured embedding oracle and wraps it in the
// configured cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newEmbedder(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (embedding.Embedder, error) {
	ec := &cfg.Embedding

	var inner embedding.Embedder
	switch ec.Provider {
	case "", "hash":
		inner = embedding.NewHashEmbedder(ec.Dimensions)
	case "openai":
		inner = embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			BaseURL:    ec.BaseURL,
			APIKey:     ec.APIKey,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			BatchSize:  ec.BatchSize,
			Timeout:    ec.Timeout,
		}, httpclient.WithRetry(oracleRetries, oracleRetryDelay))
	case "hugot":
		h, err := embedding.NewHugotEmbedder(embedding.HugotConfig{
			Model:      ec.Model,
			ModelDir:   ec.ModelDir,
			OnnxFile:   ec.OnnxFile,
			Dimensions: ec.Dimensions,
			BatchSize:  ec.BatchSize,
		})
		if err != nil {
			return nil, fmt.Errorf("start hugot embedder: %w", err)
		}
		inner = h
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", ec.Provider)
	}

	store, err := newEmbeddingStore(ctx, &cfg.EmbeddingCache)
	if err != nil {
		_ = inner.Close()
		return nil, err
	}
	if store == nil {
		logger.Info().Str("model", inner.Model()).Msg("Embedding cache disabled")
		return inner, nil
	}

	logger.Info().
		Str("model", inner.Model()).
		Str("cache", store.Name()).
		Dur("ttl", cfg.EmbeddingCache.TTL).
		Msg("Embedding cache enabled")
	return embedding.NewCachedEmbedder(inner, store, cfg.EmbeddingCache.TTL, cfg.EmbeddingCache.KeyPrefix), nil
}

// newEmbeddingStore returns nil for the "none" backend.
func newEmbeddingStore(ctx context.Context, cfg *config.EmbeddingCacheConfig) (embedding.Store, error) {
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "", "memory":
		return embedding.NewMemoryStore(cfg.Capacity, cfg.TTL), nil
	case "redis":
		store, err := embedding.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect embedding cache: %w", err)
		}
		return store, nil
	case "badger":
		store, err := embedding.OpenBadgerStore(cfg.BadgerPath)
		if err != nil {
			return nil, fmt.Errorf("open embedding cache: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown embedding cache backend %q", cfg.Backend)
	}
}

func newReranker(cfg *config.RerankConfig) (rerank.Reranker, error) {
	switch cfg.Provider {
	case "", "overlap":
		return rerank.NewOverlapReranker(), nil
	case "http":
		return rerank.NewHTTPReranker(rerank.HTTPConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, httpclient.WithRetry(oracleRetries, oracleRetryDelay)), nil
	case "hugot":
		r, err := rerank.NewHugotReranker(rerank.HugotConfig{
			Model:     cfg.Model,
			ModelDir:  cfg.ModelDir,
			OnnxFile:  cfg.OnnxFile,
			BatchSize: cfg.BatchSize,
		})
		if err != nil {
			return nil, fmt.Errorf("start hugot reranker: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown rerank provider %q", cfg.Provider)
	}
}

// newExplainer returns nil when personalization is disabled.
func newExplainer(cfg *config.PersonalizeConfig) personalize.Explainer {
	if !cfg.Enabled {
		return nil
	}
	return personalize.NewOpenAIExplainer(personalize.Config{
		BaseURL:       cfg.BaseURL,
		APIKey:        cfg.APIKey,
		Model:         cfg.Model,
		MaxTokens:     cfg.MaxTokens,
		Temperature:   cfg.Temperature,
		TopCourses:    cfg.TopCourses,
		Timeout:       cfg.Timeout,
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
	})
}

func engineConfig(cfg *config.RecommendConfig) *recommend.Config {
	ec := recommend.DefaultConfig()
	ec.SemanticWeight = cfg.SemanticWeight
	ec.KeywordWeight = cfg.KeywordWeight
	ec.HybridWeight = cfg.HybridWeight
	ec.RerankWeight = cfg.RerankWeight
	if cfg.CandidateLimit > 0 {
		ec.CandidateLimit = cfg.CandidateLimit
	}
	if cfg.MaxTopK > 0 {
		ec.MaxTopK = cfg.MaxTopK
	}
	if cfg.MaxFeatures > 0 {
		ec.MaxFeatures = cfg.MaxFeatures
	}
	if cfg.Similarity != "" {
		ec.Similarity = semantic.Measure(cfg.Similarity)
	}
	return ec
}
