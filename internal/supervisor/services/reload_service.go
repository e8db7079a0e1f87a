// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/coursematch/internal/logging"
)

// Reloader rebuilds and installs the index snapshot. It reports whether a
// new snapshot was installed. *recommend.Loader satisfies it.
type Reloader interface {
	Load(ctx context.Context) (bool, error)
}

// Sweeper removes expired entries from an in-process cache and reports how
// many it removed. *embedding.CachedEmbedder satisfies it.
type Sweeper interface {
	Sweep() int
}

// ReloadServiceConfig configures the catalog reload loop.
type ReloadServiceConfig struct {
	// Interval between reloads. Default: 5m
	Interval time.Duration

	// Timeout bounds one reload. Default: 10m
	Timeout time.Duration

	// Sweeper, when set, runs after every reload attempt.
	Sweeper Sweeper
}

// ReloadService periodically reloads the catalog and sweeps the embedding
// cache. A failed reload is logged and retried at the next tick; the
// installed snapshot keeps serving.
type ReloadService struct {
	reloader Reloader
	config   ReloadServiceConfig
	logger   zerolog.Logger
}

// NewReloadService creates the service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReloadService(reloader Reloader, cfg ReloadServiceConfig, logger zerolog.Logger) *ReloadService {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &ReloadService{
		reloader: reloader,
		config:   cfg,
		logger:   logger.With().Str("service", "catalog-reload").Logger(),
	}
}

// Serve implements suture.Service.
func (s *ReloadService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.config.Interval).Msg("Catalog reload service starting")

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Catalog reload service stopping")
			return nil
		case <-ticker.C:
			s.reload(ctx)
			s.sweep()
		}
	}
}

func (s *ReloadService) reload(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	ctx = logging.ContextWithNewCorrelationID(ctx)
	logger := logging.CtxWith(ctx, s.logger)

	start := time.Now()
	installed, err := s.reloader.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Catalog reload failed, keeping current snapshot")
		return
	}
	logger.Debug().
		Bool("installed", installed).
		Dur("duration", time.Since(start)).
		Msg("Catalog reload complete")
}

func (s *ReloadService) sweep() {
	if s.config.Sweeper == nil {
		return
	}
	if removed := s.config.Sweeper.Sweep(); removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("Expired embedding cache entries removed")
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *ReloadService) String() string {
	return "catalog-reload"
}
