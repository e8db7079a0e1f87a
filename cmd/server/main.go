// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

// @title Coursematch API
// @version 2.0.0
// @description Hybrid semantic and keyword course recommendations with cross-encoder reranking.
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
// @BasePath /

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "github.com/tomtom215/coursematch/docs" // Import generated swagger docs
	"github.com/tomtom215/coursematch/internal/api"
	"github.com/tomtom215/coursematch/internal/config"
	"github.com/tomtom215/coursematch/internal/embedding"
	"github.com/tomtom215/coursematch/internal/logging"
	"github.com/tomtom215/coursematch/internal/metrics"
	"github.com/tomtom215/coursematch/internal/supervisor"
	"github.com/tomtom215/coursematch/internal/supervisor/services"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "2.0.0"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Coursematch stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires the components into the supervisor tree and blocks until
// SIGINT or SIGTERM.
func run(cfg *config.Config) error {
	logging.Info().Str("version", version).Msg("Starting Coursematch with supervisor tree")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	logSecurityWarnings(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := buildComponents(ctx, cfg, logging.Logger())
	if err != nil {
		return err
	}
	defer func() {
		if err := comps.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing embedder")
		}
	}()

	// The first snapshot is built before the server accepts requests.
	start := time.Now()
	if _, err := comps.Loader.Load(ctx); err != nil {
		return fmt.Errorf("initial catalog load: %w", err)
	}
	snap := comps.Engine.Snapshot()
	logging.Info().
		Int("courses", snap.Len()).
		Int("vocabulary", snap.Vocabulary()).
		Str("snapshot", snap.Version()).
		Dur("took", time.Since(start)).
		Msg("Index snapshot ready")

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if cfg.Catalog.ReloadInterval > 0 {
		sweeper, _ := comps.Embedder.(embedding.Sweeper)
		tree.AddIndexService(services.NewReloadService(comps.Loader, services.ReloadServiceConfig{
			Interval: cfg.Catalog.ReloadInterval,
			Sweeper:  sweeper,
		}, logging.Logger()))
		logging.Info().Dur("interval", cfg.Catalog.ReloadInterval).Msg("Catalog reload service added to supervisor tree")
	}

	router := api.NewRouter(
		api.NewHandler(comps.Service, logging.Logger()),
		api.MiddlewareConfigFrom(cfg),
		logging.Logger(),
	)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.ShutdownTimeout, logging.Logger()))
	logging.Info().Str("addr", addr).Msg("HTTP server service added")

	go trackUptime(ctx, time.Now())

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		stop()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	return nil
}

func logSecurityWarnings(cfg *config.Config) {
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: CORS is configured with wildcard origin (CORS_ORIGINS=*)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  Any website can call the recommendation API from a browser")
		logging.Warn().Msg("  and spend your embedding and LLM quota.")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  RECOMMENDED: Set specific origins in production:")
		logging.Warn().Msg("    CORS_ORIGINS=https://yourdomain.com,https://app.yourdomain.com")
		logging.Warn().Msg("============================================================")
	}

	if cfg.Security.RateLimitDisabled && !cfg.IsDevelopment() {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  NOTICE: Rate limiting is disabled (DISABLE_RATE_LIMIT=true)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  Every request may trigger embedding, rerank and LLM calls.")
		logging.Warn().Msg("  Only disable rate limiting behind a proxy that enforces its own limits.")
		logging.Warn().Msg("============================================================")
	}
}

// trackUptime refreshes the uptime gauge until ctx is done.
func trackUptime(ctx context.Context, started time.Time) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.AppUptime.Set(time.Since(started).Seconds())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
