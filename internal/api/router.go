// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/coursematch/internal/middleware"
)

// Router assembles the chi route tree.
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *MiddlewareConfig
	logger     zerolog.Logger
}

// NewRouter creates a Router. A nil cfg uses DefaultMiddlewareConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(handler *Handler, cfg *MiddlewareConfig, logger zerolog.Logger) *Router {
	if cfg == nil {
		cfg = DefaultMiddlewareConfig()
	}
	return &Router{
		handler:    handler,
		middleware: NewMiddleware(cfg),
		config:     cfg,
		logger:     logger.With().Str("component", "http").Logger(),
	}
}

// Setup returns the root HTTP handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// RequestID first so every later layer logs with the ID.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(router.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())
	r.Use(SecurityHeaders())

	r.NotFound(router.handler.NotFound)
	r.MethodNotAllowed(router.handler.MethodNotAllowed)

	r.Get("/", router.handler.Index)

	// Probes are not rate limited.
	r.Group(func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Get("/health", router.handler.Health)
		r.Get("/api/health", router.handler.Health)
	})

	r.Group(func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		if router.config.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(router.config.RequestTimeout))
		}

		r.Post("/recommend", router.handler.Recommend)
		r.Post("/api/predict", router.handler.Predict)
		r.Get("/courses", router.handler.Courses)
		r.Get("/api/stats", router.handler.Stats)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
