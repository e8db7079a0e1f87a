// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

// Package service is the request-level facade over the recommendation
// engine. It validates input, applies defaults, attaches the optional
// personalized explanation and turns every failure into an *Error with a
// client-safe message.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/coursematch/internal/catalog"
	"github.com/tomtom215/coursematch/internal/logging"
	"github.com/tomtom215/coursematch/internal/personalize"
	"github.com/tomtom215/coursematch/internal/recommend"
	"github.com/tomtom215/coursematch/internal/validation"
)

// Request is one recommendation request.
type Request struct {
	Query string `json:"query" validate:"notblank"`
	// TopK defaults to Options.DefaultTopK when nil.
	TopK            *int           `json:"top_k,omitempty"`
	UserPreferences map[string]any `json:"user_preferences,omitempty"`
}

// Response is a successful recommendation result.
type Response struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Query           string                     `json:"query"`
	Timestamp       time.Time                  `json:"timestamp"`
	TotalResults    int                        `json:"total_results"`
	// ProcessingTime is in seconds, rounded to two decimals.
	ProcessingTime          float64 `json:"processing_time"`
	PersonalizedExplanation string  `json:"personalized_explanation,omitempty"`
}

// Health reports service readiness.
type Health struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	Version         string    `json:"version"`
	Courses         int       `json:"courses"`
	SnapshotVersion string    `json:"snapshot_version,omitempty"`
	Uptime          float64   `json:"uptime_seconds"`
}

// Health statuses.
const (
	StatusHealthy  = "healthy"
	StatusStarting = "starting"
)

// Options configures a Service.
type Options struct {
	DefaultTopK int
	MaxTopK     int
	// RequestTimeout bounds ranking plus explanation. Zero disables it.
	RequestTimeout time.Duration
	// ExplainTimeout bounds the explanation call alone. Zero disables it.
	ExplainTimeout time.Duration
	Version        string
}

// Service is the recommendation facade.
type Service struct {
	engine    *recommend.Engine
	explainer personalize.Explainer
	opts      Options
	logger    zerolog.Logger
	started   time.Time
	now       func() time.Time
}

// New creates a Service. explainer may be nil to disable personalization.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(engine *recommend.Engine, explainer personalize.Explainer, opts Options, logger zerolog.Logger) *Service {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 5
	}
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = engine.Config().MaxTopK
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Service{
		engine:    engine,
		explainer: explainer,
		opts:      opts,
		logger:    logger.With().Str("component", "service").Logger(),
		started:   time.Now(),
		now:       time.Now,
	}
}

// InvalidTopK is the error returned for an out-of-range or non-integer top_k.
func (s *Service) InvalidTopK() *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Message: fmt.Sprintf("top_k must be an integer between 1 and %d", s.opts.MaxTopK),
	}
}

// Recommend validates req, ranks courses and optionally explains them.
// Every error is an *Error.
func (s *Service) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := s.now()

	if verr := validation.ValidateStruct(&req); verr != nil {
		return nil, &Error{Kind: KindInvalidInput, Message: MsgNoPrompt, Err: verr}
	}
	topK := s.opts.DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if verr := validation.ValidateVar("top_k", topK, fmt.Sprintf("min=1,max=%d", s.opts.MaxTopK)); verr != nil {
		e := s.InvalidTopK()
		e.Err = verr
		return nil, e
	}

	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}

	logger := logging.CtxWith(ctx, s.logger)
	logger.Info().Int("query_len", len(req.Query)).Int("top_k", topK).Msg("Processing recommendation request")

	recs, err := s.engine.Recommend(ctx, req.Query, topK)
	if err != nil {
		return nil, s.translate(logger, err)
	}

	resp := &Response{
		Recommendations: recs,
		Query:           strings.TrimSpace(req.Query),
		TotalResults:    len(recs),
	}
	if s.explainer != nil {
		resp.PersonalizedExplanation = s.explain(ctx, logger, req, recs)
	}

	now := s.now()
	resp.Timestamp = now.UTC()
	resp.ProcessingTime = math.Round(now.Sub(start).Seconds()*100) / 100

	logger.Info().
		Int("returned", len(recs)).
		Float64("processing_time", resp.ProcessingTime).
		Msg("Recommendation request complete")
	return resp, nil
}

// explain returns the model's explanation or FallbackText. It never fails.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (s *Service) explain(ctx context.Context, logger zerolog.Logger, req Request, recs []recommend.Recommendation) string {
	if s.opts.ExplainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ExplainTimeout)
		defer cancel()
	}
	text, err := s.explainer.Explain(ctx, req.Query, req.UserPreferences, recs)
	if err != nil {
		logger.Warn().Err(err).Msg("Personalized explanation failed, using fallback")
		return personalize.FallbackText
	}
	return text
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (s *Service) translate(logger zerolog.Logger, err error) *Error {
	switch {
	case errors.Is(err, recommend.ErrNoResults):
		return &Error{Kind: KindNoResults, Message: MsgNoResults, Err: err}
	case errors.Is(err, recommend.ErrInvalidQuery):
		return &Error{Kind: KindInvalidInput, Message: MsgNoPrompt, Err: err}
	case errors.Is(err, recommend.ErrInvalidTopK):
		e := s.InvalidTopK()
		e.Err = err
		return e
	default:
		logger.Error().Err(err).Msg("Recommendation failed")
		return &Error{Kind: KindSystem, Message: MsgInternal, Err: err}
	}
}

// Courses returns every course of the installed snapshot.
func (s *Service) Courses() ([]catalog.Course, error) {
	snap := s.engine.Snapshot()
	if snap == nil {
		return nil, &Error{Kind: KindSystem, Message: MsgCoursesUnavailable, Err: recommend.ErrNoSnapshot}
	}
	return snap.Catalog().Courses(), nil
}

// Health reports whether an index snapshot is installed.
func (s *Service) Health() Health {
	h := Health{
		Status:    StatusStarting,
		Timestamp: s.now().UTC(),
		Version:   s.opts.Version,
		Uptime:    time.Since(s.started).Seconds(),
	}
	if snap := s.engine.Snapshot(); snap != nil {
		h.Status = StatusHealthy
		h.Courses = snap.Len()
		h.SnapshotVersion = snap.Version()
	}
	return h
}

// Stats exposes the engine counters.
func (s *Service) Stats() recommend.Stats {
	return s.engine.Stats()
}
