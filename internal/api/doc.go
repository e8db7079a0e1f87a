// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

/*
Package api provides the HTTP surface of the recommendation service.

Endpoints:

  - POST /recommend: rank courses for {"prompt", "top_k", "user_preferences"}
  - POST /api/predict: the same pipeline in a {"success", "result"} envelope
  - GET /health, /api/health: readiness (503 until a snapshot is installed)
  - GET /courses: the active catalog
  - GET /api/stats: engine counters and snapshot details
  - GET /: demo page
  - GET /metrics, /swagger/*: observability

Every failure is answered with {"error": message}. Messages are client-safe;
causes are only logged. Facade error kinds map to 400 (invalid input), 404
(no results) and 500 (system error).

Middleware Stack:

Global layers run for every request: request ID, real IP, access log,
panic recovery, CORS and security headers. Recommendation endpoints add
per-IP rate limiting (go-chi/httprate), Prometheus instrumentation and a
request timeout. Health probes skip rate limiting.

Usage:

	h := api.NewHandler(svc, logger)
	router := api.NewRouter(h, api.MiddlewareConfigFrom(cfg), logger)
	srv := &http.Server{Addr: ":8080", Handler: router.Setup()}
*/
package api
