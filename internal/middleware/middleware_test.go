// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/coursematch/internal/logging"
	"github.com/tomtom215/coursematch/internal/metrics"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated when missing", "", false},
		{"upstream id preserved", "existing-request-id-12345", true},
		{"oversized id replaced", strings.Repeat("a", maxRequestIDLen+1), false},
		{"id with spaces replaced", "bad id", false},
		{"id with control chars replaced", "abc\x01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ctxID, logID string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = GetRequestID(r.Context())
				logID = logging.RequestIDFromContext(r.Context())
				if logging.CorrelationIDFromContext(r.Context()) == "" {
					t.Error("correlation ID missing from context")
				}
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if tt.keep {
				if got != tt.incoming {
					t.Errorf("X-Request-ID = %q, want %q", got, tt.incoming)
				}
			} else if _, err := uuid.Parse(got); err != nil {
				t.Errorf("X-Request-ID = %q is not a UUID: %v", got, err)
			}
			if ctxID != got || logID != got {
				t.Errorf("context IDs %q/%q do not match header %q", ctxID, logID, got)
			}
		})
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
}

func TestPrometheusMetricsRoutePattern(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/widgets/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Post("/widgets", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	tests := []struct {
		name     string
		method   string
		path     string
		endpoint string
		status   string
	}{
		{"pattern label", http.MethodGet, "/widgets/42", "/widgets/{id}", "418"},
		{"implicit 200", http.MethodPost, "/widgets", "/widgets", "200"},
		{"unmatched", http.MethodGet, "/nope-metrics-test", unmatchedRoute, "404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.status)
			before := testutil.ToFloat64(counter)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if after := testutil.ToFloat64(counter); after != before+1 {
				t.Errorf("api_requests_total{%s,%s,%s} = %v, want %v", tt.method, tt.endpoint, tt.status, after, before+1)
			}
		})
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestAccessLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"success below default level", http.StatusOK, ""},
		{"client error at warn", http.StatusBadRequest, `"level":"warn"`},
		{"server error at error", http.StatusInternalServerError, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out syncBuffer
			logger := logging.NewTestLogger(&out)
			h := RequestID(AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			})))

			req := httptest.NewRequest(http.MethodPost, "/recommend", nil)
			req.Header.Set(RequestIDHeader, "req-1")
			h.ServeHTTP(httptest.NewRecorder(), req)

			line := out.String()
			if tt.wantLevel == "" {
				if line != "" {
					t.Errorf("successful request logged at info: %s", line)
				}
				return
			}
			for _, want := range []string{tt.wantLevel, `"path":"/recommend"`, `"bytes":4`, `"request_id":"req-1"`} {
				if !strings.Contains(line, want) {
					t.Errorf("log line missing %s: %s", want, line)
				}
			}
		})
	}
}
