// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

type echoReq struct {
	Text string `json:"text"`
}

type echoResp struct {
	Upper string `json:"upper"`
}

func TestPostJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/echo" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		var in echoReq
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(echoResp{Upper: strings.ToUpper(in.Text)})
	}))
	defer srv.Close()

	c := New(srv.URL+"/v1/", "secret", time.Second)
	var out echoResp
	if err := c.PostJSON(context.Background(), "/echo", echoReq{Text: "go"}, &out); err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	if out.Upper != "GO" {
		t.Errorf("Upper = %q, want GO", out.Upper)
	}
}

func TestPostJSONStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	err := c.PostJSON(context.Background(), "/x", struct{}{}, &struct{}{})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("PostJSON() error = %v, want *StatusError", err)
	}
	if se.Code != http.StatusServiceUnavailable || se.Body != "model overloaded" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestPostJSONRetriesOn429(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"upper":"OK"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second, WithRetry(3, time.Millisecond))
	var out echoResp
	if err := c.PostJSON(context.Background(), "/x", echoReq{}, &out); err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	if calls.Load() != 3 || out.Upper != "OK" {
		t.Errorf("calls = %d, out = %+v", calls.Load(), out)
	}
}

func TestPostJSONGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second, WithRetry(1, time.Millisecond))
	err := c.PostJSON(context.Background(), "/x", echoReq{}, &echoResp{})
	if err == nil || !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("PostJSON() error = %v, want rate limit error", err)
	}
}

func TestPostJSONContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New("http://127.0.0.1:1", "", time.Second)
	err := c.PostJSON(ctx, "/x", echoReq{}, &echoResp{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("PostJSON() error = %v, want context.Canceled", err)
	}
}
