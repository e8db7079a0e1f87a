// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/coursematch/internal/catalog"
	"github.com/tomtom215/coursematch/internal/embedding"
	"github.com/tomtom215/coursematch/internal/personalize"
	"github.com/tomtom215/coursematch/internal/recommend"
	"github.com/tomtom215/coursematch/internal/rerank"
)

var topics = []string{
	"machine learning with python",
	"french cooking techniques",
	"statistics and probability",
	"deep learning for vision",
	"web development with go",
	"data engineering pipelines",
	"music theory basics",
	"financial accounting",
}

func testEngine(t *testing.T, n int) *recommend.Engine {
	t.Helper()
	courses := make([]catalog.Course, n)
	for i := range courses {
		courses[i] = catalog.Course{
			ID:          i + 1,
			Title:       fmt.Sprintf("Course %d", i+1),
			Author:      "Staff",
			Category:    "General",
			Description: topics[i%len(topics)],
			Link:        fmt.Sprintf("https://courses.example.com/%d", i+1),
		}
	}
	cat, err := catalog.New(courses)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	snap, err := recommend.BuildSnapshot(context.Background(), cat, embedding.NewHashEmbedder(128), nil)
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}
	eng, err := recommend.NewEngine(nil, rerank.NewOverlapReranker(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	eng.Swap(snap)
	return eng
}

type fakeExplainer struct {
	text string
	err  error

	mu    sync.Mutex
	query string
	prefs map[string]any
	top   int
}

func (f *fakeExplainer) Explain(_ context.Context, query string, prefs map[string]any, top []recommend.Recommendation) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query, f.prefs, f.top = query, prefs, len(top)
	return f.text, f.err
}

func intPtr(v int) *int { return &v }

func TestRecommendValidation(t *testing.T) {
	t.Parallel()

	svc := New(testEngine(t, 10), nil, Options{}, zerolog.Nop())

	tests := []struct {
		name    string
		req     Request
		wantMsg string
	}{
		{"empty query", Request{Query: ""}, "No prompt provided"},
		{"whitespace query", Request{Query: "   "}, "No prompt provided"},
		{"top_k zero", Request{Query: "python", TopK: intPtr(0)}, "top_k must be an integer between 1 and 20"},
		{"top_k negative", Request{Query: "python", TopK: intPtr(-3)}, "top_k must be an integer between 1 and 20"},
		{"top_k too large", Request{Query: "python", TopK: intPtr(21)}, "top_k must be an integer between 1 and 20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Recommend(context.Background(), tt.req)
			if err == nil {
				t.Fatalf("Recommend() = %+v, want error", resp)
			}
			if KindOf(err) != KindInvalidInput || MessageOf(err) != tt.wantMsg {
				t.Errorf("error = %v (%s, %q), want invalid_input %q", err, KindOf(err), MessageOf(err), tt.wantMsg)
			}
		})
	}

	if st := svc.Stats(); st.Requests != 0 {
		t.Errorf("invalid requests reached the engine: %+v", st)
	}
}

func TestRecommendDefaultsAndEcho(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := New(testEngine(t, 12), nil, Options{}, zerolog.Nop())
	svc.now = func() time.Time { return fixed }

	resp, err := svc.Recommend(context.Background(), Request{Query: "  machine learning  "})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Recommendations) != 5 || resp.TotalResults != 5 {
		t.Errorf("got %d results (total %d), want default 5", len(resp.Recommendations), resp.TotalResults)
	}
	if resp.Query != "machine learning" {
		t.Errorf("Query = %q, want the trimmed request echoed", resp.Query)
	}
	if !resp.Timestamp.Equal(fixed) || resp.ProcessingTime != 0 {
		t.Errorf("Timestamp = %v, ProcessingTime = %v", resp.Timestamp, resp.ProcessingTime)
	}
	if resp.PersonalizedExplanation != "" {
		t.Error("explanation should be empty without an explainer")
	}

	resp, err = svc.Recommend(context.Background(), Request{Query: "cooking", TopK: intPtr(20)})
	if err != nil {
		t.Fatalf("Recommend(top_k=20) error = %v", err)
	}
	if resp.TotalResults != 12 {
		t.Errorf("TotalResults = %d, want all 12 courses", resp.TotalResults)
	}
}

func TestRecommendPersonalization(t *testing.T) {
	t.Parallel()

	eng := testEngine(t, 10)
	plain := New(eng, nil, Options{}, zerolog.Nop())
	want, err := plain.Recommend(context.Background(), Request{Query: "deep learning", TopK: intPtr(4)})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	tests := []struct {
		name     string
		explain  *fakeExplainer
		wantText string
	}{
		{"success", &fakeExplainer{text: "Start with Course 4."}, "Start with Course 4."},
		{"failure falls back", &fakeExplainer{err: errors.New("timeout")}, personalize.FallbackText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := New(eng, tt.explain, Options{ExplainTimeout: time.Second}, zerolog.Nop())
			prefs := map[string]any{"level": "beginner"}
			resp, err := svc.Recommend(context.Background(), Request{Query: "deep learning", TopK: intPtr(4), UserPreferences: prefs})
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if resp.PersonalizedExplanation != tt.wantText {
				t.Errorf("explanation = %q, want %q", resp.PersonalizedExplanation, tt.wantText)
			}
			if !reflect.DeepEqual(resp.Recommendations, want.Recommendations) {
				t.Error("personalization must not change the ranking")
			}
			tt.explain.mu.Lock()
			defer tt.explain.mu.Unlock()
			if tt.explain.query != "deep learning" || tt.explain.top != 4 || tt.explain.prefs["level"] != "beginner" {
				t.Errorf("explainer saw query=%q top=%d prefs=%v", tt.explain.query, tt.explain.top, tt.explain.prefs)
			}
		})
	}
}

func TestRecommendErrorTranslation(t *testing.T) {
	t.Parallel()

	empty, err := catalog.New(nil)
	if err != nil {
		t.Fatalf("catalog.New(nil) error = %v", err)
	}
	snap, err := recommend.BuildSnapshot(context.Background(), empty, embedding.NewHashEmbedder(16), nil)
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}
	eng, err := recommend.NewEngine(nil, rerank.NewOverlapReranker(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	// No snapshot installed yet: system error with a generic message.
	svc := New(eng, nil, Options{}, zerolog.Nop())
	_, err = svc.Recommend(context.Background(), Request{Query: "python"})
	if KindOf(err) != KindSystem || MessageOf(err) != "An internal error occurred" {
		t.Errorf("error = %v, want system error", err)
	}
	if !errors.Is(err, recommend.ErrNoSnapshot) {
		t.Errorf("cause should be kept for logging: %v", err)
	}

	eng.Swap(snap)
	_, err = svc.Recommend(context.Background(), Request{Query: "python"})
	if KindOf(err) != KindNoResults || MessageOf(err) != "No recommendations found" {
		t.Errorf("error = %v, want no results", err)
	}
}

func TestCoursesAndHealth(t *testing.T) {
	t.Parallel()

	eng, err := recommend.NewEngine(nil, rerank.NewOverlapReranker(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	svc := New(eng, nil, Options{Version: "2.0.0"}, zerolog.Nop())

	if h := svc.Health(); h.Status != StatusStarting || h.Courses != 0 || h.Version != "2.0.0" {
		t.Errorf("Health() before snapshot = %+v", h)
	}
	if _, err := svc.Courses(); KindOf(err) != KindSystem || MessageOf(err) != "Unable to load courses" {
		t.Errorf("Courses() error = %v", err)
	}

	loaded := testEngine(t, 3)
	eng.Swap(loaded.Snapshot())

	h := svc.Health()
	if h.Status != StatusHealthy || h.Courses != 3 || h.SnapshotVersion == "" {
		t.Errorf("Health() = %+v", h)
	}
	courses, err := svc.Courses()
	if err != nil || len(courses) != 3 || courses[2].ID != 3 {
		t.Errorf("Courses() = %v, %v", courses, err)
	}
}

func TestErrorFormatting(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	e := &Error{Kind: KindSystem, Message: MsgInternal, Err: cause}
	if e.Error() != "system_error: An internal error occurred: boom" || !errors.Is(e, cause) {
		t.Errorf("Error() = %q", e.Error())
	}
	if KindOf(cause) != KindSystem || MessageOf(cause) != MsgInternal {
		t.Error("plain errors should map to the system kind")
	}
	wrapped := fmt.Errorf("handler: %w", &Error{Kind: KindNoResults, Message: MsgNoResults})
	if KindOf(wrapped) != KindNoResults {
		t.Error("KindOf should see through wrapping")
	}
}
