// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

// Package personalize produces a free-text explanation of a ranked course
// list with a chat-completion model. Explanations never change the ranking.
package personalize

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/time/rate"

	"github.com/tomtom215/coursematch/internal/breaker"
	"github.com/tomtom215/coursematch/internal/httpclient"
	"github.com/tomtom215/coursematch/internal/metrics"
	"github.com/tomtom215/coursematch/internal/recommend"
)

// FallbackText replaces the explanation when the model cannot be reached.
const FallbackText = "Unable to generate personalized explanation at this time."

const systemPrompt = "You are a helpful course recommendation assistant. " +
	"Provide personalized, insightful recommendations based on course content and user interests."

// ErrEmptyCompletion is returned when the model answers with no text.
var ErrEmptyCompletion = errors.New("completion returned no text")

// Explainer explains why courses match a query.
type Explainer interface {
	Explain(ctx context.Context, query string, prefs map[string]any, top []recommend.Recommendation) (string, error)
}

// Config configures an OpenAIExplainer.
type Config struct {
	BaseURL       string
	APIKey        string
	Model         string
	MaxTokens     int
	Temperature   float64
	TopCourses    int
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// OpenAIExplainer calls an OpenAI-compatible /chat/completions endpoint.
// Calls are rate limited and pass through a circuit breaker; the output is
// stripped of all markup.
type OpenAIExplainer struct {
	client  *httpclient.Client
	cb      *breaker.Breaker[string]
	limiter *rate.Limiter
	policy  *bluemonday.Policy
	cfg     Config
}

// NewOpenAIExplainer creates an OpenAIExplainer, filling unset fields with
// defaults.
func NewOpenAIExplainer(cfg Config, opts ...httpclient.Option) *OpenAIExplainer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if cfg.TopCourses <= 0 {
		cfg.TopCourses = 3
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}

	return &OpenAIExplainer{
		client:  httpclient.New(cfg.BaseURL, cfg.APIKey, cfg.Timeout, opts...),
		cb:      breaker.New[string](breaker.DefaultSettings("llm-api")),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		policy:  bluemonday.StrictPolicy(),
		cfg:     cfg,
	}
}

// Explain implements Explainer.
func (x *OpenAIExplainer) Explain(ctx context.Context, query string, prefs map[string]any, top []recommend.Recommendation) (string, error) {
	if err := x.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	req := chatRequest{
		Model: x.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(query, prefs, top, x.cfg.TopCourses)},
		},
		MaxTokens:   x.cfg.MaxTokens,
		Temperature: x.cfg.Temperature,
	}

	start := time.Now()
	text, err := x.cb.Execute(func() (string, error) {
		var resp chatResponse
		if err := x.client.PostJSON(ctx, "/chat/completions", req, &resp); err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyCompletion
		}
		return resp.Choices[0].Message.Content, nil
	})
	metrics.RecordOracleCall("personalize", "openai", time.Since(start), err)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(x.policy.Sanitize(text))
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// BuildPrompt describes the first n courses and the user's preferences.
// Preference keys are listed in sorted order.
func BuildPrompt(query string, prefs map[string]any, top []recommend.Recommendation, n int) string {
	if len(top) > n {
		top = top[:n]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the user's query: %q\n\n", query)
	b.WriteString("Here are the most relevant courses found:\n")
	for i, r := range top {
		fmt.Fprintf(&b, "\nCourse %d: %s by %s\n", i+1, r.Title, r.Author)
		fmt.Fprintf(&b, "Category: %s\n", r.Category)
		fmt.Fprintf(&b, "Description: %s\n", r.Description)
		if r.University != "" {
			fmt.Fprintf(&b, "University: %s\n", r.University)
		}
		if r.Difficulty != "" {
			fmt.Fprintf(&b, "Difficulty: %s\n", r.Difficulty)
		}
		fmt.Fprintf(&b, "Relevance Score: %d/100\n", r.Score)
	}

	if len(prefs) > 0 {
		keys := make([]string, 0, len(prefs))
		for k := range prefs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\nUser preferences:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %v\n", k, prefs[k])
		}
	}

	b.WriteString("\nPlease provide a personalized recommendation that includes:\n")
	b.WriteString("1. A brief explanation of why these courses match the user's interests\n")
	b.WriteString("2. Specific recommendations for which courses to take and in what order\n")
	b.WriteString("3. Any additional suggestions based on the course content and user preferences\n\n")
	b.WriteString("Keep the response helpful, concise, and focused on the course content.")
	return b.String()
}
