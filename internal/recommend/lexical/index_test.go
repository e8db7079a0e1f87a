// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package lexical

import (
	"math"
	"reflect"
	"testing"
)

var corpus = []string{
	"Machine learning with Python neural networks",
	"French cooking knife skills and sauces",
	"Deep learning neural networks for computer vision",
	"Introduction to statistics",
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases and drops stop words", "The Art of Python", []string{"art", "python"}},
		{"single characters dropped", "a b c rust C++", []string{"rust"}},
		{"go is a stop word", "Go programming", []string{"programming"}},
		{"punctuation splits", "data-science, ML/AI", []string{"data", "science", "ml", "ai"}},
		{"nfkc folds full-width", "Ｐｙｔｈｏｎ", []string{"python"}},
		{"digits kept", "web3 101", []string{"web3", "101"}},
		{"only stop words", "the and of", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestScoreRanksRelevantDocuments(t *testing.T) {
	t.Parallel()

	idx := Fit(corpus, Options{})
	scores := idx.Score("neural networks")
	if len(scores) != len(corpus) {
		t.Fatalf("len(scores) = %d, want %d", len(scores), len(corpus))
	}
	if scores[0] <= 0 || scores[2] <= 0 {
		t.Errorf("matching documents should score > 0: %v", scores)
	}
	if scores[1] != 0 || scores[3] != 0 {
		t.Errorf("unrelated documents should score 0: %v", scores)
	}
	for i, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("scores[%d] = %v out of [0,1]", i, s)
		}
	}
}

func TestScoreIdenticalTextIsOne(t *testing.T) {
	t.Parallel()

	idx := Fit(corpus, Options{})
	scores := idx.Score(corpus[1])
	if math.Abs(scores[1]-1) > 1e-9 {
		t.Errorf("self similarity = %v, want 1", scores[1])
	}
}

func TestScoreUnknownTermsIsZeroVector(t *testing.T) {
	t.Parallel()

	idx := Fit(corpus, Options{})
	for _, q := range []string{"quantum basketweaving", "the of and", "!!!"} {
		for i, s := range idx.Score(q) {
			if s != 0 {
				t.Errorf("Score(%q)[%d] = %v, want 0", q, i, s)
			}
		}
	}
}

func TestFitEmptyCorpus(t *testing.T) {
	t.Parallel()

	idx := Fit(nil, Options{})
	if got := idx.Score("anything"); len(got) != 0 {
		t.Errorf("Score() on empty corpus = %v, want empty", got)
	}
	if idx.VocabularySize() != 0 {
		t.Errorf("VocabularySize() = %d, want 0", idx.VocabularySize())
	}
}

func TestMaxFeaturesKeepsMostFrequent(t *testing.T) {
	t.Parallel()

	docs := []string{"alpha alpha alpha beta beta gamma", "alpha beta delta"}
	idx := Fit(docs, Options{MaxFeatures: 2})
	if got, want := idx.Terms(), []string{"alpha", "beta"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}

	// Ties on frequency are broken by term.
	idx = Fit([]string{"zeta eta theta"}, Options{MaxFeatures: 2})
	if got, want := idx.Terms(), []string{"eta", "theta"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
}

func TestDefaultMaxFeatures(t *testing.T) {
	t.Parallel()

	idx := Fit(corpus, Options{})
	if idx.VocabularySize() > DefaultMaxFeatures {
		t.Errorf("VocabularySize() = %d exceeds cap", idx.VocabularySize())
	}
}

func TestFitIsDeterministic(t *testing.T) {
	t.Parallel()

	a := Fit(corpus, Options{})
	b := Fit(corpus, Options{})
	if !reflect.DeepEqual(a.Terms(), b.Terms()) {
		t.Fatal("vocabulary differs between fits")
	}
	for _, q := range []string{"learning", "cooking sauces", "statistics python"} {
		if !reflect.DeepEqual(a.Score(q), b.Score(q)) {
			t.Errorf("Score(%q) differs between fits", q)
		}
	}
}

func TestScoresStayInUnitRange(t *testing.T) {
	t.Parallel()

	idx := Fit(corpus, Options{})
	for _, q := range []string{"neural networks", "learning learning learning", "statistics", "unknown words", ""} {
		for i, s := range idx.Score(q) {
			if s < 0 || s > 1 || math.IsNaN(s) {
				t.Errorf("Score(%q)[%d] = %v, want [0,1]", q, i, s)
			}
		}
	}
}

func TestClamp01(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{-0.1, 0},
		{0.25, 0.25},
		{1.0000000002, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
