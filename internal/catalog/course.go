// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Course is one catalog entry. Courses are immutable once loaded; accessors
// on Catalog hand out copies.
type Course struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Link        string `json:"link"`

	University    string  `json:"university"`
	Difficulty    string  `json:"difficulty"`
	Prerequisites string  `json:"prerequisites,omitempty"`
	Price         float64 `json:"price"`
	DurationWeeks int     `json:"duration_weeks,omitempty"`

	EnrollmentDeadline string `json:"enrollment_deadline,omitempty"`
	StartDate          string `json:"start_date,omitempty"`
	EndDate            string `json:"end_date,omitempty"`
	ExamDate           string `json:"exam_date,omitempty"`
}

// Text builds the canonical text blob scored by the lexical index, the
// semantic index and the reranker: title, description, category,
// university, difficulty and prerequisites joined by single spaces.
func (c *Course) Text() string {
	parts := []string{c.Title, c.Description, c.Category, c.University, c.Difficulty, c.Prerequisites}
	var b strings.Builder
	for _, p := range parts {
		p = NormalizeText(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}

// NormalizeText applies NFKC normalization, drops control characters and
// collapses runs of whitespace to a single space.
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
