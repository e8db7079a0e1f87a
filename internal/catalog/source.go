// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Source yields raw catalog records.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
	String() string
}

// Record is an unvalidated catalog row. Pointer fields distinguish an
// absent field from a zero value.
type Record struct {
	ID          *int    `json:"id" yaml:"id"`
	Title       *string `json:"title" yaml:"title"`
	Author      *string `json:"author" yaml:"author"`
	Category    *string `json:"category" yaml:"category"`
	Description *string `json:"description" yaml:"description"`
	Link        *string `json:"link" yaml:"link"`

	University    *string  `json:"university" yaml:"university"`
	Difficulty    *string  `json:"difficulty" yaml:"difficulty"`
	Prerequisites *string  `json:"prerequisites" yaml:"prerequisites"`
	Price         *float64 `json:"price" yaml:"price"`
	DurationWeeks *int     `json:"duration_weeks" yaml:"duration_weeks"`

	EnrollmentDeadline *string `json:"enrollment_deadline" yaml:"enrollment_deadline"`
	StartDate          *string `json:"start_date" yaml:"start_date"`
	EndDate            *string `json:"end_date" yaml:"end_date"`
	ExamDate           *string `json:"exam_date" yaml:"exam_date"`
}

// errMissingField is wrapped with the field name.
var errMissingField = errors.New("missing required field")

// Course validates r and converts it. Required string fields must be present
// and not blank.
func (r *Record) Course() (Course, error) {
	if r.ID == nil {
		return Course{}, fmt.Errorf("%w: id", errMissingField)
	}
	required := []struct {
		name string
		val  *string
	}{
		{"title", r.Title},
		{"author", r.Author},
		{"category", r.Category},
		{"description", r.Description},
		{"link", r.Link},
	}
	for _, f := range required {
		if f.val == nil || strings.TrimSpace(*f.val) == "" {
			return Course{}, fmt.Errorf("%w: %s", errMissingField, f.name)
		}
	}

	c := Course{
		ID:                 *r.ID,
		Title:              *r.Title,
		Author:             *r.Author,
		Category:           *r.Category,
		Description:        *r.Description,
		Link:               *r.Link,
		University:         deref(r.University),
		Difficulty:         deref(r.Difficulty),
		Prerequisites:      deref(r.Prerequisites),
		EnrollmentDeadline: deref(r.EnrollmentDeadline),
		StartDate:          deref(r.StartDate),
		EndDate:            deref(r.EndDate),
		ExamDate:           deref(r.ExamDate),
	}
	if r.Price != nil {
		c.Price = *r.Price
	}
	if r.DurationWeeks != nil {
		c.DurationWeeks = *r.DurationWeeks
	}
	return c, nil
}

// RecordOf converts a Course back into a Record with every field present.
func RecordOf(c Course) Record {
	c2 := c
	return Record{
		ID:                 &c2.ID,
		Title:              &c2.Title,
		Author:             &c2.Author,
		Category:           &c2.Category,
		Description:        &c2.Description,
		Link:               &c2.Link,
		University:         &c2.University,
		Difficulty:         &c2.Difficulty,
		Prerequisites:      &c2.Prerequisites,
		Price:              &c2.Price,
		DurationWeeks:      &c2.DurationWeeks,
		EnrollmentDeadline: &c2.EnrollmentDeadline,
		StartDate:          &c2.StartDate,
		EndDate:            &c2.EndDate,
		ExamDate:           &c2.ExamDate,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FileSource reads a JSON or YAML array of courses from disk. The format is
// chosen by file extension.
type FileSource struct {
	Path string
}

// NewFileSource returns a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) String() string {
	return s.Path
}

// Records implements Source.
func (s *FileSource) Records(_ context.Context) ([]Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, loadErr(s.Path, "cannot read file", err)
	}

	var records []Record
	switch ext := strings.ToLower(filepath.Ext(s.Path)); ext {
	case ".json":
		err = json.Unmarshal(data, &records)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &records)
	default:
		return nil, loadErr(s.Path, fmt.Sprintf("unsupported file extension %q", ext), nil)
	}
	if err != nil {
		return nil, loadErr(s.Path, "malformed catalog", err)
	}
	return records, nil
}

// StaticSource serves records held in memory. Used for fixtures.
type StaticSource struct {
	name    string
	records []Record
}

// Static builds a StaticSource from fully populated courses.
func Static(courses ...Course) *StaticSource {
	records := make([]Record, len(courses))
	for i := range courses {
		records[i] = RecordOf(courses[i])
	}
	return &StaticSource{name: "static", records: records}
}

// StaticRecords builds a StaticSource from raw records.
func StaticRecords(records ...Record) *StaticSource {
	return &StaticSource{name: "static", records: records}
}

func (s *StaticSource) String() string {
	return s.name
}

// Records implements Source.
func (s *StaticSource) Records(_ context.Context) ([]Record, error) {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}
