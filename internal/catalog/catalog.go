// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

// Package catalog loads the static course catalog.
//
// A Catalog is immutable after Load returns. It keeps courses in source
// order, the canonical text of each course (computed once), and an explicit
// id to position map. Nothing in the system assumes ids are contiguous or
// that id-1 is a position.
package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Catalog is an immutable, ordered set of courses.
type Catalog struct {
	courses []Course
	texts   []string
	index   map[int]int
}

// Load reads every record from src, validates it and builds a Catalog.
// All failures are *LoadError (errors.Is(err, ErrLoad)).
func Load(ctx context.Context, src Source) (*Catalog, error) {
	records, err := src.Records(ctx)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, loadErr(src.String(), "cannot read records", err)
	}

	courses := make([]Course, 0, len(records))
	for i := range records {
		c, err := records[i].Course()
		if err != nil {
			return nil, loadErr(src.String(), fmt.Sprintf("record %d", i), err)
		}
		courses = append(courses, c)
	}
	return build(src.String(), courses)
}

// New builds a Catalog directly from courses.
func New(courses []Course) (*Catalog, error) {
	return build("memory", courses)
}

func build(source string, courses []Course) (*Catalog, error) {
	c := &Catalog{
		courses: make([]Course, len(courses)),
		texts:   make([]string, len(courses)),
		index:   make(map[int]int, len(courses)),
	}
	copy(c.courses, courses)

	for i := range c.courses {
		id := c.courses[i].ID
		if id <= 0 {
			return nil, loadErr(source, fmt.Sprintf("record %d: id must be positive, got %d", i, id), nil)
		}
		if prev, dup := c.index[id]; dup {
			return nil, loadErr(source, fmt.Sprintf("record %d: duplicate id %d (first at record %d)", i, id, prev), nil)
		}
		c.index[id] = i
		c.texts[i] = c.courses[i].Text()
	}
	return c, nil
}

// Len returns the number of courses.
func (c *Catalog) Len() int {
	return len(c.courses)
}

// Course returns the course at position i.
func (c *Catalog) Course(i int) Course {
	return c.courses[i]
}

// Text returns the canonical text of the course at position i.
func (c *Catalog) Text(i int) string {
	return c.texts[i]
}

// Courses returns a copy of all courses in catalog order.
func (c *Catalog) Courses() []Course {
	out := make([]Course, len(c.courses))
	copy(out, c.courses)
	return out
}

// Texts returns a copy of all canonical texts in catalog order.
func (c *Catalog) Texts() []string {
	out := make([]string, len(c.texts))
	copy(out, c.texts)
	return out
}

// IndexOf returns the catalog position of the course with the given id.
func (c *Catalog) IndexOf(id int) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// ByID returns the course with the given id.
func (c *Catalog) ByID(id int) (Course, bool) {
	i, ok := c.index[id]
	if !ok {
		return Course{}, false
	}
	return c.courses[i], true
}
