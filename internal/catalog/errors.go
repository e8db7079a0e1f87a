// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package catalog

import (
	"errors"
	"fmt"
)

// ErrLoad matches every LoadError via errors.Is.
var ErrLoad = errors.New("catalog load failed")

// LoadError reports why a catalog source could not be turned into courses.
type LoadError struct {
	// Source names the catalog source (file path, table).
	Source string
	// Reason is a short human-readable cause.
	Reason string
	// Err is the underlying error, if any.
	Err error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("catalog %s: %s", e.Source, e.Reason)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrLoad.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

func loadErr(source, reason string, err error) *LoadError {
	return &LoadError{Source: source, Reason: reason, Err: err}
}
