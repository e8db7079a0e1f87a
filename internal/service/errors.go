// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package service

import "errors"

// Kind classifies a failed request.
type Kind string

// Error kinds.
const (
	KindInvalidInput Kind = "invalid_input"
	KindNoResults    Kind = "no_results"
	KindSystem       Kind = "system_error"
)

// Client-facing messages.
const (
	MsgNoPrompt           = "No prompt provided"
	MsgNoResults          = "No recommendations found"
	MsgInternal           = "An internal error occurred"
	MsgCoursesUnavailable = "Unable to load courses"
)

// Error is a failed request. Message is safe to show to clients; Err holds
// the cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindSystem when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSystem
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return MsgInternal
}
