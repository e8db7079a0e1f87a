// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

// Package validation wraps go-playground/validator v10 with a shared,
// lazily built validator instance.
//
// Errors name fields by their json tag so messages match request bodies:
//
//	type Request struct {
//	    Query string `json:"query" validate:"notblank"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    if verr.HasField("query") { ... }
//	}
//
// ValidateVar checks a single value, which is how bounds that come from
// configuration are enforced:
//
//	validation.ValidateVar("top_k", k, "min=1,max=20")
package validation
