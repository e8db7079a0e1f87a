// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

//go:build integration

// Package testinfra provides container-backed infrastructure for
// integration tests, built on testcontainers-go.
//
// # Redis
//
// NewRedisContainer starts a real Redis server for the embedding cache:
//
//	func TestCache(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    testinfra.CleanupContainer(t, redis)
//	    store, err := embedding.DialRedis(ctx, redis.URL)
//	    // ...
//	}
//
// Unit tests use miniredis instead; these tests check behavior against a
// real server.
//
// # Running
//
// The files build only with the integration tag:
//
//	go test -tags integration ./internal/testinfra/...
//
// Tests skip when Docker is unavailable. The first run pulls the image.
package testinfra
