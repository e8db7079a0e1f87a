// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/coursematch/internal/catalog"
	"github.com/tomtom215/coursematch/internal/embedding"
	"github.com/tomtom215/coursematch/internal/logging"
)

// Loader reads a catalog source, builds a snapshot and installs it into an
// Engine. A failed load leaves the installed snapshot in place.
type Loader struct {
	source   catalog.Source
	embedder embedding.Embedder
	engine   *Engine

	// serializes loads so two reloads never build in parallel
	mu sync.Mutex
}

// NewLoader creates a Loader.
func NewLoader(source catalog.Source, e embedding.Embedder, engine *Engine) (*Loader, error) {
	if source == nil || e == nil || engine == nil {
		return nil, errors.New("recommend: loader needs a source, an embedder and an engine")
	}
	return &Loader{source: source, embedder: e, engine: engine}, nil
}

// Load installs a fresh snapshot of the source. It reports false without
// rebuilding when the catalog and embedding model are unchanged since the
// installed snapshot.
func (l *Loader) Load(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cat, err := catalog.Load(ctx, l.source)
	if err != nil {
		return false, err
	}

	current := l.engine.Snapshot()
	if current != nil {
		fp, err := Fingerprint(cat, l.embedder.Model())
		if err != nil {
			return false, err
		}
		if fp == current.Fingerprint() {
			logging.Ctx(ctx).Debug().
				Str("source", l.source.String()).
				Str("version", current.Version()).
				Msg("Catalog unchanged, keeping snapshot")
			return false, nil
		}
	}

	cfg := l.engine.Config()
	snap, err := BuildSnapshot(ctx, cat, l.embedder, &cfg)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", l.source, err)
	}
	old := l.engine.Swap(snap)

	event := logging.Ctx(ctx).Debug().
		Str("source", l.source.String()).
		Str("version", snap.Version()).
		Int("courses", snap.Len())
	if old != nil {
		event = event.Str("replaced", old.Version())
	}
	event.Msg("Catalog reloaded")
	return true, nil
}
