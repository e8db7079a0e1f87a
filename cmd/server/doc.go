// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

/*
Package main is the entry point for the Coursematch server.

Coursematch recommends courses from a catalog for a free-text query. Each
query is scored against a TF-IDF keyword index and a sentence embedding
index, the best 20 candidates are reranked by a cross-encoder, and the
fused scores are returned as integers between 0 and 100.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("coursematch")
	├── IndexSupervisor ("index-layer")
	│   └── Catalog reload service (when CATALOG_RELOAD_INTERVAL > 0)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Startup order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Oracles: embedding model with its cache, reranker, optional LLM explainer
 4. Index: the catalog is loaded and the first snapshot is built
 5. Supervisor tree: reload service and HTTP server

The server refuses to start when the first catalog load fails. A failed
reload keeps serving the previous snapshot.

# Configuration

Common environment variables:

	PORT=5000                      # listen port
	COURSES_PATH=courses.json      # JSON or YAML catalog file
	CATALOG_DRIVER=file            # file, duckdb or sqlite
	EMBEDDING_PROVIDER=hash        # hash, openai or hugot
	CACHE_BACKEND=memory           # none, memory, redis or badger
	RERANK_PROVIDER=overlap        # overlap, hugot or http
	PERSONALIZE_ENABLED=false      # LLM explanations
	OPENAI_API_KEY=sk-...          # shared by embedding and personalize

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops accepting
connections and drains in-flight requests within SHUTDOWN_TIMEOUT, then the
local models and cache connections are closed.

# Example Usage

	export COURSES_PATH=./courses.json
	export EMBEDDING_PROVIDER=hugot
	./coursematch

	curl -s localhost:5000/recommend -d '{"prompt":"intro to machine learning","top_k":3}'
*/
package main
