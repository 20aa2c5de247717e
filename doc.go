// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the onlyfringe command, the entry point for the
OnlyFringe API server.

OnlyFringe is a public debate platform where every argument and rebuttal
must cite sources and is fact-checked by an AI judge before it is shown.

# Commands

	onlyfringe serve          Run the HTTP API (migrates first)
	onlyfringe migrate        Apply migrations (--rollback N to undo)
	onlyfringe prune          Delete old rejected arguments
	onlyfringe config show    Print the resolved configuration
	onlyfringe version        Print the version

# Starting the Server

With no configuration the server uses a local SQLite file:

	go run . serve

For PostgreSQL:

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... go run . serve

Or with flags:

	go run . serve -p 5000 -t postgres -d "postgres://..."

# Configuration

Every flag has an environment variable; flags win. The fact-check key is
read from the key file (--key-file, default .hexstrike_api_keys) and then
from OPENAI_API_KEY. Without a key the server still runs but every
submission is stored as rejected.

  - PORT (-p): Server port (default: 5000)
  - DATABASE_URL (-d), DATABASE_TYPE (-t): storage
  - MIN_SOURCES_REQUIRED, MIN_ARGUMENT_LENGTH, MAX_ARGUMENT_LENGTH,
    APPROVAL_THRESHOLD: submission rules
  - REDIS_URL: shared idempotency records
  - SUBMIT_RATE, SUBMIT_BURST: per-client submission throttling

# Architecture

  - handlers: HTTP request handlers (users, arguments, health)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, rate limiting, idempotency
  - submission: Validation and the submit workflow
  - factcheck: The AI judge and the approval decision
  - store: Persistence of users, arguments, rebuttals, and sources
  - db: Connections and migrations
  - idempotency, metrics: Supporting services
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
