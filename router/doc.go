// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the OnlyFringe API.

# Route Registration

NewRouter builds the handler tree with all endpoints:

	h := router.NewRouter(cfg, router.Deps{Store: st, Judge: judge})

The returned handler applies CORS and request metrics around the mux.

# Endpoints

Service:

	GET /api         - Welcome document listing the endpoints
	GET /api/health  - Database and fact-check status
	GET /metrics     - Prometheus metrics (404 without a registry)

Users:

	POST /api/users      - Create user
	GET  /api/users/{id} - Get user

Arguments:

	GET  /api/arguments                 - List (?status=, ?category=)
	GET  /api/arguments/{id}            - Get with sources and rebuttals
	POST /api/arguments                 - Submit argument
	POST /api/arguments/{id}/rebuttals  - Submit rebuttal

# Submission Middleware

The two POST submission routes are wrapped, outermost first, with request
logging, a per-client rate limit (disabled when --submit-rate is 0), and
Idempotency-Key replay (disabled when Deps.Idempotency is nil).
*/
package router
