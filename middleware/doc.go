// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/arguments", middleware.WithLogging(handler))

Logs request start (method, path, remote) at debug level and completion
(status, duration_ms) at info.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, OPTIONS with headers Content-Type,
Authorization, Idempotency-Key.

# Submission Protection

	limiter := middleware.NewRateLimiter(rate, burst, m)
	idempotent := middleware.WithIdempotency(store, m)
	mux.HandleFunc("POST /api/arguments", limiter.Limit(idempotent(h)))

Limit answers 429 with Retry-After once a client IP spends its burst.
WithIdempotency stores the first response for an Idempotency-Key and
replays it with Idempotent-Replayed: true.

# Metrics

	handler := middleware.WithMetrics(m, mux)

Counts requests by the matched route pattern.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.CodedErrorResponse(w, http.StatusBadRequest, "InvalidSourceURL", "Invalid source URLs", failed)

Parse JSON request bodies:

	var req models.SubmitArgumentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used as the rate limit key.
*/
package middleware
