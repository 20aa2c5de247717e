// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/onlyfringe/idempotency"
	"github.com/danielhkuo/onlyfringe/metrics"
)

// IdempotencyHeader is the optional request header naming a submission
const IdempotencyHeader = "Idempotency-Key"

const maxKeyLength = 255

// captureWriter tees the response so it can be stored for replay
type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// WithIdempotency replays the first response for a repeated
// Idempotency-Key. Requests without the header pass straight through.
// Reusing a key with a different body is refused with 422, and a key whose
// first request is still running gets 409.
func WithIdempotency(store idempotency.Store, m *metrics.Metrics) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if store == nil {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if key == "" {
				next(w, r)
				return
			}
			if len(key) > maxKeyLength {
				ErrorResponse(w, http.StatusBadRequest, "Idempotency-Key is too long")
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
			r.Body.Close()
			if err != nil {
				ErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			ctx := r.Context()
			hash := idempotency.Fingerprint(r.Method, r.URL.Path, body)

			won, err := store.Reserve(ctx, key, hash)
			if err != nil {
				slog.Error("idempotency reserve failed", "error", err)
				ErrorResponse(w, http.StatusServiceUnavailable, "Could not record Idempotency-Key, please retry")
				return
			}
			if !won {
				replay(w, r, store, key, hash, m)
				return
			}

			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next(cw, r)

			// Store even if the client went away
			ctx = context.WithoutCancel(ctx)
			if cw.status >= http.StatusInternalServerError {
				if err := store.Release(ctx, key); err != nil {
					slog.Warn("idempotency release failed", "error", err)
				}
				return
			}

			rec := idempotency.Record{
				RequestHash: hash,
				Status:      cw.status,
				ContentType: cw.Header().Get("Content-Type"),
				Body:        cw.body.Bytes(),
			}
			if err := store.Complete(ctx, key, rec, idempotency.DefaultTTL); err != nil {
				slog.Warn("idempotency complete failed", "error", err)
			}
		}
	}
}

func replay(w http.ResponseWriter, r *http.Request, store idempotency.Store, key, hash string, m *metrics.Metrics) {
	rec, err := store.Get(r.Context(), key)
	if errors.Is(err, idempotency.ErrNotFound) {
		// Released or expired between Reserve and Get
		ErrorResponse(w, http.StatusConflict, "A request with this Idempotency-Key is in progress")
		return
	}
	if err != nil {
		slog.Error("idempotency lookup failed", "error", err)
		ErrorResponse(w, http.StatusServiceUnavailable, "Could not read Idempotency-Key, please retry")
		return
	}

	if rec.RequestHash != hash {
		ErrorResponse(w, http.StatusUnprocessableEntity, "Idempotency-Key was already used with a different request")
		return
	}
	if rec.Pending {
		ErrorResponse(w, http.StatusConflict, "A request with this Idempotency-Key is in progress")
		return
	}

	m.ObserveReplay()
	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(rec.Status)
	w.Write(rec.Body)
}
