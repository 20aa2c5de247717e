// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// DefaultTTL is how long a completed response is replayed
const DefaultTTL = 24 * time.Hour

// PendingTTL bounds how long a reservation survives a crashed request
const PendingTTL = 2 * time.Minute

var ErrNotFound = errors.New("idempotency record not found")

// Record is the stored outcome of the first request made with a key.
// A pending record marks a request that is still running.
type Record struct {
	RequestHash string `json:"request_hash"`
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Store keeps records by key
type Store interface {
	// Get returns ErrNotFound for unknown or expired keys
	Get(ctx context.Context, key string) (Record, error)
	// Reserve stores a pending record unless the key exists.
	// It reports whether this caller won the key.
	Reserve(ctx context.Context, key, requestHash string) (bool, error)
	// Complete replaces the record with the final response
	Complete(ctx context.Context, key string, rec Record, ttl time.Duration) error
	// Release forgets a key so the request can be retried
	Release(ctx context.Context, key string) error
}

// Fingerprint identifies a request by method, route, and body
func Fingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
