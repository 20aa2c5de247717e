// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package idempotency

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps records in process. Records are lost on restart.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(DefaultTTL, 10*time.Minute),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (Record, error) {
	if val, found := s.cache.Get(key); found {
		return val.(Record), nil
	}
	return Record{}, ErrNotFound
}

func (s *MemoryStore) Reserve(ctx context.Context, key, requestHash string) (bool, error) {
	// Add fails when the key is present and unexpired
	err := s.cache.Add(key, Record{RequestHash: requestHash, Pending: true}, PendingTTL)
	return err == nil, nil
}

func (s *MemoryStore) Complete(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	rec.Pending = false
	s.cache.Set(key, rec, ttl)
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}
