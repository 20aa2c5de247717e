// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/danielhkuo/onlyfringe/metrics"
)

// RateLimiter throttles requests per client IP. Idle clients are forgotten
// after a while so the table does not grow without bound.
type RateLimiter struct {
	limiters *gocache.Cache
	rate     rate.Limit
	burst    int
	metrics  *metrics.Metrics
}

// NewRateLimiter returns nil when perSecond is not positive; a nil
// limiter lets every request through
func NewRateLimiter(perSecond float64, burst int, m *metrics.Metrics) *RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return &RateLimiter{
		limiters: gocache.New(10*time.Minute, 5*time.Minute),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		metrics:  m,
	}
}

// Allow reports whether the client may make a request now
func (l *RateLimiter) Allow(client string) bool {
	return l.limiter(client).Allow()
}

func (l *RateLimiter) limiter(client string) *rate.Limiter {
	if v, ok := l.limiters.Get(client); ok {
		return v.(*rate.Limiter)
	}

	lim := rate.NewLimiter(l.rate, l.burst)
	if err := l.limiters.Add(client, lim, gocache.DefaultExpiration); err != nil {
		// Another request created it first
		if v, ok := l.limiters.Get(client); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Limit refuses requests over the client's budget with 429
func (l *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	if l == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(GetClientIP(r)) {
			l.metrics.ObserveRateLimited()
			retry := int(math.Ceil(1 / float64(l.rate)))
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			ErrorResponse(w, http.StatusTooManyRequests, "Too many submissions, please slow down")
			return
		}
		next(w, r)
	}
}
