package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultBackoff applies when a provider rejects a request without saying
// when to retry.
const defaultBackoff = 60 * time.Second

// RateLimiter throttles outbound LLM requests with a token bucket and an
// optional backoff window after the provider reports a quota error.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter allows requestsPerMinute requests per minute with a burst
// of the same size. A non-positive rate disables throttling.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	limit := rate.Inf
	burst := 1
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
		burst = requestsPerMinute
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}
}

// Allow reports whether a request may be made now without blocking.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if r.now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}

// RecordRateLimitError starts a backoff window.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}
	r.retryAt = r.now().Add(retryAfter)
}
