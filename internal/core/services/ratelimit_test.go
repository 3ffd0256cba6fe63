package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	r := NewRateLimiter(2)

	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())
}

func TestRateLimiter_Unlimited(t *testing.T) {
	r := NewRateLimiter(0)
	for range 100 {
		assert.True(t, r.Allow())
	}
}

func TestRateLimiter_Backoff(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRateLimiter(0)
	r.now = func() time.Time { return now }

	r.RecordRateLimitError(10 * time.Second)
	assert.False(t, r.Allow())

	now = now.Add(11 * time.Second)
	assert.True(t, r.Allow())

	r.RecordRateLimitError(0)
	now = now.Add(59 * time.Second)
	assert.False(t, r.Allow())
}
