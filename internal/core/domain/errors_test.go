package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitError(t *testing.T) {
	err := fmt.Errorf("suggest codes: %w", &RateLimitError{Provider: "openai", RetryAfter: 30 * time.Second})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.EqualError(t, err, "suggest codes: openai: rate limited, retry in 30s")

	var rle *RateLimitError
	assert.True(t, errors.As(err, &rle))
	assert.Equal(t, 30*time.Second, rle.RetryAfter)

	assert.EqualError(t, &RateLimitError{Provider: "anthropic"}, "anthropic: rate limited")
}
