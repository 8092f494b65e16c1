package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRateLimiter_IsLimited_IsPerKey(t *testing.T) {
	ctx := context.Background()
	limiter := NewInMemoryRateLimiter(1, time.Second)

	limited, err := limiter.IsLimited(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, limited, "first request for client-a should not be limited")

	limited, err = limiter.IsLimited(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, limited, "second immediate request for client-a should be limited")

	limited, err = limiter.IsLimited(ctx, "client-b")
	require.NoError(t, err)
	assert.False(t, limited, "client-b has its own bucket")
}

func TestInMemoryRateLimiter_Sweep(t *testing.T) {
	limiter := NewInMemoryRateLimiter(5, time.Second)
	start := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return start }

	_, _ = limiter.IsLimited(context.Background(), "stale")
	limiter.sweep(start.Add(3 * time.Second))

	assert.NotContains(t, limiter.buckets, "stale")
}

func TestNewRateLimiter_DefaultsToInMemory(t *testing.T) {
	limiter := NewRateLimiter(&RateLimitConfig{Requests: 10, Window: time.Minute})

	_, ok := limiter.(*InMemoryRateLimiter)
	assert.True(t, ok)

	requests, window := limiter.GetLimitDetails()
	assert.Equal(t, 10, requests)
	assert.Equal(t, time.Minute, window)
}
