package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig(attempts int) *Config {
	return &Config{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
		Multiplier:  2,
	}
}

func TestExecute_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := NewExponentialBackoff(fastConfig(3)).Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecute_StopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

	err := NewExponentialBackoff(fastConfig(5)).Execute(context.Background(), func(context.Context) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.False(t, IsMaxRetriesExceeded(err))
	assert.Equal(t, 1, calls)
}

func TestExecute_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := NewExponentialBackoff(fastConfig(2)).Execute(context.Background(), func(context.Context) error {
		calls++
		return errors.New("read: connection reset by peer")
	})

	assert.True(t, IsMaxRetriesExceeded(err))
	assert.Equal(t, 2, calls)
}

func TestExecute_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewExponentialBackoff(nil).Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.New("LOADING Redis is loading the dataset in memory")))
	assert.True(t, IsTransient(errors.New("write: broken pipe")))
	assert.False(t, IsTransient(errors.New("redis: nil")))
	assert.False(t, IsTransient(nil))
}
