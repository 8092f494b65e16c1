package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akeren/go-registration-form/pkg/circuitbreaker"
	"github.com/akeren/go-registration-form/pkg/retry"
)

// RedisBackend is the subset of pkg/redis.RedisCache the store needs.
type RedisBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

type Logger interface {
	Warn(msg string, args ...any)
}

type RedisStoreConfig struct {
	// KeyPrefix namespaces every key, e.g. "registration:".
	KeyPrefix string
	Retry     *retry.Config
	Breaker   *circuitbreaker.Config
	Logger    Logger
	// OwnsBackend closes the backend on Close. The application config owns it by default.
	OwnsBackend bool
}

// RedisStore retries transient failures and stops calling Redis while the breaker is open.
type RedisStore struct {
	backend RedisBackend
	prefix  string
	retry   retry.RetryPolicy
	breaker circuitbreaker.CircuitBreaker
	owns    bool
}

func NewRedisStore(backend RedisBackend, cfg *RedisStoreConfig) *RedisStore {
	if cfg == nil {
		cfg = &RedisStoreConfig{}
	}

	breakerCfg := cfg.Breaker
	if breakerCfg == nil {
		breakerCfg = circuitbreaker.DefaultConfig()
	}
	if cfg.Logger != nil && breakerCfg.OnStateChange == nil {
		logger := cfg.Logger
		breakerCfg.OnStateChange = func(from, to circuitbreaker.CircuitState) {
			logger.Warn("Redis store circuit changed state", "from", from.String(), "to", to.String())
		}
	}
	if breakerCfg.IsFailure == nil {
		breakerCfg.IsFailure = func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		}
	}

	return &RedisStore{
		backend: backend,
		prefix:  cfg.KeyPrefix,
		retry:   retry.NewExponentialBackoff(cfg.Retry),
		breaker: circuitbreaker.NewCircuitBreaker(breakerCfg),
		owns:    cfg.OwnsBackend,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	var value string
	err := s.do(ctx, func(ctx context.Context) error {
		v, err := s.backend.Get(ctx, s.prefix+key)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("kvstore: redis get %q: %w", key, err)
	}

	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	err := s.do(ctx, func(ctx context.Context) error {
		return s.backend.Set(ctx, s.prefix+key, value, 0)
	})
	if err != nil {
		return fmt.Errorf("kvstore: redis set %q: %w", key, err)
	}

	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *RedisStore) Close() error {
	if !s.owns {
		return nil
	}
	return s.backend.Close()
}

// BreakerState is exposed for health reporting.
func (s *RedisStore) BreakerState() circuitbreaker.CircuitState {
	return s.breaker.State()
}

func (s *RedisStore) do(ctx context.Context, op func(ctx context.Context) error) error {
	return s.breaker.Call(func() error {
		return s.retry.Execute(ctx, op)
	})
}
