// Package kvstore provides the flat string key-value store that holds the
// current registration record.
package kvstore

import (
	"context"
	"errors"
)

//go:generate mockgen -source=store.go -destination=mock_store.go -package=kvstore

type Store interface {
	// Get returns ("", nil) when a key is not found.
	Get(ctx context.Context, key string) (string, error)
	// Set overwrites any previous value stored under key.
	Set(ctx context.Context, key string, value string) error
	Ping(ctx context.Context) error
	Close() error
}

// Backend names accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDatabase = "database"
)

var (
	ErrEmptyKey    = errors.New("kvstore: key must not be empty")
	ErrStoreClosed = errors.New("kvstore: store is closed")
)
