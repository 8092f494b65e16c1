package config

import (
	"fmt"
	"strings"

	"github.com/akeren/go-registration-form/internal/kvstore"
	"github.com/akeren/go-registration-form/internal/log"
	"github.com/akeren/go-registration-form/pkg/utils"
	"gorm.io/gorm"
)

const storeKeyPrefix = "registration:"

func GetStoreBackend() string {
	return strings.ToLower(utils.GetEnvTrimmedOrDefault("STORE_BACKEND", kvstore.BackendMemory))
}

// NewStore builds the registration store for backend. The redis backend
// needs a cache, the database backend needs db.
func NewStore(logger *log.Logger, backend string, db *gorm.DB, cache Cache) (kvstore.Store, error) {
	switch backend {
	case kvstore.BackendMemory, "":
		logger.Warn("Using in-memory registration store; records are lost on restart")
		return kvstore.NewMemoryStore(), nil

	case kvstore.BackendRedis:
		if cache == nil {
			return nil, fmt.Errorf("STORE_BACKEND=%s requires REDIS_HOST: %w", backend, ErrCacheNotConfigured)
		}
		logger.Info("Using Redis registration store", "key_prefix", storeKeyPrefix)
		return kvstore.NewRedisStore(cache, &kvstore.RedisStoreConfig{
			KeyPrefix: storeKeyPrefix,
			Logger:    logger,
		}), nil

	case kvstore.BackendDatabase:
		if db == nil {
			return nil, fmt.Errorf("STORE_BACKEND=%s requires a database connection", backend)
		}
		logger.Info("Using database registration store")
		return kvstore.NewGormStore(db), nil

	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q (allowed: %s, %s, %s)",
			backend, kvstore.BackendMemory, kvstore.BackendRedis, kvstore.BackendDatabase)
	}
}
