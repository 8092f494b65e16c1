package config

import (
	"testing"
	"time"

	"github.com/akeren/go-registration-form/internal/kvstore"
	"github.com/akeren/go-registration-form/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAutoMigrateAllowed(t *testing.T) {
	for _, env := range []string{"", "dev", "development", "local", "test", "testing", "DEV", "  Local  "} {
		t.Run("allows "+env, func(t *testing.T) {
			assert.NoError(t, ValidateAutoMigrateAllowed(env))
		})
	}

	for _, env := range []string{"prod", "production", "staging", "preprod", " Production ", "qa"} {
		t.Run("rejects "+env, func(t *testing.T) {
			assert.Error(t, ValidateAutoMigrateAllowed(env))
		})
	}
}

func TestNewAppConfig_Defaults(t *testing.T) {
	for _, key := range []string{"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "REQUEST_TIMEOUT", "STORE_BACKEND", "REGISTRATION_MIN_AGE", "FORM_SESSION_TTL"} {
		t.Setenv(key, "")
	}

	cfg := NewAppConfig()
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, kvstore.BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 18, cfg.RegistrationMinAge)
	assert.Equal(t, 30*time.Minute, cfg.FormSessionTTL)
}

func TestNewAppConfig_FromEnv(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "10s")
	t.Setenv("STORE_BACKEND", " Database ")
	t.Setenv("REGISTRATION_MIN_AGE", "21")
	t.Setenv("FORM_SESSION_TTL", "bogus")

	cfg := NewAppConfig()
	assert.Equal(t, 5, cfg.RateLimitRequests)
	assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, kvstore.BackendDatabase, cfg.StoreBackend)
	assert.Equal(t, 21, cfg.RegistrationMinAge)
	assert.Equal(t, 30*time.Minute, cfg.FormSessionTTL, "invalid values fall back to the default")
}

func TestNewStore(t *testing.T) {
	logger := log.NewDiscardLogger()

	store, err := NewStore(logger, kvstore.BackendMemory, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &kvstore.MemoryStore{}, store)

	_, err = NewStore(logger, kvstore.BackendRedis, nil, nil)
	assert.ErrorIs(t, err, ErrCacheNotConfigured)

	_, err = NewStore(logger, kvstore.BackendDatabase, nil, nil)
	assert.Error(t, err)

	_, err = NewStore(logger, "etcd", nil, nil)
	assert.Error(t, err)
}

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(log.NewDiscardLogger(), &DBConfig{Driver: DBDriverSQLite, SQLitePath: "file::memory:"})
	require.NoError(t, err)
	defer CloseDatabase(db, log.NewDiscardLogger())

	store, err := NewStore(log.NewDiscardLogger(), kvstore.BackendDatabase, db, nil)
	require.NoError(t, err)
	assert.IsType(t, &kvstore.GormStore{}, store)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(log.NewDiscardLogger(), &DBConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestSanitizeEnv(t *testing.T) {
	assert.Equal(t, "value", sanitizeEnv(`  "value" `))
	assert.Equal(t, "value", sanitizeEnv(`'value'`))
	assert.Equal(t, `"value`, sanitizeEnv(`"value`))
}
