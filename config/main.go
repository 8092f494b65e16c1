package config

import (
	"context"
	"time"

	"github.com/akeren/go-registration-form/config/router"
	"github.com/akeren/go-registration-form/internal/kvstore"
	"github.com/akeren/go-registration-form/internal/log"
	"github.com/akeren/go-registration-form/internal/models"
	"github.com/akeren/go-registration-form/pkg/constants"
	"github.com/akeren/go-registration-form/pkg/factory"
	"github.com/akeren/go-registration-form/pkg/utils"
	"gorm.io/gorm"
)

type ApplicationConfig struct {
	DB              *gorm.DB
	Store           kvstore.Store
	RouterService   *router.RouterService
	RateLimiters    factory.RateLimiterFactory
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	TracingShutdown func(context.Context) error
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration

	StoreBackend       string
	RegistrationMinAge int
	FormSessionTTL     time.Duration
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		RateLimitRequests: utils.GetEnvPositiveInt("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests),
		RateLimitWindow:   utils.GetEnvPositiveDuration("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow()),
		RequestTimeout:    utils.GetEnvPositiveDuration("REQUEST_TIMEOUT", router.DefaultTimeoutDuration),

		StoreBackend:       GetStoreBackend(),
		RegistrationMinAge: utils.GetEnvPositiveInt("REGISTRATION_MIN_AGE", constants.DefaultMinimumAge),
		FormSessionTTL:     utils.GetEnvPositiveDuration("FORM_SESSION_TTL", constants.DefaultFormSessionTTL()),
	}
}

func (ac *ApplicationConfig) Cleanup() {
	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Store != nil {
		if err := ac.Store.Close(); err != nil {
			ac.Logger.Error("Failed to close registration store", "error", err)
		}
	}

	if ac.DB != nil {
		CloseDatabase(ac.DB, ac.Logger)
	}

	if ac.Cache != nil {
		_ = CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		appEnv := GetAppEnv()
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	appConfig := NewAppConfig()
	cache := NewCacheConfig().NewCacheOrNil(logger)

	var db *gorm.DB
	if appConfig.StoreBackend == kvstore.BackendDatabase {
		db, err = NewDatabase(logger, NewDBConfig())
		if err != nil {
			return nil, err
		}

		if autoMigrate {
			if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
				return nil, err
			}
		}
	} else if autoMigrate {
		logger.Warn("--auto-migrate ignored; STORE_BACKEND does not use a database", "store_backend", appConfig.StoreBackend)
	}

	store, err := NewStore(logger, appConfig.StoreBackend, db, cache)
	if err != nil {
		CloseDatabase(db, logger)
		_ = CloseCache(cache, logger)
		return nil, err
	}

	routerService := router.CreateRouterService(logger, cache, &router.RouterConfig{
		RateLimitRequests: appConfig.RateLimitRequests,
		RateLimitWindow:   appConfig.RateLimitWindow,
		RequestTimeout:    appConfig.RequestTimeout,
	})

	logger.Info("Application configuration loaded successfully",
		"store_backend", appConfig.StoreBackend,
		"registration_min_age", appConfig.RegistrationMinAge,
		"form_session_ttl", appConfig.FormSessionTTL,
	)

	return &ApplicationConfig{
		DB:              db,
		Store:           store,
		RouterService:   routerService,
		RateLimiters:    factory.NewDefaultRateLimiterFactory(cache, logger),
		Logger:          logger,
		Cache:           cache,
		Config:          appConfig,
		TracingShutdown: tracingShutdown,
	}, nil
}
