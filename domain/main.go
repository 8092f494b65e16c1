package domain

import (
	"github.com/akeren/go-registration-form/config"
	"github.com/akeren/go-registration-form/domain/monitoring"
	"github.com/akeren/go-registration-form/domain/registration"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	var cache monitoring.Pinger
	if appConfig.Cache != nil {
		cache = appConfig.Cache
	}

	appConfig.RouterService.MountController(monitoring.NewMonitoringController(&monitoring.Dependencies{
		DB:           appConfig.DB,
		Store:        appConfig.Store,
		StoreBackend: appConfig.Config.StoreBackend,
		Cache:        cache,
		Logger:       appConfig.Logger,
		RateLimiters: appConfig.RateLimiters,
	}))

	appConfig.RouterService.MountController(registration.NewRegistrationController(
		appConfig.Store,
		appConfig.Logger,
		appConfig.RateLimiters,
		RegistrationOptions(appConfig.Config),
	))
}

func RegistrationOptions(cfg *config.AppConfig) *registration.Options {
	return &registration.Options{
		MinAge:     cfg.RegistrationMinAge,
		SessionTTL: cfg.FormSessionTTL,
	}
}
