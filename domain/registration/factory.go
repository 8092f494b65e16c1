package registration

import (
	"github.com/akeren/go-registration-form/config/router"
	"github.com/akeren/go-registration-form/internal/kvstore"
	"github.com/akeren/go-registration-form/internal/log"
	"github.com/akeren/go-registration-form/pkg/constants"
	"github.com/akeren/go-registration-form/pkg/factory"
)

type RegistrationServiceFactory interface {
	CreateService() RegistrationService
	CreateController() *router.RESTController
}

type DefaultRegistrationServiceFactory struct {
	store    kvstore.Store
	logger   *log.Logger
	limiters factory.RateLimiterFactory
	options  *Options
}

func NewRegistrationServiceFactory(store kvstore.Store, logger *log.Logger, limiters factory.RateLimiterFactory, options *Options) RegistrationServiceFactory {
	return &DefaultRegistrationServiceFactory{
		store:    store,
		logger:   logger,
		limiters: limiters,
		options:  options,
	}
}

// CreateService builds a service without exported metrics, for callers outside the HTTP surface.
func (f *DefaultRegistrationServiceFactory) CreateService() RegistrationService {
	repository := NewRecordRepository(f.store, constants.RegistrationRecordKey)
	return NewRegistrationService(f.logger, repository, f.options, nil)
}

func (f *DefaultRegistrationServiceFactory) CreateController() *router.RESTController {
	return NewRegistrationController(f.store, f.logger, f.limiters, f.options)
}
