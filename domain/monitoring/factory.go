package monitoring

import (
	"github.com/akeren/go-registration-form/config/router"
)

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	deps *Dependencies
}

func NewMonitoringControllerFactory(deps *Dependencies) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{deps: deps}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	return NewMonitoringController(f.deps)
}
