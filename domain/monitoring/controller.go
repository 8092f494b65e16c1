package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/akeren/go-registration-form/config/router"
	"github.com/akeren/go-registration-form/internal/log"
	"github.com/akeren/go-registration-form/pkg/factory"
	"gorm.io/gorm"
)

const (
	monitoringRequestsPerMinute = 10
	healthCheckTimeout          = 2 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	DB           *gorm.DB // Optional, only set for the database store
	Store        Pinger
	StoreBackend string
	Cache        Pinger // Optional
	Logger       *log.Logger
	RateLimiters factory.RateLimiterFactory
}

type HealthStatus struct {
	Status       string `json:"status"`        // "ok" when the registration store answers, "degraded" otherwise
	Store        int    `json:"store"`         // 1 = healthy, 0 = unhealthy
	StoreBackend string `json:"store_backend"` // memory, redis or database
	Database     int    `json:"database"`      // 1 = healthy, 0 = unhealthy/not configured
	Cache        int    `json:"cache"`         // 1 = healthy, 0 = unhealthy/not configured
	Uptime       int    `json:"uptime"`        // uptime in seconds
}

type MonitoringController struct {
	deps      *Dependencies
	startTime time.Time
}

func NewMonitoringController(deps *Dependencies) *router.RESTController {
	ctrl := &MonitoringController{
		deps:      deps,
		startTime: time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(rs *router.RouterService, c *router.RESTController) {
			limiter := deps.RateLimiters.CreateRateLimiter("monitoring", monitoringRequestsPerMinute, time.Minute)

			rs.AddGetHandler(c, limiter, "", ctrl.monitor)
			rs.AddGetHandler(c, limiter, "health", ctrl.healthCheck)
		},
	)
}

func (ctrl *MonitoringController) monitor(*router.RequestContext) *router.ServiceResult {
	return router.OKResult("Registration service is operational.", "Monitoring successful")
}

func (ctrl *MonitoringController) healthCheck(c *router.RequestContext) *router.ServiceResult {
	logger := router.GetLogger(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := ctrl.performHealthChecks(ctx, logger)

	statusCode := http.StatusOK
	if status.Store == 0 {
		statusCode = http.StatusServiceUnavailable
	}

	return router.ErrorResult(statusCode, "registration service health check completed", status)
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		StoreBackend: ctrl.deps.StoreBackend,
		Uptime:       int(time.Since(ctrl.startTime).Seconds()),
	}

	status.Store = probe(ctx, logger, "store", ctrl.deps.Store)
	status.Cache = probe(ctx, logger, "cache", ctrl.deps.Cache)
	status.Database = probe(ctx, logger, "database", ctrl.databasePinger())

	status.Status = "ok"
	if status.Store == 0 {
		status.Status = "degraded"
	}

	return status
}

func (ctrl *MonitoringController) databasePinger() Pinger {
	if ctrl.deps.DB == nil {
		return nil
	}
	return gormPinger{db: ctrl.deps.DB}
}

type gormPinger struct {
	db *gorm.DB
}

func (p gormPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func probe(ctx context.Context, logger *log.Logger, name string, target Pinger) int {
	if target == nil {
		logger.Debug("Health check skipped; component not configured", "component", name)
		return 0
	}

	if err := target.Ping(ctx); err != nil {
		logger.Error("Health check failed", "component", name, "error", err)
		return 0
	}

	return 1
}
