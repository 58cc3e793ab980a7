package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency that can report whether it is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and readiness endpoints
type HealthHandlers struct {
	db      Pinger
	cache   Pinger
	version string
	started time.Time
	logger  hclog.Logger
}

// NewHealthHandlers creates a new health handlers instance. A nil cache is reported as disabled.
func NewHealthHandlers(db Pinger, cache Pinger, version string, logger hclog.Logger) *HealthHandlers {
	return &HealthHandlers{
		db:      db,
		cache:   cache,
		version: version,
		started: time.Now(),
		logger:  logger.Named("health"),
	}
}

// Register mounts the unauthenticated health routes on e
func (h *HealthHandlers) Register(e *echo.Echo) {
	e.GET("/health", h.HealthCheck)
	e.GET("/health/ready", h.ReadinessCheck)
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

// HealthCheck reports liveness along with the state of each dependency
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  h.checkServices(c.Request().Context()),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Version:   h.version,
	}
	for _, state := range health.Services {
		if state == "unhealthy" {
			health.Status = "degraded"
		}
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}
	return c.JSON(statusCode, health)
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	services := h.checkServices(c.Request().Context())
	for _, state := range services {
		if state == "unhealthy" {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status":   "not_ready",
				"services": services,
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"services": services,
	})
}

func (h *HealthHandlers) checkServices(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	return map[string]string{
		"database": h.check(ctx, "database", h.db),
		"redis":    h.check(ctx, "redis", h.cache),
	}
}

func (h *HealthHandlers) check(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		h.logger.Warn("dependency unreachable", "service", name, "error", err)
		return "unhealthy"
	}
	return "healthy"
}
