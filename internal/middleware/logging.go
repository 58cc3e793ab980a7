package middleware

import (
	"fleetrent/internal/common"

	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// RequestLogger writes one structured line per request.
func RequestLogger(logger hclog.Logger) echo.MiddlewareFunc {
	logger = logger.Named("http")
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			args := []interface{}{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.RequestID != "" {
				args = append(args, "request_id", v.RequestID)
			}
			if tenantID, ok := common.GetTenantIDFromContext(c.Request().Context()); ok {
				args = append(args, "tenant", tenantID)
			}

			switch {
			case v.Error != nil || v.Status >= 500:
				if v.Error != nil {
					args = append(args, "error", v.Error)
				}
				logger.Error("request failed", args...)
			case v.Status >= 400:
				logger.Warn("request rejected", args...)
			default:
				logger.Info("request", args...)
			}
			return nil
		},
	})
}
