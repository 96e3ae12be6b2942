package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/vistual/internal/middleware"
	"github.com/deppfellow/vistual/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler serves /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type healthCheck struct {
	name string
	run  func(ctx context.Context) error
}

func (h *HealthHandler) checks() []healthCheck {
	var out []healthCheck
	obs := h.server.Config.Observability

	if obs.HasCheck("database") && h.server.DB != nil {
		out = append(out, healthCheck{name: "database", run: func(ctx context.Context) error {
			return h.server.DB.Pool.Ping(ctx)
		}})
	}
	if obs.HasCheck("redis") && h.server.Redis != nil {
		out = append(out, healthCheck{name: "redis", run: func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		}})
	}
	if obs.HasCheck("storage") && h.server.Images != nil {
		out = append(out, healthCheck{name: "storage", run: func(ctx context.Context) error {
			return h.server.Images.Ping()
		}})
	}

	return out
}

// CheckHealth answers 200 when every enabled dependency responds and 503
// otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	timeout := h.server.Config.Observability.HealthChecks.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	checks := make(map[string]interface{})
	isHealthy := true

	for _, check := range h.checks() {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		checkStart := time.Now()
		err := check.run(ctx)
		cancel()

		result := map[string]interface{}{
			"status":        "healthy",
			"response_time": time.Since(checkStart).String(),
		}

		if err != nil {
			isHealthy = false
			result["status"] = "unhealthy"
			result["error"] = err.Error()

			logger.Error().
				Err(err).
				Str("check", check.name).
				Dur("response_time", time.Since(checkStart)).
				Msg("health check failed")

			h.recordFailure(check.name, time.Since(checkStart), err)
		}

		checks[check.name] = result
	}

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !isHealthy {
		response["status"] = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("service unhealthy")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}

func (h *HealthHandler) recordFailure(check string, took time.Duration, err error) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": took.Milliseconds(),
		"error_message":    err.Error(),
	})
}
