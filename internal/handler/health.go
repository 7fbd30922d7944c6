package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/corylsmithjr/medal-api/internal/config"
	"github.com/corylsmithjr/medal-api/internal/middleware"
	"github.com/corylsmithjr/medal-api/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// HealthHandler exposes a "system" endpoint that load balancers and uptime
// monitors use to verify the service is alive.
type HealthHandler struct {
	Handler
}

// NewHealthHandler constructs a HealthHandler with access to shared app dependencies.
func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth returns the service status and its configuration checks.
//
// The service has no stateful dependencies, so the only check is whether the
// OpenAI credential is configured. A missing credential makes the status
// "degraded" but still answers 200: the process is alive and reports the
// problem on every processing request.
//
// The OpenAI API itself is never called from here.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{})
	status := StatusHealthy

	if h.server.Config.OpenAI.HasOpenAIKey() {
		checks["openai_credential"] = map[string]interface{}{
			"status": "configured",
		}
	} else {
		status = StatusDegraded
		checks["openai_credential"] = map[string]interface{}{
			"status": "missing",
			"error":  "OpenAI API key is not configured",
		}

		logger.Warn().Msg("health check: OpenAI API key is not configured")

		if h.server.LoggerService != nil && h.server.LoggerService.GetApplication() != nil {
			h.server.LoggerService.GetApplication().RecordCustomEvent(
				"HealthCheckError",
				map[string]interface{}{
					"check_type": "openai_credential",
					"operation":  "health_check",
					"error_type": "credential_missing",
				},
			)
		}
	}

	response := map[string]interface{}{
		"status":      status,
		"service":     config.ServiceName,
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}
