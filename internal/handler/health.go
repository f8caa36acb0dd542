package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/articles/internal/middleware"
	"github.com/deppfellow/articles/internal/server"
)

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	Handler
	ping func(ctx context.Context) error
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		ping:    s.DB.Ping,
	}
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
}

// CheckHealth answers 200 when every check passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	response := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      map[string]checkResult{},
	}

	health := h.server.Config.Observability.HealthChecks
	if !health.Enabled {
		return c.JSON(http.StatusOK, response)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), health.Timeout)
	defer cancel()

	dbStart := time.Now()
	if err := h.ping(ctx); err != nil {
		elapsed := time.Since(dbStart)
		response.Status = "unhealthy"
		response.Checks["database"] = checkResult{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}

		logger.Error().Err(err).Dur("response_time", elapsed).Msg("database health check failed")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
				"check_type":       "database",
				"operation":        "health_check",
				"error_type":       "database_unhealthy",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
		}

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	response.Checks["database"] = checkResult{
		Status:       "healthy",
		ResponseTime: time.Since(dbStart).String(),
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}
