package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/articles/internal/handler"
)

// registerSystemRoutes adds the endpoints that sit outside /api and need no
// database session.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.Static("/static", "static")
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
