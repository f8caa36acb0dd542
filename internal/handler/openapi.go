package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/articles/internal/server"
)

// OpenAPIPage is the docs UI served at /docs. It loads static/openapi.json.
const OpenAPIPage = "static/openapi.html"

type OpenAPIHandler struct {
	Handler
	page string
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		page:    OpenAPIPage,
	}
}

// ServeOpenAPIUI serves the docs page uncached so edits show up on reload.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")

	page, err := os.ReadFile(h.page)
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	return c.HTMLBlob(http.StatusOK, page)
}
