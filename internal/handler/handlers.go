package handler

import (
	"github.com/deppfellow/articles/internal/server"
	"github.com/deppfellow/articles/internal/service"
)

// Handlers groups every handler the router registers.
type Handlers struct {
	Article *ArticleHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Article: NewArticleHandler(s, services.Article),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
