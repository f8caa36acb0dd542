// Package router builds the echo instance: global middleware, the system
// routes and the /api article routes.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/articles/internal/handler"
	"github.com/deppfellow/articles/internal/middleware"
	"github.com/deppfellow/articles/internal/model/article"
	"github.com/deppfellow/articles/internal/server"
)

// NewRouter wires every route. Middleware order matters: tracing first so
// the transaction exists, then request id and the context logger that reads
// both, then the rest.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middleware.RequestID(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)
	registerArticleRoutes(router.Group("/api", middlewares.Session.Scope()), h.Article)

	return router
}

func registerArticleRoutes(api *echo.Group, h *handler.ArticleHandler) {
	api.POST("", handler.Handle(h.Handler, h.CreateArticle, http.StatusOK, &article.CreateArticleRequest{}))
	api.GET("/:id", handler.Handle(h.Handler, h.GetArticle, http.StatusOK, &article.ArticleIDRequest{}))
	api.DELETE("/:id", handler.Handle(h.Handler, h.DeleteArticle, http.StatusOK, &article.ArticleIDRequest{}))
	api.PATCH("/:id", handler.Handle(h.Handler, h.UpdateArticle, http.StatusOK, &article.UpdateArticleRequest{}))
}
