package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/articles/internal/database"
	"github.com/deppfellow/articles/internal/middleware"
	"github.com/deppfellow/articles/internal/model/article"
	"github.com/deppfellow/articles/internal/server"
)

type articleService interface {
	Create(ctx context.Context, sess *database.Session, req *article.CreateArticleRequest) (*article.CreateArticleResponse, error)
	Get(ctx context.Context, sess *database.Session, id int64) (*article.Article, error)
	Delete(ctx context.Context, sess *database.Session, id int64) (*article.DeleteArticleResponse, error)
	Update(ctx context.Context, sess *database.Session, req *article.UpdateArticleRequest) (*article.Article, error)
}

// ArticleHandler serves /api. Each method runs inside the request session
// opened by middleware.SessionMiddleware.
type ArticleHandler struct {
	Handler
	service articleService
}

func NewArticleHandler(s *server.Server, svc articleService) *ArticleHandler {
	return &ArticleHandler{
		Handler: NewHandler(s),
		service: svc,
	}
}

func (h *ArticleHandler) CreateArticle(c echo.Context, req *article.CreateArticleRequest) (*article.CreateArticleResponse, error) {
	return h.service.Create(c.Request().Context(), middleware.GetSession(c), req)
}

func (h *ArticleHandler) GetArticle(c echo.Context, req *article.ArticleIDRequest) (*article.Article, error) {
	return h.service.Get(c.Request().Context(), middleware.GetSession(c), req.ID)
}

func (h *ArticleHandler) DeleteArticle(c echo.Context, req *article.ArticleIDRequest) (*article.DeleteArticleResponse, error) {
	return h.service.Delete(c.Request().Context(), middleware.GetSession(c), req.ID)
}

func (h *ArticleHandler) UpdateArticle(c echo.Context, req *article.UpdateArticleRequest) (*article.Article, error) {
	return h.service.Update(c.Request().Context(), middleware.GetSession(c), req)
}
