// Package service holds the article operations. Handlers pass in the
// request's database session; services decide when it commits.
package service

import (
	"github.com/deppfellow/articles/internal/repository"
	"github.com/deppfellow/articles/internal/server"
)

type Services struct {
	Article *ArticleService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Article: NewArticleService(s, repos.Article),
	}, nil
}
