package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/deppfellow/articles/internal/database"
	"github.com/deppfellow/articles/internal/errs"
	"github.com/deppfellow/articles/internal/model/article"
	"github.com/deppfellow/articles/internal/repository"
	"github.com/deppfellow/articles/internal/server"
	"github.com/deppfellow/articles/internal/sqlerr"
)

const (
	msgArticleExists   = "user already exists"
	msgArticleNotFound = "article is not found"
)

var codeArticleExists = sqlerr.GenerateErrorCode(article.Article{}.TableName(), sqlerr.UniqueViolation)

// articleStore is the subset of the repository the service depends on.
type articleStore interface {
	Create(ctx context.Context, sess *database.Session, a *article.Article) error
	GetByID(ctx context.Context, sess *database.Session, id int64) (*article.Article, error)
	Update(ctx context.Context, sess *database.Session, a *article.Article, columns []string) error
	Delete(ctx context.Context, sess *database.Session, id int64) error
}

type ArticleService struct {
	server *server.Server
	repo   articleStore
	commit func(sess *database.Session) error
}

func NewArticleService(s *server.Server, repo *repository.ArticleRepository) *ArticleService {
	return newArticleService(s, repo, func(sess *database.Session) error { return sess.Commit() })
}

func newArticleService(s *server.Server, repo articleStore, commit func(*database.Session) error) *ArticleService {
	return &ArticleService{server: s, repo: repo, commit: commit}
}

// writeAndCommit runs write and commits the session. A unique violation from
// either step becomes the 409 conflict; other failures are returned wrapped
// and the session is left for the caller to roll back.
func (s *ArticleService) writeAndCommit(sess *database.Session, write func() error) error {
	err := write()
	if err == nil {
		err = s.commit(sess)
	}
	if err == nil {
		return nil
	}

	if sqlerr.ErrCode(err) == sqlerr.UniqueViolation {
		code := codeArticleExists
		return errs.NewConflictError(msgArticleExists, true, &code)
	}

	return err
}

// logger prefers the request logger carried by ctx.
func (s *ArticleService) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.server.Logger
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrArticleNotFound) {
		return errs.NewNotFoundError(msgArticleNotFound, true, nil)
	}
	return err
}

// Create inserts a new article and returns its id.
func (s *ArticleService) Create(ctx context.Context, sess *database.Session, req *article.CreateArticleRequest) (*article.CreateArticleResponse, error) {
	a := req.ToArticle()

	if err := s.writeAndCommit(sess, func() error {
		return s.repo.Create(ctx, sess, a)
	}); err != nil {
		return nil, err
	}

	s.logger(ctx).Info().Int64("article_id", a.ID).Msg("article created")

	return &article.CreateArticleResponse{ID: a.ID}, nil
}

// Get returns the article with the given id.
func (s *ArticleService) Get(ctx context.Context, sess *database.Session, id int64) (*article.Article, error) {
	a, err := s.repo.GetByID(ctx, sess, id)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// Delete removes the article with the given id.
func (s *ArticleService) Delete(ctx context.Context, sess *database.Session, id int64) (*article.DeleteArticleResponse, error) {
	if _, err := s.repo.GetByID(ctx, sess, id); err != nil {
		return nil, notFound(err)
	}

	if err := s.writeAndCommit(sess, func() error {
		return s.repo.Delete(ctx, sess, id)
	}); err != nil {
		return nil, notFound(err)
	}

	s.logger(ctx).Info().Int64("article_id", id).Msg("article deleted")

	return &article.DeleteArticleResponse{Delete: fmt.Sprintf("id: %d", id)}, nil
}

// Update applies the supplied fields and returns the full record.
func (s *ArticleService) Update(ctx context.Context, sess *database.Session, req *article.UpdateArticleRequest) (*article.Article, error) {
	a, err := s.repo.GetByID(ctx, sess, req.ID)
	if err != nil {
		return nil, notFound(err)
	}

	columns := req.Apply(a)

	if err := s.writeAndCommit(sess, func() error {
		return s.repo.Update(ctx, sess, a, columns)
	}); err != nil {
		return nil, notFound(err)
	}

	s.logger(ctx).Info().
		Int64("article_id", a.ID).
		Strs("columns", columns).
		Msg("article updated")

	return a, nil
}
