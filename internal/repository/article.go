package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/deppfellow/articles/internal/database"
	"github.com/deppfellow/articles/internal/model/article"
	"github.com/deppfellow/articles/internal/server"
)

// ErrArticleNotFound is returned when no row has the requested id.
var ErrArticleNotFound = errors.New("article not found")

type ArticleRepository struct {
	server *server.Server
}

func NewArticleRepository(s *server.Server) *ArticleRepository {
	return &ArticleRepository{server: s}
}

// Create inserts a and fills in its generated id.
func (r *ArticleRepository) Create(ctx context.Context, sess *database.Session, a *article.Article) error {
	if err := sess.DB().WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}
	return nil
}

// GetByID loads one article.
func (r *ArticleRepository) GetByID(ctx context.Context, sess *database.Session, id int64) (*article.Article, error) {
	var a article.Article

	err := sess.DB().WithContext(ctx).Take(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("id %d: %w", id, ErrArticleNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article by id=%d: %w", id, err)
	}

	return &a, nil
}

// Update writes only the named columns of a.
func (r *ArticleRepository) Update(ctx context.Context, sess *database.Session, a *article.Article, columns []string) error {
	if len(columns) == 0 {
		return nil
	}

	result := sess.DB().WithContext(ctx).Model(a).Select(columns).Updates(a)
	if result.Error != nil {
		return fmt.Errorf("failed to update article id=%d: %w", a.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("id %d: %w", a.ID, ErrArticleNotFound)
	}

	return nil
}

// Delete removes the row permanently.
func (r *ArticleRepository) Delete(ctx context.Context, sess *database.Session, id int64) error {
	result := sess.DB().WithContext(ctx).Delete(&article.Article{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete article id=%d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("id %d: %w", id, ErrArticleNotFound)
	}

	return nil
}
