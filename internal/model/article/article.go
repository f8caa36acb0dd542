// Package article defines the article record and the payloads that create
// and patch it.
package article

import (
	"time"

	"github.com/deppfellow/articles/internal/validation"
)

// Column size limits, shared by the table definition and request
// validation.
const (
	MaxArticleLen     = 150
	MaxDescriptionLen = 1000
	MaxOwnerLen       = 50
)

// Article is one row of app_articles. DatePub is assigned by the database
// and never written by the application.
type Article struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Article     string    `gorm:"size:150;uniqueIndex:ix_app_articles_article;not null" json:"article"`
	Description string    `gorm:"size:1000;not null" json:"description"`
	DatePub     time.Time `gorm:"column:date_pub;default:now();<-:false" json:"date_pub"`
	Owner       string    `gorm:"size:50;not null" json:"owner"`
}

func (Article) TableName() string {
	return "app_articles"
}

// ------------------------------------------------------------

type CreateArticleRequest struct {
	Article     *string `json:"article" validate:"required,max=150"`
	Description *string `json:"description" validate:"required,max=1000"`
	Owner       *string `json:"owner" validate:"required,max=50"`
}

func (r *CreateArticleRequest) Validate() error {
	return validation.Struct(r)
}

// ToArticle builds the row to insert. Call only after Validate succeeded.
func (r *CreateArticleRequest) ToArticle() *Article {
	return &Article{
		Article:     *r.Article,
		Description: *r.Description,
		Owner:       *r.Owner,
	}
}

type CreateArticleResponse struct {
	ID int64 `json:"id"`
}

// ------------------------------------------------------------

// ArticleIDRequest addresses a single article by path id.
type ArticleIDRequest struct {
	ID int64 `param:"id" json:"-" validate:"required,min=1"`
}

func (r *ArticleIDRequest) Validate() error {
	return validation.Struct(r)
}

type DeleteArticleResponse struct {
	Delete string `json:"delete"`
}

// ------------------------------------------------------------

// UpdateArticleRequest carries a partial update. Nil fields were absent (or
// null) in the body and are left alone.
type UpdateArticleRequest struct {
	ID          int64   `param:"id" json:"-" validate:"required,min=1"`
	Article     *string `json:"article" validate:"omitempty,max=150"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Owner       *string `json:"owner" validate:"omitempty,max=50"`
}

func (r *UpdateArticleRequest) Validate() error {
	return validation.Struct(r)
}

// Apply copies the supplied fields onto a and returns the column names that
// were set, in table order.
func (r *UpdateArticleRequest) Apply(a *Article) []string {
	var columns []string

	if r.Article != nil {
		a.Article = *r.Article
		columns = append(columns, "article")
	}
	if r.Description != nil {
		a.Description = *r.Description
		columns = append(columns, "description")
	}
	if r.Owner != nil {
		a.Owner = *r.Owner
		columns = append(columns, "owner")
	}

	return columns
}
