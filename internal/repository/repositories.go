// Package repository reads and writes rows through a request's database
// session. It never commits; that is left to the service layer.
package repository

import "github.com/deppfellow/articles/internal/server"

// Repositories groups every repository so services receive one value.
type Repositories struct {
	Article *ArticleRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Article: NewArticleRepository(s),
	}
}
