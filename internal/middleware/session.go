package middleware

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/articles/internal/database"
	"github.com/deppfellow/articles/internal/server"
)

const SessionKey = "db_session"

// SessionMiddleware gives each request its own database session and
// releases it when the handler returns, errors or panics.
type SessionMiddleware struct {
	open func(ctx context.Context) (*database.Session, error)
}

func NewSessionMiddleware(s *server.Server) *SessionMiddleware {
	return &SessionMiddleware{open: func(ctx context.Context) (*database.Session, error) {
		return s.DB.NewSession(ctx)
	}}
}

// Scope opens the session before the handler and rolls back whatever was
// not committed afterwards.
func (m *SessionMiddleware) Scope() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := m.open(c.Request().Context())
			if err != nil {
				return fmt.Errorf("failed to open request session: %w", err)
			}
			defer func() {
				if err := sess.Close(); err != nil {
					GetLogger(c).Warn().Err(err).Msg("failed to release request session")
				}
			}()

			c.Set(SessionKey, sess)

			return next(c)
		}
	}
}

// GetSession returns the request's session, or nil outside Scope.
func GetSession(c echo.Context) *database.Session {
	if sess, ok := c.Get(SessionKey).(*database.Session); ok {
		return sess
	}
	return nil
}
