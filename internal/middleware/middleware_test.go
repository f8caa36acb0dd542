package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/articles/internal/config"
	"github.com/deppfellow/articles/internal/database"
	"github.com/deppfellow/articles/internal/errs"
	"github.com/deppfellow/articles/internal/server"
)

func newTestServer() *server.Server {
	log := zerolog.Nop()
	return &server.Server{Config: config.Defaults(), Logger: &log}
}

func newEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(RequestID(), NewContextEnhancer(s).EnhanceContext())
	return e
}

func do(e *echo.Echo, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	e := newEcho(newTestServer())
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	rec := do(e, http.MethodGet, "/ping", nil)
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	rec = do(e, http.MethodGet, "/ping", http.Header{RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestEnhanceContext_PutsLoggerOnRequestContext(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	s := newTestServer()
	s.Logger = &log

	e := newEcho(s)
	e.GET("/ping", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from service")
		return c.NoContent(http.StatusNoContent)
	})

	rec := do(e, http.MethodGet, "/ping", http.Header{RequestIDHeader: {"req-1"}})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"path":"/ping"`)
	assert.Contains(t, buf.String(), "from service")
}

func TestGlobalErrorHandler(t *testing.T) {
	e := newEcho(newTestServer())
	e.GET("/conflict", func(c echo.Context) error {
		return fmt.Errorf("commit: %w", &pgconn.PgError{Code: "23505", TableName: "app_articles"})
	})
	e.GET("/missing", func(c echo.Context) error {
		return errs.NewNotFoundError("article is not found", true, nil)
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("connection refused")
	})

	t.Run("api error as is", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/missing", nil)
		body := decodeError(t, rec)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "article is not found", body.Message)
		assert.True(t, body.Override)
	})

	t.Run("database error classified", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/conflict", nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "ARTICLE_ALREADY_EXISTS", decodeError(t, rec).Code)
	})

	t.Run("unknown error hidden", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/boom", nil)
		body := decodeError(t, rec)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error", body.Message)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/nope", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Route not found", decodeError(t, rec).Message)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/missing", nil)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, rec).Code)
	})
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusOf(nil, http.StatusOK))
	assert.Equal(t, http.StatusConflict, statusOf(errs.NewConflictError("x", false, nil), http.StatusOK))
	assert.Equal(t, http.StatusMethodNotAllowed, statusOf(echo.ErrMethodNotAllowed, http.StatusOK))
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("x"), http.StatusOK))
}

func TestRateLimit(t *testing.T) {
	s := newTestServer()
	s.Config.Server.RateLimit = 1
	s.Config.Server.RateBurst = 1

	e := newEcho(s)
	e.Use(NewRateLimitMiddleware(s).Limit())
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, do(e, http.MethodGet, "/ping", nil).Code)

	rec := do(e, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", decodeError(t, rec).Code)
}

func TestRateLimit_DisabledByDefault(t *testing.T) {
	s := newTestServer()

	e := newEcho(s)
	e.Use(NewRateLimitMiddleware(s).Limit())
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusNoContent, do(e, http.MethodGet, "/ping", nil).Code)
	}
}

func TestSessionScope_OpenFailure(t *testing.T) {
	m := &SessionMiddleware{open: func(context.Context) (*database.Session, error) {
		return nil, errors.New("pool exhausted")
	}}

	e := newEcho(newTestServer())
	called := false
	e.GET("/api/:id", func(c echo.Context) error {
		called = true
		return nil
	}, m.Scope())

	rec := do(e, http.MethodGet, "/api/1", nil)

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetSession_Outside(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, GetSession(c))
}
