package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/deppfellow/articles/internal/errs"
)

func uniqueViolation() *pgconn.PgError {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        `duplicate key value violates unique constraint "ix_app_articles_article"`,
		TableName:      "app_articles",
		ConstraintName: "ix_app_articles_article",
	}
}

func TestMapCode(t *testing.T) {
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, NotNullViolation, MapCode("23502"))
	assert.Equal(t, ConnectionException, MapCode("08006"))
	assert.Equal(t, Other, MapCode("XX000"))
	assert.Equal(t, Other, MapCode(""))
}

func TestMapSeverity(t *testing.T) {
	assert.Equal(t, SeverityFatal, MapSeverity("FATAL"))
	assert.Equal(t, SeverityError, MapSeverity("something"))
}

func TestErrCode(t *testing.T) {
	wrapped := fmt.Errorf("commit: %w", uniqueViolation())
	assert.Equal(t, UniqueViolation, ErrCode(wrapped))

	converted := fmt.Errorf("insert: %w", ConvertPgError(uniqueViolation()))
	assert.Equal(t, UniqueViolation, ErrCode(converted))

	assert.Equal(t, Other, ErrCode(errors.New("boom")))
	assert.Equal(t, Other, ErrCode(nil))
}

func TestConvertPgError_Unwraps(t *testing.T) {
	src := uniqueViolation()
	converted := ConvertPgError(src)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(converted, &pgErr))
	assert.Same(t, src, pgErr)
	assert.Equal(t, "ERROR 23505: "+src.Message, converted.Error())
}

func TestGenerateErrorCode(t *testing.T) {
	assert.Equal(t, "ARTICLE_ALREADY_EXISTS", GenerateErrorCode("app_articles", UniqueViolation))
	assert.Equal(t, "ARTICLE_REQUIRED", GenerateErrorCode("app_articles", NotNullViolation))
	assert.Equal(t, "RECORD_ERROR", GenerateErrorCode("", Other))
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	assert.Equal(t, "article", extractColumnForUniqueViolation("ix_app_articles_article"))
	assert.Equal(t, "email", extractColumnForUniqueViolation("users_email_key"))
	assert.Equal(t, "email", extractColumnForUniqueViolation("unique_users_email"))
	assert.Equal(t, "", extractColumnForUniqueViolation("pk"))
}

func TestHandleError(t *testing.T) {
	t.Run("passes api errors through", func(t *testing.T) {
		in := errs.NewNotFoundError("article is not found", false, nil)
		assert.Same(t, in, HandleError(in))
	})

	t.Run("unique violation is a conflict", func(t *testing.T) {
		var httpErr *errs.HTTPError
		require.True(t, errors.As(HandleError(uniqueViolation()), &httpErr))
		assert.Equal(t, http.StatusConflict, httpErr.Status)
		assert.Equal(t, "ARTICLE_ALREADY_EXISTS", httpErr.Code)
		assert.Equal(t, "A Article with this Article already exists", httpErr.Message)
	})

	t.Run("not null violation names the field", func(t *testing.T) {
		err := HandleError(&pgconn.PgError{Code: "23502", TableName: "app_articles", ColumnName: "owner"})

		var httpErr *errs.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, "owner", httpErr.Errors[0].Field)
	})

	t.Run("missing rows are not found", func(t *testing.T) {
		for _, in := range []error{gorm.ErrRecordNotFound, pgx.ErrNoRows} {
			var httpErr *errs.HTTPError
			require.True(t, errors.As(HandleError(in), &httpErr))
			assert.Equal(t, http.StatusNotFound, httpErr.Status)
		}
	})

	t.Run("unknown errors are internal", func(t *testing.T) {
		var httpErr *errs.HTTPError
		require.True(t, errors.As(HandleError(errors.New("connection reset")), &httpErr))
		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	})
}
