package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/articles/internal/errs"
)

type payload struct {
	ID    int64   `param:"id" json:"-" validate:"required,min=1"`
	Title *string `json:"title" validate:"required,max=5"`
}

func (p *payload) Validate() error { return Struct(p) }

type customPayload struct{}

func (customPayload) Validate() error {
	return CustomValidationErrors{{Field: "title", Message: "is taken"}}
}

func newContext(method, body, id string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, "/api/"+id, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func httpError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()

	var he *errs.HTTPError
	require.True(t, errors.As(err, &he), "expected *errs.HTTPError, got %T", err)
	return he
}

func TestBindAndValidate_OK(t *testing.T) {
	p := &payload{}
	err := BindAndValidate(newContext(http.MethodPatch, `{"title":"go","id":99,"extra":true}`, "3"), p)

	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID, "id comes from the path only")
	assert.Equal(t, "go", *p.Title)
}

func TestBindAndValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		id    string
		field string
		msg   string
	}{
		{"missing", `{}`, "1", "title", "is required"},
		{"null", `{"title":null}`, "1", "title", "is required"},
		{"too long", `{"title":"toolong"}`, "1", "title", "must not exceed 5 characters"},
		{"id below min", `{"title":"ok"}`, "-1", "id", "must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := httpError(t, BindAndValidate(newContext(http.MethodPatch, tt.body, tt.id), &payload{}))

			assert.Equal(t, http.StatusBadRequest, he.Status)
			assert.Equal(t, "Validation failed", he.Message)
			require.NotEmpty(t, he.Errors)
			assert.Equal(t, tt.field, he.Errors[0].Field)
			assert.Equal(t, tt.msg, he.Errors[0].Error)
		})
	}
}

func TestBindAndValidate_BindErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		id     string
		msg    string
		fields []errs.FieldError
	}{
		{"malformed json", http.MethodPost, `{"title":`, "1", "Invalid request body", nil},
		{"top level array", http.MethodPost, `[]`, "1", "Invalid request body", nil},
		{"wrong type", http.MethodPost, `{"title":123}`, "1", "Invalid request body",
			[]errs.FieldError{{Field: "title", Error: "has an invalid type"}}},
		{"non numeric id", http.MethodGet, ``, "abc", "Invalid id",
			[]errs.FieldError{{Field: "id", Error: "is invalid"}}},
		{"id out of range", http.MethodGet, ``, "99999999999999999999", "Invalid id",
			[]errs.FieldError{{Field: "id", Error: "is invalid"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := httpError(t, BindAndValidate(newContext(tt.method, tt.body, tt.id), &payload{}))

			assert.Equal(t, http.StatusBadRequest, he.Status)
			assert.Equal(t, tt.msg, he.Message)
			assert.Equal(t, tt.fields, he.Errors)
			assert.NotContains(t, he.Message, "Unmarshal")
			assert.NotContains(t, he.Message, "strconv")
		})
	}
}

func TestExtractValidationError_Custom(t *testing.T) {
	msg, fields := extractValidationError(customPayload{}.Validate())

	assert.Equal(t, "Validation failed", msg)
	assert.Equal(t, []errs.FieldError{{Field: "title", Error: "is taken"}}, fields)
}
