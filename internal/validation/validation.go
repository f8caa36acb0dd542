// Package validation binds request data and checks it against struct tags.
//
// Failures are returned as *errs.HTTPError values with one FieldError per
// offending field, named the way clients send it (the json or param tag).
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/articles/internal/errs"
)

// Validatable is implemented by request payloads.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a field failure that struct tags cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors satisfies error so Validate can return it directly.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
}

// fieldName reports a struct field by its json name, falling back to the
// path parameter name and then the Go name.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "param", "query"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return ""
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	return validate.Struct(s)
}

var binder = &echo.DefaultBinder{}

// BindAndValidate binds path parameters and body into payload, which must be
// a pointer, then runs payload.Validate.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := bind(c, payload); err != nil {
		return err
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors)
	}

	return nil
}

// bind follows echo's DefaultBinder.Bind order. Each stage is run on its own
// so failures can be reported without the binder's internal detail.
func bind(c echo.Context, payload any) error {
	if err := binder.BindPathParams(c, payload); err != nil {
		return pathError(c)
	}

	method := c.Request().Method
	if method == http.MethodGet || method == http.MethodDelete || method == http.MethodHead {
		if err := binder.BindQueryParams(c, payload); err != nil {
			return errs.NewBadRequestError("Invalid query parameter", false, nil, nil)
		}
	}

	if err := binder.BindBody(c, payload); err != nil {
		return bodyError(err)
	}
	return nil
}

func pathError(c echo.Context) error {
	names := c.ParamNames()
	if len(names) != 1 {
		return errs.NewBadRequestError("Invalid path parameter", false, nil, nil)
	}
	return errs.NewBadRequestError("Invalid "+names[0], false, nil,
		[]errs.FieldError{{Field: names[0], Error: "is invalid"}})
}

func bodyError(err error) error {
	if errors.Is(err, echo.ErrUnsupportedMediaType) {
		return errs.NewBadRequestError("Unsupported content type", false, nil, nil)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return errs.NewBadRequestError("Invalid request body", false, nil,
			[]errs.FieldError{{Field: typeErr.Field, Error: "has an invalid type"}})
	}
	return errs.NewBadRequestError("Invalid request body", false, nil, nil)
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customErrors CustomValidationErrors
	if errors.As(err, &customErrors) {
		for _, e := range customErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Field: "body", Error: err.Error()}}
	}

	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: strings.ToLower(fe.Field()),
			Error: fieldMessage(fe),
		})
	}

	return "Validation failed", fieldErrors
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s: %s:%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag())
	}
}
