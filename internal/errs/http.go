// Package errs defines the error shape every non-2xx response uses.
//
// Handlers and services return *HTTPError values; the global error handler
// serializes them unchanged and converts everything else.
package errs

import "strings"

// FieldError reports one invalid request field, e.g.
//
//	{ "field": "article", "error": "must not exceed 150 characters" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the API error body.
//
// Code is machine-readable (BAD_REQUEST, ARTICLE_ALREADY_EXISTS), Message
// is for humans. Override tells clients the message is safe to show as is.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	Errors []FieldError `json:"errors"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError regardless of its fields, so
// errors.Is(err, &HTTPError{}) answers "is this already an API error".
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
