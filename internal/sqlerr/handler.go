package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/deppfellow/articles/internal/errs"
)

// TablePrefix is stripped from table names before they are used in error
// codes and messages, so app_articles reads as "article".
const TablePrefix = "app_"

// ErrCode returns the Code of the first *Error or *pgconn.PgError in err's
// chain, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return MapCode(pgErr.Code)
	}

	return Other
}

// ConvertPgError classifies a raw server error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// domainName turns app_articles into "article".
func domainName(tableName string) string {
	name := strings.TrimPrefix(strings.ToLower(tableName), TablePrefix)
	if strings.HasSuffix(name, "s") && len(name) > 1 {
		name = name[:len(name)-1]
	}
	return name
}

// GenerateErrorCode builds a machine-readable code such as
// ARTICLE_ALREADY_EXISTS.
func GenerateErrorCode(tableName string, errType Code) string {
	domain := domainName(tableName)
	if domain == "" {
		domain = "record"
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, StringDataTruncation, InvalidTextRepr:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", strings.ToUpper(domain), action)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)
	case UniqueViolation:
		return fmt.Sprintf("A %s with this identifier already exists", entityName)
	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)
	case CheckViolation, StringDataTruncation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"
	default:
		return "An error occurred while processing your request"
	}
}

func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(columnName), "_id"))
	}

	if name := domainName(tableName); name != "" {
		return humanizeText(name)
	}

	return "record"
}

// humanizeText turns date_pub into "Date Pub".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var (
	pgKeySuffix   = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)
	indexedColumn = regexp.MustCompile(`^(?:ix|idx|uix|uq)_.+_([^_]+)$`)
)

// extractColumnForUniqueViolation guesses the column from a constraint or
// index name: unique_<table>_<col>, <table>_<col>_key and
// ix_<table>_<col> are recognized.
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if m := pgKeySuffix.FindStringSubmatch(constraintName); len(m) > 1 {
		return m[1]
	}

	if m := indexedColumn.FindStringSubmatch(constraintName); len(m) > 1 {
		return m[1]
	}

	return ""
}

// HandleError converts a database error into an *errs.HTTPError.
//
// API errors pass through unchanged. Constraint violations become 400s,
// except unique violations which are 409s. Missing rows become 404s.
// Everything else is a 500 whose details are left to the logs.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		sqlErr := ConvertPgError(pgErr)

		errorCode := GenerateErrorCode(sqlErr.TableName, sqlErr.Code)
		userMessage := formatUserFriendlyMessage(sqlErr)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			return errs.NewBadRequestError(userMessage, false, &errorCode, nil)

		case UniqueViolation:
			if column := extractColumnForUniqueViolation(sqlErr.ConstraintName); column != "" {
				userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(column))
			}
			return errs.NewConflictError(userMessage, true, &errorCode)

		case NotNullViolation:
			fieldErrors := []errs.FieldError{
				{
					Field: strings.ToLower(sqlErr.ColumnName),
					Error: "is required",
				},
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors)

		case CheckViolation, StringDataTruncation:
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil)

		default:
			return errs.NewInternalServerError()
		}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, pgx.ErrNoRows),
		errors.Is(err, sql.ErrNoRows):
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
