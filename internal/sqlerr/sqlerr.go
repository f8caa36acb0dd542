// Package sqlerr classifies PostgreSQL driver errors.
//
// Raw *pgconn.PgError values are reduced to a small Code enum so callers
// can switch on "unique violation" instead of SQLSTATE strings, and
// HandleError turns them into API errors.
package sqlerr

import "fmt"

// Code is a driver-independent error category.
type Code string

const (
	Other                Code = "other"
	NotNullViolation     Code = "not_null_violation"
	ForeignKeyViolation  Code = "foreign_key_violation"
	UniqueViolation      Code = "unique_violation"
	CheckViolation       Code = "check_violation"
	ExclusionViolation   Code = "exclusion_violation"
	StringDataTruncation Code = "string_data_right_truncation"
	InvalidTextRepr      Code = "invalid_text_representation"
	SerializationFailure Code = "serialization_failure"
	DeadlockDetected     Code = "deadlock_detected"
	QueryCanceled        Code = "query_canceled"
	ConnectionException  Code = "connection_exception"
	UndefinedTable       Code = "undefined_table"
)

// Severity mirrors the PostgreSQL message severity.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a classified database error. The original driver error stays
// reachable through Unwrap.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string

	driverErr error
}

func (pe *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", pe.Severity, pe.DatabaseCode, pe.Message)
}

func (pe *Error) Unwrap() error {
	return pe.driverErr
}

var codes = map[string]Code{
	"23502": NotNullViolation,
	"23503": ForeignKeyViolation,
	"23505": UniqueViolation,
	"23514": CheckViolation,
	"23P01": ExclusionViolation,
	"22001": StringDataTruncation,
	"22P02": InvalidTextRepr,
	"40001": SerializationFailure,
	"40P01": DeadlockDetected,
	"57014": QueryCanceled,
	"42P01": UndefinedTable,
}

// MapCode converts a SQLSTATE into a Code. Class 08 is reported as
// ConnectionException.
func MapCode(sqlState string) Code {
	if code, ok := codes[sqlState]; ok {
		return code
	}

	if len(sqlState) == 5 && sqlState[:2] == "08" {
		return ConnectionException
	}

	return Other
}

// MapSeverity normalizes the severity reported by the server. Unknown values
// are treated as errors.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(severity)
	default:
		return SeverityError
	}
}
