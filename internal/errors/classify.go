package errors

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	mysqlDuplicateEntry     = 1062
	mysqlColumnCannotBeNull = 1048
	mysqlCheckViolation     = 3819
	mysqlOutOfRange         = 1264
	mysqlIncorrectValue     = 1366
	mysqlDataTooLong        = 1406
	pgUniqueViolation       = "23505"
	pgCheckViolation        = "23514"
	pgNotNullViolation      = "23502"
	pgStringTooLong         = "22001"
	pgOutOfRange            = "22003"
	pgInvalidText           = "22P02"
)

var mysqlDuplicateKey = regexp.MustCompile(`for key '([^']+)'`)

// schemaErrors are GORM signals that the record itself was rejected.
var schemaErrors = []error{
	gorm.ErrCheckConstraintViolated,
	gorm.ErrInvalidData,
	gorm.ErrInvalidValue,
	gorm.ErrInvalidField,
}

// storeErrors are GORM signals of a failed persistence operation.
var storeErrors = []error{
	gorm.ErrInvalidTransaction,
	gorm.ErrNotImplemented,
	gorm.ErrMissingWhereClause,
	gorm.ErrUnsupportedRelation,
	gorm.ErrPrimaryKeyRequired,
	gorm.ErrModelValueRequired,
	gorm.ErrInvalidDB,
	gorm.ErrUnsupportedDriver,
	gorm.ErrDryRunModeUnsupported,
	gorm.ErrForeignKeyViolated,
	sql.ErrConnDone,
	sql.ErrTxDone,
	driver.ErrBadConn,
}

// Classify maps any error to exactly one taxonomy entry. It never returns nil
// for a non-nil err.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, ErrMalformedID) {
		return wrap(KindValidation, "Invalid ID format", err)
	}

	if field, ok := duplicateKey(err); ok {
		msg := "Record already exists"
		if field != "" {
			msg = fmt.Sprintf("%s already exists. Please use a different %s.", field, field)
		}
		return wrap(KindValidation, msg, err)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		e := wrap(KindValidation, "Validation failed", err)
		e.Details = FieldErrors(verrs)
		return e
	}
	if isSchemaRejection(err) {
		return wrap(KindValidation, "Validation failed", err)
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return wrap(KindAuthentication, "Token expired", err)
	}
	var jwtErr *jwt.ValidationError
	if errors.As(err, &jwtErr) {
		return wrap(KindAuthentication, "Invalid token", err)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return wrap(KindNotFound, "Resource not found", err)
	}

	if isStoreFailure(err) {
		return wrap(KindDatabase, "Database operation failed", err)
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		e := wrap(KindInternal, fmt.Sprint(httpErr.Message), err)
		e.StatusCode = httpErr.Code
		return e
	}

	return wrap(KindInternal, "Internal Server Error", err)
}

func wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause, stack: callers(3)}
}

// duplicateKey reports whether err is a unique constraint violation and, when
// the driver exposes it, which field collided.
func duplicateKey(err error) (string, bool) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		if m := mysqlDuplicateKey.FindStringSubmatch(myErr.Message); m != nil {
			return fieldFromIndex(m[1]), true
		}
		return "", true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fieldFromIndex(pgErr.ConstraintName), true
	}

	return "", errors.Is(err, gorm.ErrDuplicatedKey)
}

// fieldFromIndex turns an index name such as "employees.idx_employees_email"
// or "users_email_key" into the column it guards.
func fieldFromIndex(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "_key")
	if i := strings.LastIndex(name, "_"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func isSchemaRejection(err error) bool {
	for _, target := range schemaErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlCheckViolation, mysqlColumnCannotBeNull, mysqlOutOfRange, mysqlIncorrectValue, mysqlDataTooLong:
			return true
		}
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCheckViolation, pgNotNullViolation, pgStringTooLong, pgOutOfRange, pgInvalidText:
			return true
		}
	}
	return false
}

func isStoreFailure(err error) bool {
	for _, target := range storeErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	var myErr *mysql.MySQLError
	var pgErr *pgconn.PgError
	return errors.As(err, &myErr) || errors.As(err, &pgErr)
}

// FieldErrors converts validator output into response details, one entry per
// rejected field in declaration order.
func FieldErrors(verrs validator.ValidationErrors) []FieldError {
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Value:   fe.Value(),
		})
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	label := fe.Field()
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}

	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "Valid email is required."
	case "mobile":
		return label + " must be 10 digits."
	case "numeric", "number":
		return label + " must be a number."
	case "nonnegative":
		return label + " must be positive."
	case "salary":
		return fmt.Sprintf("%s must be below 1000000000000 with at most 2 decimal places.", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long.", label, fe.Param())
	default:
		return label + " is invalid."
	}
}
