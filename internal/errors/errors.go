package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrMalformedID is returned when a resource identifier cannot be parsed.
var ErrMalformedID = errors.New("malformed id")

// Kind is the closed set of error categories the API reports.
type Kind int

const (
	// KindInternal is the fallback for failures nothing else recognises.
	KindInternal Kind = iota
	// KindValidation covers malformed input, duplicate keys and schema rejections.
	KindValidation
	// KindAuthentication covers missing, invalid or expired credentials.
	KindAuthentication
	// KindAuthorization is reserved for authenticated callers lacking permission.
	KindAuthorization
	// KindNotFound is returned when the target record does not exist.
	KindNotFound
	// KindDatabase covers persistence failures that are not otherwise classified.
	KindDatabase
)

// Status returns the default HTTP status for k.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindDatabase:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the stable machine-readable code for k.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindAuthentication:
		return "AUTH_ERROR"
	case KindAuthorization:
		return "AUTHORIZATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindDatabase:
		return "DATABASE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindDatabase:
		return "database"
	default:
		return "internal"
	}
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error is a classified API error.
type Error struct {
	Kind    Kind
	Message string
	Details []FieldError
	// StatusCode overrides Kind.Status when non-zero.
	StatusCode int
	// Err is the underlying cause, if any.
	Err error

	stack string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code to respond with.
func (e *Error) Status() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	return e.Kind.Status()
}

// Code returns the machine-readable code to respond with.
func (e *Error) Code() string {
	return e.Kind.Code()
}

// Stack returns the call stack captured when e was created.
func (e *Error) Stack() string {
	return e.stack
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause, stack: callers(3)}
}

// Validation returns a validation error with optional per-field details.
func Validation(message string, details ...FieldError) *Error {
	e := newError(KindValidation, message, nil)
	e.Details = details
	return e
}

// Authentication returns an authentication error.
func Authentication(message string) *Error {
	if message == "" {
		message = "Authentication failed"
	}
	return newError(KindAuthentication, message, nil)
}

// Authorization returns an authorization error.
func Authorization(message string) *Error {
	if message == "" {
		message = "Access denied"
	}
	return newError(KindAuthorization, message, nil)
}

// NotFound returns a not-found error for the named resource.
func NotFound(resource string) *Error {
	if resource == "" {
		resource = "Resource"
	}
	return newError(KindNotFound, resource+" not found", nil)
}

// Database wraps a persistence failure.
func Database(cause error) *Error {
	return newError(KindDatabase, "Database operation failed", cause)
}

// Internal wraps an unclassified failure.
func Internal(message string, cause error) *Error {
	if message == "" {
		message = "Internal Server Error"
	}
	return newError(KindInternal, message, cause)
}

func callers(skip int) string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}
