// internal/apperr/apperr.go
//
// Application error taxonomy.
//
// Context
// -------
// Every failure that crosses a package boundary is wrapped in an *Error
// carrying a Kind.  The HTTP layer maps Kinds to status codes and a uniform
// JSON envelope; nothing below the HTTP layer ever picks a status code, and
// no handler ever reports a failure by redirecting elsewhere.
//
// Kinds
// -----
//   - Unavailable  – the store is unreachable; retryable by the client.
//   - InvalidInput – malformed or missing required field.
//   - NotFound     – referenced entity id does not exist.
//   - Forbidden    – authenticated subject does not own the resource.
//   - Unauthorized – missing, invalid, or expired token on a protected route.
//   - Conflict     – uniqueness violation (duplicate user id).
//   - Internal     – unexpected store or driver error.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	Unavailable  Kind = "unavailable"
	InvalidInput Kind = "invalid_input"
	NotFound     Kind = "not_found"
	Forbidden    Kind = "forbidden"
	Unauthorized Kind = "unauthorized"
	Conflict     Kind = "conflict"
	Internal     Kind = "internal"
)

// Error is the one error type handlers inspect.  Err holds the underlying
// cause for logs; Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error.  The variadic tail may carry one underlying error.
func E(kind Kind, message string, cause ...error) *Error {
	e := &Error{Kind: kind, Message: message}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

// KindOf extracts the Kind from err, or Internal when err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }

// Status maps a Kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case Unavailable:
		return http.StatusServiceUnavailable
	case InvalidInput:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case Unauthorized:
		return http.StatusUnauthorized
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
