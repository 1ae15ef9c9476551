package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrValidation          = errors.New("validation")           // 400
	ErrReferentialConflict = errors.New("referential conflict") // 400
	ErrUnauthenticated     = errors.New("unauthorized")         // 401
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrForbidden           = errors.New("forbidden")            // 403
	ErrNotFound            = errors.New("not found")            // 404
	ErrStore               = errors.New("store")                // 500

	ErrDuplicateEmail = fmt.Errorf("%w: email already registered", ErrValidation)
)

const internalMessage = "internal error"

var kinds = []error{
	ErrValidation,
	ErrReferentialConflict,
	ErrUnauthenticated,
	ErrInvalidToken,
	ErrInvalidCredentials,
	ErrForbidden,
	ErrNotFound,
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(what string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, what)
}

func Forbidden(detail string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, detail)
}

func Conflict(detail string) error {
	return fmt.Errorf("%w: %s", ErrReferentialConflict, detail)
}

// Store wraps a persistence failure. The cause stays in the chain for logs
// but never reaches the client.
func Store(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrReferentialConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show a client: the detail that follows
// the sentinel, or the sentinel itself when there is no detail.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrStore) || Status(err) == http.StatusInternalServerError {
		return internalMessage
	}
	full := err.Error()
	for _, k := range kinds {
		if !errors.Is(err, k) {
			continue
		}
		prefix := k.Error() + ": "
		if i := strings.Index(full, prefix); i >= 0 {
			return full[i+len(prefix):]
		}
		return k.Error()
	}
	return full
}
