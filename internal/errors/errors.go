package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the session proxy
var (
	// Session errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrRefreshFailed   = errors.New("token refresh failed")
	ErrMFARequired     = errors.New("multi-factor authentication required")
	ErrInvalidCookie   = errors.New("invalid cookie")

	// Upstream errors
	ErrCSRFUnavailable     = errors.New("csrf token unavailable")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamRejected    = errors.New("upstream rejected request")

	// Input errors
	ErrValidation = errors.New("validation failed")
)

// UpstreamError is a non-2xx response from the upstream API. The body is kept
// so callers can relay it or pick an error message out of it.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d %s", e.Status, http.StatusText(e.Status))
}

// Unwrap maps auth failures onto ErrUnauthenticated so errors.Is can be used
// without inspecting the status.
func (e *UpstreamError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthenticated
	}
	return ErrUpstreamRejected
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Status
	}
	return 0
}
