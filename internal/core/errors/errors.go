package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for client-side failure classes.
var (
	// Session & authorization
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired, login required")
	ErrNoSession      = errors.New("no persisted session")
	ErrForbidden      = errors.New("action forbidden")

	// Local guards
	ErrSelfDeactivation = errors.New("cannot deactivate your own account")

	// Transport & fetch
	ErrChannelDown = errors.New("event channel is down")
	ErrNotFound    = errors.New("resource not found")
	ErrBadRequest  = errors.New("bad request")
	ErrServerError = errors.New("server error")
)

// APIError carries the HTTP status and server-provided message from a failed
// desk API call.
type APIError struct {
	StatusCode int
	Message    string // server's error envelope message
	Err        error  // classifying sentinel
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError builds an APIError and classifies it with the matching
// sentinel so callers can use errors.Is.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Err:        classify(statusCode),
	}
}

func classify(statusCode int) error {
	switch {
	case statusCode == 401:
		return ErrUnauthorized
	case statusCode == 403:
		return ErrForbidden
	case statusCode == 404:
		return ErrNotFound
	case statusCode >= 500:
		return ErrServerError
	case statusCode >= 400:
		return ErrBadRequest
	}
	return nil
}

// IsUnauthorized reports whether err is the global 401-class failure that
// must clear the persisted session.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrSessionExpired)
}
