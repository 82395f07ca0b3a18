// Package common defines shared constants and sentinel errors used across
// the payslips client layers. Callers should use errors.Is / errors.As to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Caller input errors (empty credentials, malformed deep-link payloads).
	ErrValidation = errors.New("validation error")

	// Transport errors: the request never produced an HTTP response.
	ErrNetwork = errors.New("network error")

	// The response body did not match the expected schema.
	ErrDecoding = errors.New("decoding error")

	// The server rejected the bearer token or the credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// Local storage errors.
	ErrorNotFound = errors.New("not found")
)

// ErrMissingCredentials is the ErrValidation returned by a login attempt
// with an empty email or password.
var ErrMissingCredentials = fmt.Errorf("%w: email and password are required", ErrValidation)

// ServerError reports a non-2xx HTTP response.
type ServerError struct {
	Code int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (code %d)", e.Code)
}

// Is lets 401 and 403 responses match ErrUnauthorized.
func (e *ServerError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Code == 401 || e.Code == 403)
}

// Describe returns the user-facing classification of err. Raw decoder or
// transport diagnostics are never included.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var se *ServerError

	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "email and password are required"
	case errors.Is(err, ErrValidation):
		return "invalid input"
	case errors.Is(err, ErrNetwork):
		return "network connection error"
	case errors.Is(err, ErrDecoding):
		return "could not process server data"
	case errors.As(err, &se):
		return se.Error()
	default:
		return "unexpected error"
	}
}
