package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// Local, pre-network conditions
	ErrNoChanges        = errors.New("no changes made")
	ErrMutationInFlight = errors.New("a change for this user is already in progress")
	ErrValidation       = errors.New("validation failed")
	ErrNetwork          = errors.New("network error")
)

// GenericNetworkMessage is surfaced when no server detail is available.
const GenericNetworkMessage = "network error: request failed"

// ValidationError is a local shape violation. It never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NetworkError wraps a transport failure. The operation is left in its pre-call state.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, GenericNetworkMessage)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// ServerError is a non-2xx response. Detail carries the server message verbatim.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return e.Detail
}

// Is maps well-known status codes onto the package sentinels.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrConflict:
		return e.StatusCode == 409
	case ErrUnauthorized:
		return e.StatusCode == 401
	case ErrForbidden:
		return e.StatusCode == 403
	case ErrBadRequest:
		return e.StatusCode == 400 || e.StatusCode == 422
	}
	return false
}

// Reason returns the human-readable reason for err, preferring the server detail
// and falling back to the generic network message.
func Reason(err error) string {
	var serverErr *ServerError
	if errors.As(err, &serverErr) && serverErr.Detail != "" {
		return serverErr.Detail
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	return GenericNetworkMessage
}
