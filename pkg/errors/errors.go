package linguacall_errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("conflict")
	ErrUnreachable     = errors.New("server unreachable")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotConnected    = errors.New("not connected")
)

// APIError carries a non-2xx response that does not map onto one of the
// sentinel errors above. Message is the server's detail text when present.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// FromStatus maps an HTTP status plus server detail onto the taxonomy.
func FromStatus(status int, code, message string) error {
	switch status {
	case 401:
		return ErrUnauthenticated
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	}
	return &APIError{Status: status, Code: code, Message: message}
}
