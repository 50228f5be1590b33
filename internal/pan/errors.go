package pan

import (
	"errors"
	"fmt"
)

// ErrMissingSession is wrapped by AuthenticationError when a successful login
// response carries no sessionId.
var ErrMissingSession = errors.New("PAN login succeeded but no sessionId was returned")

// AuthenticationError reports a failed login: a non-2xx status, a transport
// failure, or a response without a session identifier.
type AuthenticationError struct {
	StatusCode int
	Err        error
}

func (e *AuthenticationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrMissingSession):
		return ErrMissingSession.Error()
	case e.Err != nil:
		return "PAN login failed: " + e.Err.Error()
	default:
		return fmt.Sprintf("PAN login failed with status %d", e.StatusCode)
	}
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// FetchError reports a failed stats request: a non-2xx status or a transport failure.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return "PAN stats request failed: " + e.Err.Error()
	}
	return fmt.Sprintf("PAN stats request failed with status %d", e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FormatError reports a stats response without a rows array.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return "PAN stats returned unexpected format"
}

func (e *FormatError) Unwrap() error { return e.Err }
