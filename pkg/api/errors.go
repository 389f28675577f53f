package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is matched by a 401 StatusError. The stored session
	// has expired and the user must run "tutor auth" again.
	ErrUnauthorized = errors.New("session expired or invalid, run \"tutor auth\" to log in again")

	// ErrNoSession is returned before any request when the session has no token.
	ErrNoSession = errors.New("not logged in, run \"tutor auth\" first")
)

// PayloadTooLargeMessage is reported for a 413 whose body is not JSON.
const PayloadTooLargeMessage = "image too large or rejected by the server (413 Request Entity Too Large)"

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsPayloadTooLarge reports whether the server rejected the request body
// as too large, which in practice means the attached image.
func (e *StatusError) IsPayloadTooLarge() bool {
	return e.StatusCode == http.StatusRequestEntityTooLarge
}

// IsPayloadTooLarge reports whether err wraps a 413 StatusError.
func IsPayloadTooLarge(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.IsPayloadTooLarge()
}
