package api

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when an authenticated call is made while no
// token pair is stored.
var ErrNoSession = errors.New("not signed in")

// ErrSessionExpired is returned when the refresh token itself is
// rejected. The stored tokens have already been cleared by then; the
// only recovery is signing in again.
var ErrSessionExpired = errors.New("session expired")

// ErrNoRecords is returned when a bulk submission is attempted with an
// empty record list. No network call is made.
var ErrNoRecords = errors.New("no records to upload")

// APIError carries a non-2xx response with the server-provided message
// when one was present in the envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}

// ServerMessage extracts the server-provided message from an error
// chain, or returns fallback.
func ServerMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
