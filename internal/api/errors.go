package api

import (
	"errors"
	"fmt"
)

// GenericMessage is the user-visible fallback when a failure carries no
// server-provided message (network errors, malformed responses).
const GenericMessage = "Something went wrong. Please try again."

// Error is a failure reported by the backend: a non-2xx status or a
// success:false envelope. Message carries the server-provided text, when any.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error (status %d)", e.Status)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 401
}

// UserMessage reduces any fetch failure to the text shown near the failing
// UI surface: the server message when the backend supplied one, else the
// generic fallback.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericMessage
}
