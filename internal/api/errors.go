// Package api defines the wire types and the normalized error shape for the
// SocialFlow platform REST API.
//
// All request and response bodies are JSON. Server failures carry a "detail"
// string and an HTTP status; the gateway converts every failure — transport or
// server — into an *Error so callers never see a raw transport error.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrUnauthorized matches any *Error carrying HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound matches any *Error carrying HTTP 404.
	ErrNotFound = errors.New("not found")
)

// GenericDetail is the detail message used for transport-level failures where
// no server response was received.
const GenericDetail = "unexpected error"

// Error is the normalized API failure returned by the gateway.
// Status preserves the HTTP status code when a response was received and
// defaults to 500 for transport-level failures.
type Error struct {
	// Status is the HTTP status code of the failure.
	Status int

	// Detail is the server-reported detail string, or GenericDetail for
	// transport failures.
	Detail string
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("api [%d]: %s", e.Status, e.Detail)
}

// Is reports whether this error matches the target sentinel.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// TransportError returns the normalized error for a request that never
// produced a server response.
func TransportError() *Error {
	return &Error{Status: http.StatusInternalServerError, Detail: GenericDetail}
}

// ParseError builds an *Error from a non-2xx response body. The body is
// expected to be a JSON object with a "detail" string; anything else falls
// back to the generic detail so malformed error bodies never escape.
func ParseError(status int, body []byte) *Error {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return &Error{Status: status, Detail: payload.Detail}
	}
	return &Error{Status: status, Detail: GenericDetail}
}
