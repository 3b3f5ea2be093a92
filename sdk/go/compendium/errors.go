// Package compendium provides a Go client for the Compendium catalog API.
package compendium

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents an error from the Compendium API with the HTTP status
// code, the server's error code and, for validation failures, the messages
// keyed by field.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string][]string
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("compendium: %s (%d): %s %v", e.Code, e.StatusCode, e.Message, e.Fields)
	}
	return fmt.Sprintf("compendium: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

func statusIs(err error, code int) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == code
	}
	return false
}

// IsNotFound returns true if the error is a 404.
func IsNotFound(err error) bool { return statusIs(err, http.StatusNotFound) }

// IsInvalid returns true if the server rejected the request body (400).
func IsInvalid(err error) bool { return statusIs(err, http.StatusBadRequest) }

// IsRateLimited returns true if the error is a 429 (Too Many Requests).
func IsRateLimited(err error) bool { return statusIs(err, http.StatusTooManyRequests) }

// FieldErrors returns the per-field messages of a validation error, or nil.
func FieldErrors(err error) map[string][]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
