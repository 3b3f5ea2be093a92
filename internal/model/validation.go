package model

import (
	"fmt"
	"sort"
	"strings"
)

// NonFieldErrors is the key used for validation messages that do not belong
// to a single input field (for example a malformed request body).
const NonFieldErrors = "non_field_errors"

// ValidationError collects field-level validation messages. It is returned
// by the catalog service and rendered as a 400 with Fields as details.
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

// NewValidationError creates an empty validation error.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// FieldError is a shorthand for a validation error with a single message.
func FieldError(field, message string) *ValidationError {
	v := NewValidationError()
	v.Add(field, message)
	return v
}

// Error implements the error interface. Fields are reported in name order.
func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, strings.Join(v.Fields[name], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a message for field.
func (v *ValidationError) Add(field, message string) {
	v.Fields[field] = append(v.Fields[field], message)
}

// Addf appends a formatted message for field.
func (v *ValidationError) Addf(field, format string, args ...any) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any message was recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Fields) > 0
}

// Err returns v as an error, or nil when nothing was recorded.
func (v *ValidationError) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}
