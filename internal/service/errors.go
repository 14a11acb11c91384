// Package service holds the credential, task and comment use cases that sit between
// the HTTP handlers and the gorm repositories.
package service

import (
	"errors"
	"strings"
)

// Sentinel errors. Handlers map them to HTTP status codes.
var (
	// ErrNotFound indicates the addressed task does not exist
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the task exists but belongs to another user
	ErrForbidden = errors.New("you do not have permission to perform this action")

	// ErrDuplicateUsername indicates the username is already registered
	ErrDuplicateUsername = errors.New("a user with that username already exists")

	// ErrInvalidCredentials covers both an unknown username and a wrong password
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
)

const (
	msgBlank    = "This field may not be blank."
	msgRequired = "This field is required."
)

type FieldError struct {
	Field  string
	Reason string
}

// ValidationError collects every rejected field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// Has reports whether field was already rejected.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// ByField groups reasons under their field name, preserving order.
func (e *ValidationError) ByField() map[string][]string {
	out := make(map[string][]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = append(out[f.Field], f.Reason)
	}
	return out
}

// orNil returns nil when nothing was collected so callers never see a typed nil error.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
