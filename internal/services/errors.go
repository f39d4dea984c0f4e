package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AuthorizationError is returned when the acting user lacks the role for an
// operation. No mutation has been attempted.
type AuthorizationError struct {
	Message string `json:"message"`
}

func (e *AuthorizationError) Error() string {
	return "forbidden: " + e.Message
}

func Forbidden(message string) *AuthorizationError {
	return &AuthorizationError{Message: message}
}

func IsAuthorizationError(err error) (*AuthorizationError, bool) {
	var authErr *AuthorizationError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// ValidationError carries per-field messages.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Validator collects field errors. Err returns nil when nothing was added.
type Validator struct {
	fields map[string]string
}

func (v *Validator) Add(field, message string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = message
	}
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

// ReferentialIntegrityError is returned when a referenced record does not
// belong to the stated owner.
type ReferentialIntegrityError struct {
	Message string `json:"message"`
}

func (e *ReferentialIntegrityError) Error() string {
	return e.Message
}

func IsReferentialIntegrityError(err error) (*ReferentialIntegrityError, bool) {
	var refErr *ReferentialIntegrityError
	if errors.As(err, &refErr) {
		return refErr, true
	}
	return nil, false
}

// StateConflictError refuses an operation that the record's current state
// does not allow.
type StateConflictError struct {
	Message string `json:"message"`
}

func (e *StateConflictError) Error() string {
	return e.Message
}

func Conflict(message string) *StateConflictError {
	return &StateConflictError{Message: message}
}

func IsStateConflictError(err error) (*StateConflictError, bool) {
	var conflictErr *StateConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr, true
	}
	return nil, false
}

type NotFoundError struct {
	Resource string `json:"resource"`
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}
