package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when an entity cannot be found in the store.
var ErrNotFound = errors.New("not found")

// ErrUnknownKind is returned when an item slug does not map to a known kind.
var ErrUnknownKind = errors.New("unknown item kind")

// ErrProtectedCondition is returned when an operation would delete or retype
// the unconditioned condition of a sequence.
var ErrProtectedCondition = errors.New("unconditioned condition cannot be changed")

// ErrConflict is returned when an entity is in a state that forbids the change.
var ErrConflict = errors.New("conflict")

// ErrLockAcquire is returned when a sequence lock cannot be acquired.
var ErrLockAcquire = errors.New("failed to acquire lock")

// NonFieldErrors is the key used for errors that don't belong to a single field.
const NonFieldErrors = "__all__"

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string][]string `json:"errors"`
}

// NewValidationError returns an empty ValidationError ready to collect messages.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a message for a field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Has reports whether the field collected at least one message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// OrNil returns nil when no message was collected, so callers can
// `return v.OrNil()` at the end of a Validate method.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
