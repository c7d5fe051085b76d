package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the requested trip or trip item does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing title, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
// The concrete error is always a *ValidationError carrying per-field detail.
var ErrValidation = errors.New("validation error")

// ErrCapacityExceeded is returned when the key-value store rejects a write
// because it would exceed the configured byte budget. Prior state is intact.
// Handlers should map this to HTTP 507 Insufficient Storage.
var ErrCapacityExceeded = errors.New("store capacity exceeded")

// ErrReferential is returned when an operation references a record that does
// not exist or belongs to another trip.
var ErrReferential = errors.New("referential integrity violation")

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
// It matches ErrValidation with errors.Is, and also ErrReferential when
// Referential is set.
type ValidationError struct {
	Fields      []FieldError
	Referential bool
}

// Add records a violation for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns e when at least one violation was recorded, nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	if e.Referential {
		return []error{ErrValidation, ErrReferential}
	}
	return []error{ErrValidation}
}

// ReferenceError reports a missing referenced record, e.g. creating an item
// for a trip that does not exist. It matches both ErrNotFound and ErrReferential.
type ReferenceError struct {
	Entity string
	ID     uuid.UUID
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, ErrNotFound)
}

func (e *ReferenceError) Unwrap() []error {
	return []error{ErrNotFound, ErrReferential}
}
