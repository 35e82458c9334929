// Package apperror defines the error taxonomy shared by all engines. Services
// raise these; the HTTP layer translates them to protocol responses.
package apperror

import "fmt"

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	Field    string
	Value    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: %v", e.Resource, e.Field, e.Value)
}

// NewNotFound builds a NotFoundError for a resource looked up by field.
func NewNotFound(resource, field string, value any) error {
	return &NotFoundError{Resource: resource, Field: field, Value: value}
}

// DuplicateError reports a uniqueness violation.
type DuplicateError struct {
	Resource string
	Field    string
	Value    any
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists with %s: %v", e.Resource, e.Field, e.Value)
}

// NewDuplicate builds a DuplicateError for a resource conflicting on field.
func NewDuplicate(resource, field string, value any) error {
	return &DuplicateError{Resource: resource, Field: field, Value: value}
}

// BusinessRuleError reports a failed domain precondition.
type BusinessRuleError struct {
	Msg string
}

func (e *BusinessRuleError) Error() string { return e.Msg }

// NewBusinessRule builds a BusinessRuleError with a formatted message.
func NewBusinessRule(format string, args ...any) error {
	return &BusinessRuleError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidOperationError reports a state transition that is not reachable from
// the current state.
type InvalidOperationError struct {
	Msg string
}

func (e *InvalidOperationError) Error() string { return e.Msg }

// NewInvalidOperation builds an InvalidOperationError with a formatted message.
func NewInvalidOperation(format string, args ...any) error {
	return &InvalidOperationError{Msg: fmt.Sprintf(format, args...)}
}
