package models

import "fmt"

// ValidationError reports malformed input naming the offending field.
// Retrying the same input never helps.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Rejection reasons for well-formed commands.
const (
	ReasonCardNotActive      = "card is not active"
	ReasonAlreadyActive      = "card is already active"
	ReasonAlreadyDeactivated = "card is already deactivated"
	ReasonDailyLimitExceeded = "daily limit exceeded"
	ReasonInsufficientFunds  = "insufficient funds"
)

// OperationNotAllowedError means input was well-formed but a business rule
// rejected it. State is left unchanged.
type OperationNotAllowedError struct {
	Reason string
}

func (e *OperationNotAllowedError) Error() string {
	return "operation not allowed: " + e.Reason
}

func NotAllowed(reason string) error {
	return &OperationNotAllowedError{Reason: reason}
}

type DataErrorKind string

const (
	EntityNotFound DataErrorKind = "entity not found"
	Conflict       DataErrorKind = "conflict"
)

// DataError means a referenced entity is absent or a uniqueness rule was
// violated by the store.
type DataError struct {
	Kind DataErrorKind
}

func (e *DataError) Error() string {
	return string(e.Kind)
}

// BugError wraps an unexpected internal fault. The wrapped error is for
// internal logging only; Error never exposes it.
type BugError struct {
	Err error
}

func (e *BugError) Error() string {
	return "internal fault"
}

func (e *BugError) Unwrap() error {
	return e.Err
}

func Bug(err error) error {
	return &BugError{Err: err}
}
