package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code.
// This lets callers match sentinel errors with errors.Is regardless of message.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if !errors.As(target, &de) {
		return false
	}
	return de.Code == e.Code
}

// WithCause returns a copy of the error carrying the given cause
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		cause:   cause,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNotFound               = "NOT_FOUND"
	CodeAlreadyExists          = "ALREADY_EXISTS"
	CodeInvalidInput           = "INVALID_INPUT"
	CodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
	CodeInvalidState           = "INVALID_STATE"
	CodeInvalidSelection       = "INVALID_SELECTION"
	CodeIncompleteSelection    = "INCOMPLETE_SELECTION"
	CodeNoMatchingVariation    = "NO_MATCHING_VARIATION"
	CodeInvalidQuantity        = "INVALID_QUANTITY"
	CodePurchasableUnavailable = "PURCHASABLE_UNAVAILABLE"
	CodePersistenceFailure     = "PERSISTENCE_FAILURE"
	CodeDuplicateVariation     = "DUPLICATE_VARIATION"
	CodeInvalidVariation       = "INVALID_VARIATION"
	CodeLockTimeout            = "LOCK_TIMEOUT"
)

// Common domain errors
var (
	ErrNotFound               = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists          = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput           = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict    = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState           = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidSelection       = NewDomainError(CodeInvalidSelection, "Selection references an unknown attribute or value")
	ErrIncompleteSelection    = NewDomainError(CodeIncompleteSelection, "Selection does not assign every attribute")
	ErrNoMatchingVariation    = NewDomainError(CodeNoMatchingVariation, "No variation matches the selection")
	ErrInvalidQuantity        = NewDomainError(CodeInvalidQuantity, "Quantity must be a positive whole number")
	ErrPurchasableUnavailable = NewDomainError(CodePurchasableUnavailable, "Item is not available for purchase")
	ErrPersistenceFailure     = NewDomainError(CodePersistenceFailure, "Failed to persist changes")
	ErrDuplicateVariation     = NewDomainError(CodeDuplicateVariation, "Two variations share the same attribute values")
	ErrInvalidVariation       = NewDomainError(CodeInvalidVariation, "Variation attribute values do not match the product attributes")
	ErrLockTimeout            = NewDomainError(CodeLockTimeout, "Timed out waiting for the resource lock")
)
