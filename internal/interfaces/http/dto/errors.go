package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodePersistence is used when the order could not be stored
	ErrCodePersistence = "ERR_PERSISTENCE_FAILURE"
	// ErrCodeLockTimeout is used when the order stayed locked by another request
	ErrCodeLockTimeout = "ERR_LOCK_TIMEOUT"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidQuantity is used for quantities that are not positive whole numbers
	ErrCodeInvalidQuantity = "ERR_INVALID_QUANTITY"
	// ErrCodeInvalidSelection is used when a selection names unknown attributes or values
	ErrCodeInvalidSelection = "ERR_INVALID_SELECTION"
	// ErrCodeInvalidEmail is used for malformed email addresses
	ErrCodeInvalidEmail = "ERR_INVALID_EMAIL"
	// ErrCodeMissingEmail is used when a step needs an email address
	ErrCodeMissingEmail = "ERR_MISSING_EMAIL"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeNoMatchingVariation is used when no variation carries the selected values
	ErrCodeNoMatchingVariation = "ERR_NO_MATCHING_VARIATION"
	// ErrCodeIncompleteSelection is used when attributes are left unselected
	ErrCodeIncompleteSelection = "ERR_INCOMPLETE_SELECTION"
	// ErrCodePurchasableUnavailable is used when the item is not on sale
	ErrCodePurchasableUnavailable = "ERR_PURCHASABLE_UNAVAILABLE"
	// ErrCodeEmptyOrder is used when checkout is entered with an empty cart
	ErrCodeEmptyOrder = "ERR_EMPTY_ORDER"
	// ErrCodeInvalidVariation is used for variations that break the catalog matrix
	ErrCodeInvalidVariation = "ERR_INVALID_VARIATION"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodePersistence: http.StatusInternalServerError,
	ErrCodeLockTimeout: http.StatusServiceUnavailable,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeInvalidQuantity:  http.StatusBadRequest,
	ErrCodeInvalidSelection: http.StatusBadRequest,
	ErrCodeInvalidEmail:     http.StatusBadRequest,
	ErrCodeMissingEmail:     http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:           http.StatusUnprocessableEntity,
	ErrCodeNoMatchingVariation:    http.StatusUnprocessableEntity,
	ErrCodeIncompleteSelection:    http.StatusUnprocessableEntity,
	ErrCodePurchasableUnavailable: http.StatusUnprocessableEntity,
	ErrCodeEmptyOrder:             http.StatusUnprocessableEntity,
	ErrCodeInvalidVariation:       http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                 ErrCodeNotFound,
	"ALREADY_EXISTS":            ErrCodeAlreadyExists,
	"INVALID_INPUT":             ErrCodeInvalidInput,
	"INVALID_STATE":             ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":      ErrCodeConcurrencyConflict,
	"INVALID_SELECTION":         ErrCodeInvalidSelection,
	"INCOMPLETE_SELECTION":      ErrCodeIncompleteSelection,
	"NO_MATCHING_VARIATION":     ErrCodeNoMatchingVariation,
	"INVALID_QUANTITY":          ErrCodeInvalidQuantity,
	"PURCHASABLE_UNAVAILABLE":   ErrCodePurchasableUnavailable,
	"PERSISTENCE_FAILURE":       ErrCodePersistence,
	"DUPLICATE_VARIATION":       ErrCodeInvalidVariation,
	"INVALID_VARIATION":         ErrCodeInvalidVariation,
	"INVALID_ATTRIBUTE":         ErrCodeInvalidInput,
	"INVALID_ATTRIBUTE_VALUE":   ErrCodeInvalidInput,
	"DUPLICATE_ATTRIBUTE_VALUE": ErrCodeAlreadyExists,
	"INVALID_CODE":              ErrCodeInvalidInput,
	"INVALID_TITLE":             ErrCodeInvalidInput,
	"INVALID_SKU":               ErrCodeInvalidInput,
	"INVALID_PRICE":             ErrCodeInvalidInput,
	"INVALID_PRODUCT":           ErrCodeInvalidInput,
	"INVALID_PURCHASABLE":       ErrCodeInvalidInput,
	"INVALID_CUSTOMER":          ErrCodeInvalidInput,
	"ALREADY_ACTIVE":            ErrCodeInvalidState,
	"ALREADY_INACTIVE":          ErrCodeInvalidState,
	"LOCK_TIMEOUT":              ErrCodeLockTimeout,
	"INVALID_EMAIL":             ErrCodeInvalidEmail,
	"MISSING_EMAIL":             ErrCodeMissingEmail,
	"EMPTY_ORDER":               ErrCodeEmptyOrder,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
