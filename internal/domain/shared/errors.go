package shared

import "errors"

// Error codes shared by all bounded contexts. Handlers map these to HTTP
// statuses; services and aggregates never return transport-level errors.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeNotFound            = "NOT_FOUND"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_ERROR domain error
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewInvalidTransitionError creates an INVALID_TRANSITION domain error
func NewInvalidTransitionError(message string) *DomainError {
	return NewDomainError(CodeInvalidTransition, message)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrInvalidState        = NewDomainError(CodeInvalidTransition, "Operation not allowed in current state")
)

// IsValidation reports whether err is a VALIDATION_ERROR
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsInvalidTransition reports whether err is an INVALID_TRANSITION
func IsInvalidTransition(err error) bool {
	return hasCode(err, CodeInvalidTransition)
}

// IsNotFound reports whether err is a NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsConcurrencyConflict reports whether err is a CONCURRENCY_CONFLICT
func IsConcurrencyConflict(err error) bool {
	return hasCode(err, CodeConcurrencyConflict)
}

func hasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
