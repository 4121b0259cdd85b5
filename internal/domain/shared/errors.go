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
// This lets wrapped or re-created errors match the sentinels below via errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of the error carrying cause
func (e *DomainError) Wrap(cause error) *DomainError {
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
	CodeInvalidPostalCode     = "INVALID_POSTAL_CODE"
	CodePostalCodeNotFound    = "POSTAL_CODE_NOT_FOUND"
	CodeLookupUnavailable     = "LOOKUP_UNAVAILABLE"
	CodeInvalidClientInput    = "INVALID_CLIENT_INPUT"
	CodeDependencyUnavailable = "DEPENDENCY_UNAVAILABLE"
	CodeClientNotFound        = "CLIENT_NOT_FOUND"
	CodeStorageFailure        = "STORAGE_FAILURE"
)

// Common domain errors
var (
	// ErrInvalidPostalCode: the raw code does not normalize to 8 digits. Permanent.
	ErrInvalidPostalCode = NewDomainError(CodeInvalidPostalCode, "Invalid postal code")
	// ErrPostalCodeNotFound: the lookup service answered but knows no such code. Never cached.
	ErrPostalCodeNotFound = NewDomainError(CodePostalCodeNotFound, "Postal code not found")
	// ErrLookupUnavailable: timeout or transport failure talking to the lookup service. Retryable.
	ErrLookupUnavailable = NewDomainError(CodeLookupUnavailable, "Address lookup service unavailable")

	ErrInvalidClientInput    = NewDomainError(CodeInvalidClientInput, "Invalid client input")
	ErrDependencyUnavailable = NewDomainError(CodeDependencyUnavailable, "A required dependency is unavailable, retry later")
	ErrClientNotFound        = NewDomainError(CodeClientNotFound, "Client not found")
	ErrStorageFailure        = NewDomainError(CodeStorageFailure, "Storage failure")
)

// WrapStorage wraps a storage engine error as ErrStorageFailure.
// Errors that already carry a domain code are returned unchanged.
func WrapStorage(err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return ErrStorageFailure.Wrap(err)
}

// InvalidInput returns ErrInvalidClientInput with a specific message
func InvalidInput(message string) *DomainError {
	return &DomainError{Code: CodeInvalidClientInput, Message: message}
}
