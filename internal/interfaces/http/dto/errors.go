package dto

import (
	"net/http"

	"github.com/clientes/backend/internal/domain/shared"
)

// General error codes
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeForbidden       = "ERR_FORBIDDEN"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeForbidden:       http.StatusForbidden,

	// Domain errors
	shared.CodeInvalidPostalCode:     http.StatusBadRequest,
	shared.CodeInvalidClientInput:    http.StatusBadRequest,
	shared.CodePostalCodeNotFound:    http.StatusNotFound,
	shared.CodeClientNotFound:        http.StatusNotFound,
	shared.CodeLookupUnavailable:     http.StatusServiceUnavailable,
	shared.CodeDependencyUnavailable: http.StatusServiceUnavailable,
	shared.CodeStorageFailure:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsRetryable reports whether clients may retry a request that failed with code
func IsRetryable(code string) bool {
	switch code {
	case shared.CodeLookupUnavailable, shared.CodeDependencyUnavailable, ErrCodeRateLimited:
		return true
	default:
		return false
	}
}
