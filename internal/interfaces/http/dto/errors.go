package dto

import (
	"net/http"

	"github.com/schoolms/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes come from the shared package.
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
//
// Correctable request errors map below 500. INVARIANT_VIOLATION means the
// stored data itself is inconsistent, so it surfaces as a server error.
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:          http.StatusBadRequest,
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeConflict:            http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeOverpayment:         http.StatusUnprocessableEntity,
	shared.CodeInvalidState:        http.StatusUnprocessableEntity,
	shared.CodeInvariantViolation:  http.StatusInternalServerError,

	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
