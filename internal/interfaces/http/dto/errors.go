package dto

import "net/http"

// Internal fallback code for non-domain errors
const ErrCodeInternal = "INTERNAL_ERROR"

// statusByCode maps domain error codes to HTTP status codes. Codes not
// listed here fall back to 500.
var statusByCode = map[string]int{
	"INVALID_ARGUMENT":  http.StatusBadRequest,
	"UNAUTHORIZED":      http.StatusUnauthorized,
	"FORBIDDEN":         http.StatusForbidden,
	"NOT_FOUND":         http.StatusNotFound,
	"ALREADY_EXISTS":    http.StatusConflict,
	"INVALID_STATE":     http.StatusUnprocessableEntity,
	"NOTHING_TO_UPDATE": http.StatusUnprocessableEntity,
	ErrCodeInternal:     http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for a domain error code
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
