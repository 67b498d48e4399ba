package dto

import "net/http"

// Transport-level error codes. Domain errors carry their own codes and are
// mapped to HTTP statuses below.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
)

// domainCodeHTTPStatus maps domain error codes to HTTP statuses. Codes not
// listed here are treated as business-rule violations (422).
var domainCodeHTTPStatus = map[string]int{
	// Missing resources
	"NOT_FOUND":           http.StatusNotFound,
	"PRODUCT_NOT_FOUND":   http.StatusNotFound,
	"SUPPLIER_NOT_FOUND":  http.StatusNotFound,
	"WAREHOUSE_NOT_FOUND": http.StatusNotFound,
	"TAX_CODE_NOT_FOUND":  http.StatusNotFound,
	"LINE_NOT_FOUND":      http.StatusNotFound,

	// Access
	"UNAUTHORIZED": http.StatusUnauthorized,
	"FORBIDDEN":    http.StatusForbidden,
	"NOT_A_MEMBER": http.StatusForbidden,

	// Write races and duplicate decisions
	"CONFLICT":             http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"ALREADY_APPROVED":     http.StatusConflict,
	"ALREADY_PROCESSED":    http.StatusConflict,
	"ALREADY_EXISTS":       http.StatusConflict,

	// Malformed or out-of-bounds input
	"BAD_REQUEST":       http.StatusBadRequest,
	"INVALID_JSON":      http.StatusBadRequest,
	"INVALID_INPUT":     http.StatusBadRequest,
	"INVALID_PRODUCT":   http.StatusBadRequest,
	"INVALID_QUANTITY":  http.StatusBadRequest,
	"INVALID_PRICE":     http.StatusBadRequest,
	"INVALID_DISCOUNT":  http.StatusBadRequest,
	"INVALID_SUPPLIER":  http.StatusBadRequest,
	"INVALID_PO_NUMBER": http.StatusBadRequest,
	"INVALID_TAX_RATE":  http.StatusBadRequest,
	"INVALID_ACTION":    http.StatusBadRequest,
	"REASON_REQUIRED":   http.StatusBadRequest,
	"REASON_TOO_SHORT":  http.StatusBadRequest,
	"REASON_TOO_LONG":   http.StatusBadRequest,
	"NOTES_TOO_LONG":    http.StatusBadRequest,
	"NO_ROWS":           http.StatusBadRequest,
	"TOO_MANY_ROWS":     http.StatusBadRequest,
	"NO_IDS":            http.StatusBadRequest,
	"TOO_MANY_IDS":      http.StatusBadRequest,

	// Internal
	"INTERNAL_ERROR":           http.StatusInternalServerError,
	"NUMBER_GENERATION_FAILED": http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for a domain error code. Unknown
// codes default to 422: the request was well-formed but the operation is
// not allowed by business rules.
func GetHTTPStatus(code string) int {
	if status, ok := domainCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
