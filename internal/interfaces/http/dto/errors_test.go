package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"PRODUCT_NOT_FOUND", http.StatusNotFound},
		{"FORBIDDEN", http.StatusForbidden},
		{"NOT_A_MEMBER", http.StatusForbidden},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"ALREADY_APPROVED", http.StatusConflict},
		{"REASON_TOO_SHORT", http.StatusBadRequest},
		{"TOO_MANY_ROWS", http.StatusBadRequest},
		{"INTERNAL_ERROR", http.StatusInternalServerError},
		// state-machine violations are business rules
		{"INVALID_TRANSITION", http.StatusUnprocessableEntity},
		{"NOT_DRAFT", http.StatusUnprocessableEntity},
		{"HAS_RECEIPTS", http.StatusUnprocessableEntity},
		{"NO_WAREHOUSE", http.StatusUnprocessableEntity},
		{"SOME_FUTURE_CODE", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetHTTPStatus(tt.code), tt.code)
	}
}
