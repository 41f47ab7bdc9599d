package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{"TENANT_NOT_FOUND", http.StatusNotFound},
		{"NOT_FOUND", http.StatusNotFound},
		{"TENANT_UNAVAILABLE", http.StatusInternalServerError},
		{"SCHEMA_RETRY", http.StatusServiceUnavailable},
		{"CONSTRAINT_VIOLATION", http.StatusBadRequest},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"UNAUTHORIZED", http.StatusUnauthorized},
		{"INSUFFICIENT_STOCK", http.StatusUnprocessableEntity},
		{"INVALID_INPUT", http.StatusBadRequest},
		{"EMPTY_INVOICE", http.StatusBadRequest},
		{"EMPTY_PURCHASE", http.StatusBadRequest},
		{"INVALID_AMOUNT", http.StatusBadRequest},
		{"ZERO_QUANTITY", http.StatusBadRequest},
		{"INVOICE_VOIDED", http.StatusConflict},
		{"PURCHASE_VOIDED", http.StatusConflict},
		{"INVALID_STATE", http.StatusConflict},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorResponseJSON(t *testing.T) {
	data, err := json.Marshal(NewErrorResponse("TENANT_NOT_FOUND", "Company not found", "req-1"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"success":false,"error":{"code":"TENANT_NOT_FOUND","message":"Company not found","request_id":"req-1"}}`, string(data))
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-2", []ValidationDetail{
		{Field: "nit", Message: "Invalid NIT"},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "nit", resp.Error.Details[0].Field)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, 0, NewSuccessResponseWithMeta(nil, 5, 1, 0).Meta.TotalPages)
}

func TestListQuery_Filter(t *testing.T) {
	f := ListQuery{Page: 3, Search: "cuaderno"}.Filter(map[string]any{"categoria": "papeleria"})

	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 20, f.PageSize)
	assert.Equal(t, "cuaderno", f.Search)
	assert.Equal(t, "papeleria", f.Filters["categoria"])
}
