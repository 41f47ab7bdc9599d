package dto

import (
	"net/http"

	"github.com/erp/pymes/internal/domain/billing"
	"github.com/erp/pymes/internal/domain/inventory"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/erp/pymes/internal/domain/tenant"
	"github.com/erp/pymes/internal/domain/trade"
)

// Codes produced by the HTTP layer itself. Domain codes come from
// shared.DomainError values.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeStorageDisabled = "STORAGE_DISABLED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeStorageDisabled: http.StatusServiceUnavailable,

	// Tenant routing
	tenant.ErrTenantNotFound.Code:      http.StatusNotFound,
	tenant.ErrConnectFailure.Code:      http.StatusInternalServerError,
	tenant.ErrSchemaRetry.Code:         http.StatusServiceUnavailable,
	tenant.ErrConstraintViolation.Code: http.StatusBadRequest,
	tenant.ErrInvalidCredentials.Code:  http.StatusUnauthorized,

	// Shared
	shared.ErrNotFound.Code:          http.StatusNotFound,
	shared.ErrAlreadyExists.Code:     http.StatusConflict,
	shared.ErrInvalidInput.Code:      http.StatusBadRequest,
	shared.ErrUnauthorized.Code:      http.StatusUnauthorized,
	shared.ErrForbidden.Code:         http.StatusForbidden,
	shared.ErrInvalidState.Code:      http.StatusConflict,
	shared.ErrInsufficientStock.Code: http.StatusUnprocessableEntity,

	// Documents
	billing.ErrEmptyInvoice.Code:   http.StatusBadRequest,
	billing.ErrInvalidAmount.Code:  http.StatusBadRequest,
	billing.ErrInvoiceVoided.Code:  http.StatusConflict,
	trade.ErrEmptyPurchase.Code:    http.StatusBadRequest,
	trade.ErrPurchaseVoided.Code:   http.StatusConflict,
	inventory.ErrZeroQuantity.Code: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
