package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/erp/pymes/internal/domain/shared"
	domaintenant "github.com/erp/pymes/internal/domain/tenant"
	"github.com/erp/pymes/internal/interfaces/http/middleware"
	"github.com/erp/pymes/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleDomainError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"tenant not found", domaintenant.ErrTenantNotFound, http.StatusNotFound, "TENANT_NOT_FOUND", domaintenant.ErrTenantNotFound.Message},
		{"schema retry", domaintenant.ErrSchemaRetry, http.StatusServiceUnavailable, "SCHEMA_RETRY", domaintenant.ErrSchemaRetry.Message},
		{"wrapped stock error", fmt.Errorf("lock: %w", shared.ErrInsufficientStock.WithMessage("only 1 left")), http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", "only 1 left"},
		{"constraint", domaintenant.ErrConstraintViolation.WithMessage(domaintenant.MsgReferenced), http.StatusBadRequest, "CONSTRAINT_VIOLATION", domaintenant.MsgReferenced},
		{"plain error hidden", errors.New("dial tcp 10.0.0.8:3306: refused"), http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContext(t, http.MethodGet, "/x", nil)
			tc.Context.Set(middleware.RequestIDKey, "req-1")

			h := &BaseHandler{}
			h.HandleDomainError(tc.Context, tt.err)

			assert.Equal(t, tt.status, tc.Recorder.Code)
			errMap := testutil.AssertErrorResponse(t, tc.Recorder, tt.code)
			assert.Equal(t, tt.message, errMap["message"])
			assert.Equal(t, "req-1", errMap["request_id"])
		})
	}
}

func TestListFilter(t *testing.T) {
	h := &BaseHandler{}
	params := map[string]paramKind{"tercero_id": intParam, "activo": boolParam, "estado": stringParam}

	t.Run("parses typed filters", func(t *testing.T) {
		tc := testutil.NewTestContext(t, http.MethodGet, "/x?page=2&page_size=10&search=tor&tercero_id=3&activo=true&estado=emitida", nil)

		filter, ok := h.listFilter(tc.Context, params)

		require.True(t, ok)
		assert.Equal(t, 2, filter.Page)
		assert.Equal(t, 10, filter.PageSize)
		assert.Equal(t, "tor", filter.Search)
		assert.Equal(t, int64(3), filter.Filters["tercero_id"])
		assert.Equal(t, true, filter.Filters["activo"])
		assert.Equal(t, "emitida", filter.Filters["estado"])
	})

	t.Run("empty values skipped", func(t *testing.T) {
		tc := testutil.NewTestContext(t, http.MethodGet, "/x?estado=", nil)

		filter, ok := h.listFilter(tc.Context, params)

		require.True(t, ok)
		assert.Empty(t, filter.Filters)
		assert.Equal(t, 1, filter.Page)
	})

	t.Run("bad integer", func(t *testing.T) {
		tc := testutil.NewTestContext(t, http.MethodGet, "/x?tercero_id=abc", nil)

		_, ok := h.listFilter(tc.Context, params)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, tc.Recorder.Code)
	})

	t.Run("page size capped", func(t *testing.T) {
		tc := testutil.NewTestContext(t, http.MethodGet, "/x?page_size=500", nil)

		_, ok := h.listFilter(tc.Context, params)

		assert.False(t, ok)
		testutil.AssertErrorResponse(t, tc.Recorder, "VALIDATION_ERROR")
	})
}

func TestIDParam(t *testing.T) {
	h := &BaseHandler{}

	tc := testutil.NewTestContext(t, http.MethodGet, "/x/0", nil)
	tc.Context.Params = append(tc.Context.Params, ginParam("id", "0"))
	_, ok := h.idParam(tc.Context, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, tc.Recorder.Code)

	tc = testutil.NewTestContext(t, http.MethodGet, "/x/12", nil)
	tc.Context.Params = append(tc.Context.Params, ginParam("id", "12"))
	id, ok := h.idParam(tc.Context, "id")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)
}
