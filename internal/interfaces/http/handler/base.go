// Package handler implements the HTTP endpoints of the pymes API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/erp/pymes/internal/domain/shared"
	"github.com/erp/pymes/internal/infrastructure/logger"
	"github.com/erp/pymes/internal/interfaces/http/dto"
	"github.com/erp/pymes/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, filter shared.Filter) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, filter.Page, filter.PageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewErrorResponse(dto.ErrCodeBadRequest, message, c.GetString(middleware.RequestIDKey)))
}

// HandleDomainError converts errors returned by services into the error
// envelope. Domain errors keep their code and message; anything else is
// logged and reported as an internal error.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	requestID := c.GetString(middleware.RequestIDKey)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		if status >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error("Request failed", zap.String("code", domainErr.Code), zap.Error(err))
		}
		c.AbortWithStatusJSON(status, dto.NewErrorResponse(domainErr.Code, domainErr.Message, requestID))
		return
	}

	logger.GetGinLogger(c).Error("Unexpected error", zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "An unexpected error occurred", requestID))
}

// tenantNIT returns the NIT carried by the access token
func tenantNIT(c *gin.Context) string {
	return middleware.GetTenantNIT(c)
}

// idParam parses a positive integer path parameter, answering 400 when it
// is malformed.
func (h *BaseHandler) idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

type paramKind int

const (
	stringParam paramKind = iota
	intParam
	boolParam
)

// listFilter binds paging and search, plus the equality filters named in
// params. Empty query values are skipped.
func (h *BaseHandler) listFilter(c *gin.Context, params map[string]paramKind) (shared.Filter, bool) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleBindError(c, err)
		return shared.Filter{}, false
	}

	filters := make(map[string]any, len(params))
	for name, kind := range params {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		switch kind {
		case intParam:
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				h.BadRequest(c, "Invalid "+name)
				return shared.Filter{}, false
			}
			filters[name] = v
		case boolParam:
			v, err := strconv.ParseBool(raw)
			if err != nil {
				h.BadRequest(c, "Invalid "+name)
				return shared.Filter{}, false
			}
			filters[name] = v
		default:
			filters[name] = raw
		}
	}
	return q.Filter(filters), true
}

// bindJSON binds the request body, answering 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.HandleBindError(c, err)
		return false
	}
	return true
}
