package handler

import (
	"net/http"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/interfaces/http/dto"
	"github.com/erp/crm/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(logger.GinRequestIDKey)
}

// caller returns the tenant and user of the authenticated request,
// answering 401 when the claims are unusable.
func (h *BaseHandler) caller(c *gin.Context) (tenantID, userID uuid.UUID, ok bool) {
	tenantID, err := middleware.GetTenantUUID(c)
	if err != nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = middleware.GetUserUUID(c)
	if err != nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

// pathID parses the :id path parameter, answering 400 when malformed
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds and validates the body, answering 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for bodies that may be empty
func (h *BaseHandler) bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return h.bindJSON(c, req)
}

// bindQuery binds and validates query parameters, answering 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// List sends a success response carrying the item count
func (h *BaseHandler) List(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, dto.NewListResponse(data, total))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// HandleError converts an error to an HTTP response. Domain errors keep
// their message; anything else is logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if domainErr, ok := shared.AsDomainError(err); ok {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}
