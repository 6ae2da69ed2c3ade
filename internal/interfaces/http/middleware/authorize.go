package middleware

import (
	"errors"
	"net/http"

	"github.com/erp/crm/internal/infrastructure/auth"
	"github.com/erp/crm/internal/infrastructure/logger"
	"github.com/erp/crm/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleAuthorizer decides whether a role may act on an object
type RoleAuthorizer interface {
	Authorize(role auth.Role, object, action string) error
}

// Authorize returns middleware that lets the request through only when the
// caller's role holds action on object. It must run after JWTAuthMiddleware.
func Authorize(authorizer RoleAuthorizer, object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString(logger.GinRequestIDKey)
		role := GetJWTRole(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", requestID))
			return
		}

		err := authorizer.Authorize(role, object, action)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, auth.ErrForbidden):
			logger.GetGinLogger(c).Info("Access denied",
				zap.String("role", string(role)),
				zap.String("object", object),
				zap.String("action", action),
			)
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "You do not have permission to perform this action", requestID))
		default:
			logger.GetGinLogger(c).Error("Policy evaluation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "An internal error occurred", requestID))
		}
	}
}
