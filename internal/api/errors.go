package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stackassist-backend/internal/core"
	"stackassist-backend/internal/middleware"
	"stackassist-backend/internal/models"
)

// mapServiceErrorToStatus writes the HTTP reply for a service error. Client errors
// carry the error text as details; anything unexpected is logged and reported with a
// static message.
func mapServiceErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: core.ErrInvalidCredentials.Error()}
	case errors.Is(err, core.ErrSessionExpired):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: core.ErrSessionExpired.Error()}
	case errors.Is(err, core.ErrEmailInUse):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrEmailInUse.Error()}
	case errors.Is(err, core.ErrWeakPassword):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrWeakPassword.Error()}
	case errors.Is(err, core.ErrDuplicateEmail), errors.Is(err, core.ErrDuplicatePhone), errors.Is(err, core.ErrAlreadyTeamMember):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: err.Error()}
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrReferenceNotFound):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Validation failed", Details: err.Error()}
	case errors.Is(err, core.ErrInvalidLink):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrInvalidLink.Error()}
	case errors.Is(err, core.ErrAccessDenied):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrAccessDenied.Error()}
	case errors.Is(err, core.ErrPermissionDenied):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrPermissionDenied.Error(), Details: err.Error()}
	case errors.Is(err, core.ErrNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrNotFound.Error()}
	case errors.Is(err, core.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		logger.Warn("backend unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: core.ErrUnavailable.Error()}
	default:
		logger.Error("internal server error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// principal returns the caller resolved by the access middleware, replying 401 when
// the route was registered without it.
func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not found in context"})
		return models.Principal{}, false
	}
	return p, true
}

// bindJSON decodes the request body, replying 400 on malformed input.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return false
	}
	return true
}
