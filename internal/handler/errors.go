// ===========================================
// Package handler - HTTP Request Handlers
// ===========================================
// Handlers are "thin":
// 1. Parse request
// 2. Call service
// 3. Format response
//
// Service errors become HTTP statuses here and nowhere else.
// ===========================================

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/service"
)

// handleError maps a service error to a status and ErrorResponse.
// Unknown errors are logged and reported without details.
func handleError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Link not found",
			Code:  models.ErrCodeNotFound,
		})

	case errors.Is(err, service.ErrLinkExpired):
		c.JSON(http.StatusGone, models.ErrorResponse{
			Error: "Link has expired",
			Code:  models.ErrCodeExpired,
		})

	case errors.Is(err, service.ErrCodeTaken):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error: "Short code already taken",
			Code:  models.ErrCodeConflict,
		})

	case errors.Is(err, service.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid URL format",
			Code:    models.ErrCodeBadRequest,
			Details: "URL must be absolute and start with http:// or https://",
		})

	case errors.Is(err, service.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid short code",
			Code:    models.ErrCodeBadRequest,
			Details: err.Error(),
		})

	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidInterval):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Code:    models.ErrCodeBadRequest,
			Details: err.Error(),
		})

	default:
		// SECURITY: Don't expose internal error details!
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Internal server error",
			Code:  models.ErrCodeInternalError,
		})
	}
}

func badRequest(c *gin.Context, message string, err error) {
	resp := models.ErrorResponse{Error: message, Code: models.ErrCodeBadRequest}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error: "API key required",
		Code:  models.ErrCodeUnauthorized,
	})
}
