package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rdrlink/shortener/internal/middleware"
	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/service"
)

// Redirector decides where a short link visit goes.
type Redirector interface {
	HandleRedirect(ctx context.Context, req service.RedirectRequest) service.RedirectResult
}

// RedirectHandler serves GET /:shortCode.
type RedirectHandler struct {
	redirector Redirector
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(r Redirector) *RedirectHandler {
	return &RedirectHandler{redirector: r}
}

// ===========================================
// GET /:shortCode
// ===========================================
// Redirects to the destination URL.
// This is the MAIN functionality - must be FAST!
//
// WHY 302 INSTEAD OF 301?
// - 301 (Permanent): Browser caches forever, no analytics
// - 302 (Temporary): Browser asks every time, we can track clicks
//
// The no-cache headers keep intermediaries from short-circuiting
// later visits.
func (h *RedirectHandler) Redirect(c *gin.Context) {
	result := h.redirector.HandleRedirect(c.Request.Context(), service.RedirectRequest{
		ShortCode: c.Param("shortCode"),
		Host:      c.Request.Host,
		RawQuery:  c.Request.URL.RawQuery,
		ClientIP:  middleware.ClientIP(c),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	})

	switch result.Outcome {
	case service.OutcomeFound:
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Redirect(http.StatusFound, result.Location)

	case service.OutcomeNotFound:
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Link not found",
			Code:  models.ErrCodeNotFound,
		})

	case service.OutcomeExpired:
		c.JSON(http.StatusGone, models.ErrorResponse{
			Error: "Link has expired",
			Code:  models.ErrCodeExpired,
		})

	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Internal server error",
			Code:  models.ErrCodeInternalError,
		})
	}
}
