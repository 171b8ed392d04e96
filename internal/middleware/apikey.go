// ===========================================
// Package middleware - API Key Authentication
// ===========================================
// An API key identifies the caller; its ID is the owner of the links
// created with it.
//
// FLOW:
// 1. Extract API key from request header
// 2. Hash the key (we never store plain keys)
// 3. Look up hash in database
// 4. If valid, attach key info to request context
// 5. If invalid, return 401 Unauthorized
//
// SECURITY DECISIONS:
// - X-API-Key header or Authorization: Bearer
// - Never log raw API keys!
// ===========================================

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/models"
)

const apiKeyContextKey = "api_key"

// Error types for API key validation
var (
	ErrMissingAPIKey = errors.New("API key is required")
	ErrInvalidAPIKey = errors.New("API key is invalid")
)

// KeyValidator resolves a raw API key. It returns nil, nil for unknown keys.
type KeyValidator interface {
	ValidateKey(ctx context.Context, rawKey string) (*models.APIKey, error)
}

// APIKeyAuth is the middleware for API key authentication.
type APIKeyAuth struct {
	keys   KeyValidator
	logger *zap.Logger
}

// NewAPIKeyAuth creates a new API key auth middleware.
func NewAPIKeyAuth(keys KeyValidator, logger *zap.Logger) *APIKeyAuth {
	return &APIKeyAuth{keys: keys, logger: logger}
}

// RequireKey returns middleware that requires a valid API key.
// Requests without valid keys are rejected with 401.
func (a *APIKeyAuth) RequireKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey, err := a.extractAndValidate(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: "Invalid or missing API key",
				Code:  models.ErrCodeUnauthorized,
			})
			return
		}

		c.Set(apiKeyContextKey, apiKey)
		c.Next()
	}
}

// OptionalKey validates a key when one is sent. A request carrying a bad
// key is still rejected; a request without one proceeds anonymously.
func (a *APIKeyAuth) OptionalKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey, err := a.extractAndValidate(c)
		switch {
		case errors.Is(err, ErrMissingAPIKey):
		case err != nil:
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: "Invalid API key",
				Code:  models.ErrCodeUnauthorized,
			})
			return
		default:
			c.Set(apiKeyContextKey, apiKey)
		}
		c.Next()
	}
}

func (a *APIKeyAuth) extractAndValidate(c *gin.Context) (*models.APIKey, error) {
	rawKey := extractKey(c)
	if rawKey == "" {
		return nil, ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	apiKey, err := a.keys.ValidateKey(ctx, rawKey)
	if err != nil {
		a.logger.Error("API key validation failed", zap.Error(err))
		return nil, err
	}
	if apiKey == nil || !apiKey.IsActive {
		return nil, ErrInvalidAPIKey
	}
	return apiKey, nil
}

// extractKey gets the API key from the X-API-Key header or a Bearer token.
func extractKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}

	auth := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// ===========================================
// Context Helpers
// ===========================================

// GetAPIKeyFromContext retrieves the validated API key from context.
// Returns nil if no key was validated.
func GetAPIKeyFromContext(c *gin.Context) *models.APIKey {
	if val, exists := c.Get(apiKeyContextKey); exists {
		if key, ok := val.(*models.APIKey); ok {
			return key
		}
	}
	return nil
}

// OwnerID returns the authenticated owner, or nil for anonymous requests.
func OwnerID(c *gin.Context) *uuid.UUID {
	if key := GetAPIKeyFromContext(c); key != nil {
		id := key.ID
		return &id
	}
	return nil
}
