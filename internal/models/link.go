// ===========================================
// Package models - Domain Models
// ===========================================
// Models are the data shapes shared by the handler, service and
// repository layers. They carry no behaviour beyond simple state checks.
//
// NAMING CONVENTION:
// - Singular nouns: Link, ClickEvent, APIKey
// - Request/Response suffixes for DTOs
// ===========================================

package models

import (
	"time"

	"github.com/google/uuid"
)

// ===========================================
// Core Domain Models
// ===========================================

// Link is a short code bound to a destination URL within a domain.
// The pair (ShortCode, Domain) is unique.
type Link struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ShortCode    string     `json:"short_code" db:"short_code"`
	Domain       string     `json:"domain" db:"domain"`
	URL          string     `json:"url" db:"url"`
	Title        *string    `json:"title,omitempty" db:"title"`
	Description  *string    `json:"description,omitempty" db:"description"`
	PasswordHash *string    `json:"-" db:"password_hash"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	Clicks       int64      `json:"clicks" db:"clicks"` // Denormalized, may lag the event count
	OwnerID      *uuid.UUID `json:"owner_id,omitempty" db:"owner_id"`
	ProjectID    *uuid.UUID `json:"project_id,omitempty" db:"project_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// IsExpiredAt reports whether the link's expiry lies strictly before now.
// Links without an expiry never expire.
func (l *Link) IsExpiredAt(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// IsExpired is IsExpiredAt evaluated against the wall clock.
func (l *Link) IsExpired() bool {
	return l.IsExpiredAt(time.Now())
}

// HasPassword reports whether a password hash is stored for the link.
func (l *Link) HasPassword() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// IsOwnedBy reports whether owner created the link.
func (l *Link) IsOwnedBy(owner uuid.UUID) bool {
	return l.OwnerID != nil && *l.OwnerID == owner
}

// LinkFilter selects a page of an owner's links.
// Cursor is inclusive: the page starts at the link it names.
type LinkFilter struct {
	OwnerID   uuid.UUID
	ProjectID *uuid.UUID
	Search    string
	Cursor    *uuid.UUID
	Limit     int
}

// APIKey represents an API key for authentication.
// The actual key value is NEVER stored - only its hash.
type APIKey struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	KeyHash    string     `json:"-" db:"key_hash"`
	Name       string     `json:"name" db:"name"`
	RateLimit  int        `json:"rate_limit" db:"rate_limit"` // Requests per minute allowed
	IsActive   bool       `json:"is_active" db:"is_active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
}

// ===========================================
// Request DTOs
// ===========================================

// CreateLinkRequest is the body of POST /api/links.
type CreateLinkRequest struct {
	URL         string     `json:"url" binding:"required"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	CustomCode  string     `json:"custom_code,omitempty"`
	Domain      string     `json:"domain,omitempty"`
	Password    *string    `json:"password,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty"`
}

// UpdateLinkRequest is the body of PATCH /api/links/:id.
// Omitted fields are left unchanged.
type UpdateLinkRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Password    *string    `json:"password,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// ===========================================
// Response DTOs
// ===========================================

// LinkResponse is a link as shown to its owner.
type LinkResponse struct {
	*Link
	ShortURL    string `json:"short_url"`
	HasPassword bool   `json:"has_password"`
}

// LinkListResponse is one page of an owner's links.
type LinkListResponse struct {
	Items      []LinkResponse `json:"items"`
	NextCursor *uuid.UUID     `json:"next_cursor,omitempty"`
}

// ===========================================
// Error Response
// ===========================================

// ErrorResponse provides consistent error format across all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable message
	Code    string `json:"code,omitempty"`    // Machine-readable error code
	Details string `json:"details,omitempty"` // Additional context
}

// Error codes carried in ErrorResponse.Code.
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeExpired       = "EXPIRED"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeInternalError = "INTERNAL_SERVER_ERROR"
)

// ===========================================
// Health Check Response
// ===========================================

// HealthResponse is returned by the /health endpoint.
type HealthResponse struct {
	Status   string            `json:"status"`   // "healthy" or "unhealthy"
	Version  string            `json:"version"`  // Application version
	Services map[string]string `json:"services"` // Dependency health (db, redis)
}
