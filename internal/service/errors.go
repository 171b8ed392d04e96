// ===========================================
// Package service - Business Logic Layer
// ===========================================
// Services hold the application's behaviour: resolving links, recording
// clicks, creating and managing links, and aggregating analytics.
// Handlers stay thin (HTTP in/out) and repositories stay thin (SQL in/out).
//
// Storage is reached through the interfaces in stores.go so the same
// services run on PostgreSQL or SQLite and can be tested with mocks.
// ===========================================

package service

import "errors"

// Service errors
var (
	ErrLinkNotFound    = errors.New("link not found")
	ErrLinkExpired     = errors.New("link has expired")
	ErrCodeTaken       = errors.New("custom short code already exists")
	ErrCodeGeneration  = errors.New("could not generate unique short code")
	ErrInvalidCode     = errors.New("invalid short code format")
	ErrInvalidURL      = errors.New("invalid URL format")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidInterval = errors.New("invalid analytics interval")
)
