// ===========================================
// Package repository - Data Access Layer
// ===========================================
// Repositories hide SQL behind methods named after what they do:
// Create, GetByID, ListByOwner. Input and output are domain models.
//
// This package holds the PostgreSQL implementations (pgx). The sqlite
// subpackage implements the same contracts on SQLite/libSQL and returns
// the same sentinel errors.
// ===========================================

package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common errors returned by repository methods.
// Using package-level errors allows callers to check with errors.Is().
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// isDuplicateKeyError checks if the error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
