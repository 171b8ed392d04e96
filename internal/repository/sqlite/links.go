package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/repository"
)

const linkColumns = `id, short_code, domain, url, title, description, password_hash,
	expires_at, clicks, owner_id, project_id, created_at, updated_at`

// LinkRepository stores links.
type LinkRepository struct {
	db *sqlx.DB
}

// NewLinkRepository creates a new link repository.
func NewLinkRepository(db *DB) *LinkRepository {
	return &LinkRepository{db: db.db}
}

// Create inserts a new link.
// Returns repository.ErrAlreadyExists if (short_code, domain) is taken.
func (r *LinkRepository) Create(ctx context.Context, link *models.Link) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	link.UpdatedAt = link.CreatedAt

	query := `
		INSERT INTO links (` + linkColumns + `)
		VALUES (:id, :short_code, :domain, :url, :title, :description, :password_hash,
			:expires_at, :clicks, :owner_id, :project_id, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// ExistsInDomain checks if a short code is already taken within domain.
func (r *LinkRepository) ExistsInDomain(ctx context.Context, shortCode, domain string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists,
		`SELECT 1 FROM links WHERE short_code = ? AND domain = ? LIMIT 1`, shortCode, domain)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return true, nil
}

// FindByCode returns the link with shortCode in the first of domains that
// has one.
func (r *LinkRepository) FindByCode(ctx context.Context, shortCode string, domains []string) (*models.Link, error) {
	if len(domains) == 0 {
		return nil, repository.ErrNotFound
	}

	query, args, err := sqlx.In(`
		SELECT `+linkColumns+`
		FROM links
		WHERE short_code = ? AND domain IN (?)
		ORDER BY CASE WHEN domain = ? THEN 0 ELSE 1 END
		LIMIT 1
	`, shortCode, domains, domains[0])
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup: %w", err)
	}

	var link models.Link
	err = r.db.GetContext(ctx, &link, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find link: %w", err)
	}
	return &link, nil
}

// GetByID retrieves a link by its ID.
func (r *LinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Link, error) {
	var link models.Link
	err := r.db.GetContext(ctx, &link, `SELECT `+linkColumns+` FROM links WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return &link, nil
}

// ListByOwner returns up to filter.Limit links, newest first.
func (r *LinkRepository) ListByOwner(ctx context.Context, filter models.LinkFilter) ([]models.Link, error) {
	conds := []string{"owner_id = ?"}
	args := []any{filter.OwnerID}

	if filter.ProjectID != nil {
		conds = append(conds, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conds = append(conds, "(title LIKE ? OR url LIKE ? OR short_code LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Cursor != nil {
		conds = append(conds, "(created_at, id) <= (SELECT created_at, id FROM links WHERE id = ?)")
		args = append(args, *filter.Cursor)
	}
	args = append(args, filter.Limit)

	query := `SELECT ` + linkColumns + ` FROM links WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY created_at DESC, id DESC LIMIT ?`

	links := []models.Link{}
	if err := r.db.SelectContext(ctx, &links, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// Update writes the mutable fields of link.
func (r *LinkRepository) Update(ctx context.Context, link *models.Link) error {
	link.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE links
		SET title = :title, description = :description, password_hash = :password_hash,
			expires_at = :expires_at, updated_at = :updated_at
		WHERE id = :id
	`, link)
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}
	return requireRow(result)
}

// Delete removes a link; its click events go with it.
func (r *LinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return requireRow(result)
}

// IncrementClicks atomically increments the click counter.
func (r *LinkRepository) IncrementClicks(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE links SET clicks = clicks + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	return requireRow(result)
}

// ReconcileClicks resets every drifted counter to its event count.
func (r *LinkRepository) ReconcileClicks(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE links
		SET clicks = (SELECT COUNT(*) FROM click_events e WHERE e.link_id = links.id)
		WHERE clicks <> (SELECT COUNT(*) FROM click_events e WHERE e.link_id = links.id)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile clicks: %w", err)
	}
	return result.RowsAffected()
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
