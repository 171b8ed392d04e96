package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rdrlink/shortener/internal/models"
)

const linkColumns = `id, short_code, domain, url, title, description, password_hash,
	expires_at, clicks, owner_id, project_id, created_at, updated_at`

// LinkRepository handles all link database operations.
type LinkRepository struct {
	db *pgxpool.Pool
}

// NewLinkRepository creates a new link repository.
func NewLinkRepository(db *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create inserts a new link.
// Returns ErrAlreadyExists if (short_code, domain) is taken.
//
// SECURITY NOTE - SQL Injection Prevention:
// We use parameterized queries ($1, $2, etc.) instead of
// string concatenation. The driver handles escaping.
func (r *LinkRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	now := time.Now().UTC()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}
	link.UpdatedAt = link.CreatedAt

	_, err := r.db.Exec(ctx, query,
		link.ID,
		link.ShortCode,
		link.Domain,
		link.URL,
		link.Title,
		link.Description,
		link.PasswordHash,
		link.ExpiresAt,
		link.Clicks,
		link.OwnerID,
		link.ProjectID,
		link.CreatedAt,
		link.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// ExistsInDomain checks if a short code is already taken within domain.
func (r *LinkRepository) ExistsInDomain(ctx context.Context, shortCode, domain string) (bool, error) {
	query := `SELECT 1 FROM links WHERE short_code = $1 AND domain = $2 LIMIT 1`

	var exists int
	err := r.db.QueryRow(ctx, query, shortCode, domain).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return true, nil
}

// FindByCode returns the link with shortCode in the first of domains that
// has one. Returns ErrNotFound if none do.
func (r *LinkRepository) FindByCode(ctx context.Context, shortCode string, domains []string) (*models.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE short_code = $1 AND domain = ANY($2)
		ORDER BY array_position($2, domain::text)
		LIMIT 1
	`

	link, err := scanLink(r.db.QueryRow(ctx, query, shortCode, domains))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find link: %w", err)
	}
	return link, nil
}

// GetByID retrieves a link by its ID.
func (r *LinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`

	link, err := scanLink(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return link, nil
}

// ListByOwner returns up to filter.Limit links, newest first.
func (r *LinkRepository) ListByOwner(ctx context.Context, filter models.LinkFilter) ([]models.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE owner_id = $1
		  AND ($2::uuid IS NULL OR project_id = $2)
		  AND ($3 = '' OR title ILIKE '%' || $3 || '%' OR url ILIKE '%' || $3 || '%' OR short_code ILIKE '%' || $3 || '%')
		  AND ($4::uuid IS NULL OR (created_at, id) <= (SELECT created_at, id FROM links WHERE id = $4))
		ORDER BY created_at DESC, id DESC
		LIMIT $5
	`

	rows, err := r.db.Query(ctx, query, filter.OwnerID, filter.ProjectID, filter.Search, filter.Cursor, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := make([]models.Link, 0, filter.Limit)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, *link)
	}
	return links, rows.Err()
}

// Update writes the mutable fields of link.
func (r *LinkRepository) Update(ctx context.Context, link *models.Link) error {
	query := `
		UPDATE links
		SET title = $2, description = $3, password_hash = $4, expires_at = $5, updated_at = $6
		WHERE id = $1
	`

	link.UpdatedAt = time.Now().UTC()
	result, err := r.db.Exec(ctx, query,
		link.ID, link.Title, link.Description, link.PasswordHash, link.ExpiresAt, link.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a link; its click events go with it.
func (r *LinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementClicks atomically increments the click counter.
// clicks = clicks + 1 is atomic at database level.
func (r *LinkRepository) IncrementClicks(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE links SET clicks = clicks + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReconcileClicks resets every drifted counter to its event count and
// returns how many links changed.
func (r *LinkRepository) ReconcileClicks(ctx context.Context) (int64, error) {
	query := `
		UPDATE links AS l
		SET clicks = c.total
		FROM (
			SELECT links.id, COUNT(e.id) AS total
			FROM links
			LEFT JOIN click_events e ON e.link_id = links.id
			GROUP BY links.id
		) AS c
		WHERE l.id = c.id AND l.clicks <> c.total
	`

	result, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile clicks: %w", err)
	}
	return result.RowsAffected(), nil
}

func scanLink(row pgx.Row) (*models.Link, error) {
	link := &models.Link{}
	err := row.Scan(
		&link.ID,
		&link.ShortCode,
		&link.Domain,
		&link.URL,
		&link.Title,
		&link.Description,
		&link.PasswordHash,
		&link.ExpiresAt,
		&link.Clicks,
		&link.OwnerID,
		&link.ProjectID,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return link, nil
}
