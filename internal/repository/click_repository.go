package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rdrlink/shortener/internal/models"
)

const clickColumns = `id, link_id, clicked_at, ip, user_agent, referer, device, browser, os,
	country, region, city, utm_source, utm_medium, utm_campaign, utm_term, utm_content`

// ClickRepository stores click events.
type ClickRepository struct {
	db *pgxpool.Pool
}

// NewClickRepository creates a new click repository.
func NewClickRepository(db *pgxpool.Pool) *ClickRepository {
	return &ClickRepository{db: db}
}

// Insert appends one click event.
func (r *ClickRepository) Insert(ctx context.Context, event *models.ClickEvent) error {
	query := `
		INSERT INTO click_events (` + clickColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, query,
		event.ID, event.LinkID, event.Timestamp,
		event.IP, event.UserAgent, event.Referer,
		event.Device, event.Browser, event.OS,
		event.Country, event.Region, event.City,
		event.UTMSource, event.UTMMedium, event.UTMCampaign, event.UTMTerm, event.UTMContent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert click event: %w", err)
	}
	return nil
}

// ListSince returns the link's events at or after since, oldest first.
func (r *ClickRepository) ListSince(ctx context.Context, linkID uuid.UUID, since time.Time) ([]models.ClickEvent, error) {
	query := `
		SELECT ` + clickColumns + `
		FROM click_events
		WHERE link_id = $1 AND clicked_at >= $2
		ORDER BY clicked_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, linkID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list click events: %w", err)
	}
	defer rows.Close()

	events := []models.ClickEvent{}
	for rows.Next() {
		event, err := scanClick(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan click event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanClick(row pgx.Row) (models.ClickEvent, error) {
	var e models.ClickEvent
	err := row.Scan(
		&e.ID, &e.LinkID, &e.Timestamp,
		&e.IP, &e.UserAgent, &e.Referer,
		&e.Device, &e.Browser, &e.OS,
		&e.Country, &e.Region, &e.City,
		&e.UTMSource, &e.UTMMedium, &e.UTMCampaign, &e.UTMTerm, &e.UTMContent,
	)
	return e, err
}
