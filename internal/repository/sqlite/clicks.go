package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rdrlink/shortener/internal/models"
)

const clickColumns = `id, link_id, clicked_at, ip, user_agent, referer, device, browser, os,
	country, region, city, utm_source, utm_medium, utm_campaign, utm_term, utm_content`

// ClickRepository stores click events.
type ClickRepository struct {
	db *sqlx.DB
}

// NewClickRepository creates a new click repository.
func NewClickRepository(db *DB) *ClickRepository {
	return &ClickRepository{db: db.db}
}

// Insert appends one click event.
func (r *ClickRepository) Insert(ctx context.Context, event *models.ClickEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Timestamp = event.Timestamp.UTC()

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO click_events (`+clickColumns+`)
		VALUES (:id, :link_id, :clicked_at, :ip, :user_agent, :referer, :device, :browser, :os,
			:country, :region, :city, :utm_source, :utm_medium, :utm_campaign, :utm_term, :utm_content)
	`, event)
	if err != nil {
		return fmt.Errorf("failed to insert click event: %w", err)
	}
	return nil
}

// ListSince returns the link's events at or after since, oldest first.
func (r *ClickRepository) ListSince(ctx context.Context, linkID uuid.UUID, since time.Time) ([]models.ClickEvent, error) {
	events := []models.ClickEvent{}
	err := r.db.SelectContext(ctx, &events, `
		SELECT `+clickColumns+`
		FROM click_events
		WHERE link_id = ? AND clicked_at >= ?
		ORDER BY clicked_at ASC, id ASC
	`, linkID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list click events: %w", err)
	}
	return events, nil
}
