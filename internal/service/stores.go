package service

//go:generate mockgen -source=stores.go -destination=mocks/mock_stores.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rdrlink/shortener/internal/models"
)

// LinkStore persists links. Implementations return repository.ErrNotFound
// and repository.ErrAlreadyExists.
type LinkStore interface {
	Create(ctx context.Context, link *models.Link) error
	ExistsInDomain(ctx context.Context, shortCode, domain string) (bool, error)
	// FindByCode returns the match in the earliest of domains.
	FindByCode(ctx context.Context, shortCode string, domains []string) (*models.Link, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Link, error)
	ListByOwner(ctx context.Context, filter models.LinkFilter) ([]models.Link, error)
	Update(ctx context.Context, link *models.Link) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementClicks(ctx context.Context, id uuid.UUID) error
	ReconcileClicks(ctx context.Context) (int64, error)
}

// ClickStore persists click events.
type ClickStore interface {
	Insert(ctx context.Context, event *models.ClickEvent) error
	// ListSince returns events at or after since, ordered by timestamp ascending.
	ListSince(ctx context.Context, linkID uuid.UUID, since time.Time) ([]models.ClickEvent, error)
}

// APIKeyStore persists API keys.
type APIKeyStore interface {
	GetByKeyHash(ctx context.Context, keyHash string) (*models.APIKey, error)
	Create(ctx context.Context, key *models.APIKey) error
	UpdateLastUsed(ctx context.Context, id uuid.UUID) error
}

// LinkCache caches resolved links by (domain, short code). Get reports
// found=false on a miss; found with a nil link means the domain is known
// to hold no link with that code.
type LinkCache interface {
	Get(ctx context.Context, domain, shortCode string) (link *models.Link, found bool, err error)
	Set(ctx context.Context, link *models.Link) error
	SetAbsent(ctx context.Context, domain, shortCode string) error
	Delete(ctx context.Context, domain, shortCode string) error
}

// ClickSink receives a copy of every persisted click event.
type ClickSink interface {
	Push(event models.ClickEvent)
}
