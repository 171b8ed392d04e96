package sqlite

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/repository"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createOwner(t *testing.T, db *DB) uuid.UUID {
	t.Helper()
	key := &models.APIKey{KeyHash: uuid.NewString(), Name: "test", RateLimit: 100, IsActive: true}
	require.NoError(t, NewAPIKeyRepository(db).Create(context.Background(), key))
	return key.ID
}

func strPtr(s string) *string { return &s }

func TestDriverName(t *testing.T) {
	assert.Equal(t, "libsql", DriverName("libsql://db.turso.io?authToken=x"))
	assert.Equal(t, "libsql", DriverName("wss://db.turso.io"))
	assert.Equal(t, "sqlite", DriverName("file:links.db"))
}

func TestLinkCreateAndFind(t *testing.T) {
	ctx := context.Background()
	links := NewLinkRepository(openTestDB(t))

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	link := &models.Link{ShortCode: "abc123", Domain: "rdr.nu", URL: "https://a.example/x", Title: strPtr("A"), ExpiresAt: &expires}
	require.NoError(t, links.Create(ctx, link))
	assert.NotEqual(t, uuid.Nil, link.ID)

	found, err := links.FindByCode(ctx, "abc123", []string{"rdr.nu"})
	require.NoError(t, err)
	assert.Equal(t, link.ID, found.ID)
	assert.Equal(t, "https://a.example/x", found.URL)
	require.NotNil(t, found.ExpiresAt)
	assert.True(t, expires.Equal(*found.ExpiresAt))
	assert.Nil(t, found.OwnerID)

	_, err = links.FindByCode(ctx, "missing", []string{"rdr.nu"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	exists, err := links.ExistsInDomain(ctx, "abc123", "rdr.nu")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = links.ExistsInDomain(ctx, "abc123", "go.example")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLinkUniquePerDomain(t *testing.T) {
	ctx := context.Background()
	links := NewLinkRepository(openTestDB(t))

	require.NoError(t, links.Create(ctx, &models.Link{ShortCode: "promo", Domain: "rdr.nu", URL: "https://a.example"}))
	require.NoError(t, links.Create(ctx, &models.Link{ShortCode: "promo", Domain: "go.example", URL: "https://b.example"}))

	err := links.Create(ctx, &models.Link{ShortCode: "promo", Domain: "rdr.nu", URL: "https://c.example"})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestFindByCodePrefersFirstDomain(t *testing.T) {
	ctx := context.Background()
	links := NewLinkRepository(openTestDB(t))

	require.NoError(t, links.Create(ctx, &models.Link{ShortCode: "x", Domain: "rdr.nu", URL: "https://primary.example"}))
	require.NoError(t, links.Create(ctx, &models.Link{ShortCode: "x", Domain: "go.example", URL: "https://custom.example"}))
	require.NoError(t, links.Create(ctx, &models.Link{ShortCode: "y", Domain: "rdr.nu", URL: "https://fallback.example"}))

	found, err := links.FindByCode(ctx, "x", []string{"go.example", "rdr.nu"})
	require.NoError(t, err)
	assert.Equal(t, "https://custom.example", found.URL)

	found, err = links.FindByCode(ctx, "x", []string{"rdr.nu", "go.example"})
	require.NoError(t, err)
	assert.Equal(t, "https://primary.example", found.URL)

	found, err = links.FindByCode(ctx, "y", []string{"go.example", "rdr.nu"})
	require.NoError(t, err)
	assert.Equal(t, "https://fallback.example", found.URL)
}

func TestUpdateAndDeleteCascade(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	links := NewLinkRepository(db)
	clicks := NewClickRepository(db)

	link := &models.Link{ShortCode: "del", Domain: "rdr.nu", URL: "https://a.example"}
	require.NoError(t, links.Create(ctx, link))
	require.NoError(t, clicks.Insert(ctx, &models.ClickEvent{LinkID: link.ID}))

	link.Title = strPtr("renamed")
	require.NoError(t, links.Update(ctx, link))
	got, err := links.GetByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", *got.Title)

	require.NoError(t, links.Delete(ctx, link.ID))
	_, err = links.GetByID(ctx, link.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, links.Delete(ctx, link.ID), repository.ErrNotFound)

	events, err := clicks.ListSince(ctx, link.ID, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestClickEventsWindowAndOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	links := NewLinkRepository(db)
	clicks := NewClickRepository(db)

	link := &models.Link{ShortCode: "c", Domain: "rdr.nu", URL: "https://a.example"}
	require.NoError(t, links.Create(ctx, link))

	now := time.Now().UTC()
	for i, offset := range []time.Duration{-48 * time.Hour, -2 * time.Hour, -time.Hour} {
		require.NoError(t, clicks.Insert(ctx, &models.ClickEvent{
			LinkID:    link.ID,
			Timestamp: now.Add(offset),
			Country:   strPtr(fmt.Sprintf("C%d", i)),
		}))
	}

	events, err := clicks.ListSince(ctx, link.ID, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "C1", *events[0].Country)
	assert.Equal(t, "C2", *events[1].Country)
	assert.Nil(t, events[0].IP)
}

func TestIncrementAndReconcile(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	links := NewLinkRepository(db)
	clicks := NewClickRepository(db)

	link := &models.Link{ShortCode: "r", Domain: "rdr.nu", URL: "https://a.example"}
	require.NoError(t, links.Create(ctx, link))
	assert.ErrorIs(t, links.IncrementClicks(ctx, uuid.New()), repository.ErrNotFound)

	// Two events, but only one counter increment landed.
	require.NoError(t, clicks.Insert(ctx, &models.ClickEvent{LinkID: link.ID}))
	require.NoError(t, clicks.Insert(ctx, &models.ClickEvent{LinkID: link.ID}))
	require.NoError(t, links.IncrementClicks(ctx, link.ID))

	n, err := links.ReconcileClicks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := links.GetByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Clicks)

	n, err = links.ReconcileClicks(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListByOwnerPaging(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	links := NewLinkRepository(db)
	owner := createOwner(t, db)
	other := createOwner(t, db)
	project := uuid.New()

	base := time.Now().UTC().Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		link := &models.Link{
			ShortCode: fmt.Sprintf("code%d", i),
			Domain:    "rdr.nu",
			URL:       fmt.Sprintf("https://site%d.example", i),
			OwnerID:   &owner,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if i%2 == 0 {
			link.ProjectID = &project
		}
		require.NoError(t, links.Create(ctx, link))
		ids = append(ids, link.ID)
	}
	require.NoError(t, links.Create(ctx, &models.Link{ShortCode: "theirs", Domain: "rdr.nu", URL: "https://x.example", OwnerID: &other}))

	page, err := links.ListByOwner(ctx, models.LinkFilter{OwnerID: owner, Limit: 3})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, ids[4], page[0].ID)
	assert.Equal(t, ids[2], page[2].ID)

	cursor := ids[2]
	page, err = links.ListByOwner(ctx, models.LinkFilter{OwnerID: owner, Cursor: &cursor, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[0], page[2].ID)

	page, err = links.ListByOwner(ctx, models.LinkFilter{OwnerID: owner, ProjectID: &project, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page, 3)

	page, err = links.ListByOwner(ctx, models.LinkFilter{OwnerID: owner, Search: "SITE3", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[3], page[0].ID)
}

func TestAPIKeys(t *testing.T) {
	ctx := context.Background()
	keys := NewAPIKeyRepository(openTestDB(t))

	key := &models.APIKey{KeyHash: "hash-1", Name: "ci", RateLimit: 50, IsActive: true}
	require.NoError(t, keys.Create(ctx, key))
	assert.ErrorIs(t, keys.Create(ctx, &models.APIKey{KeyHash: "hash-1", Name: "dup", IsActive: true}), repository.ErrAlreadyExists)

	got, err := keys.GetByKeyHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, key.ID, got.ID)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.LastUsedAt)

	require.NoError(t, keys.UpdateLastUsed(ctx, key.ID))
	got, err = keys.GetByKeyHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.NotNil(t, got.LastUsedAt)

	require.NoError(t, keys.Create(ctx, &models.APIKey{KeyHash: "hash-2", Name: "off", IsActive: false}))
	_, err = keys.GetByKeyHash(ctx, "hash-2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
