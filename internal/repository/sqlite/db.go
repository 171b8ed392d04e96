// Package sqlite implements the link, click and API key repositories on
// SQLite (modernc.org/sqlite) or libSQL/Turso, chosen by the DSN.
package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS api_keys (
	id           TEXT PRIMARY KEY,
	key_hash     TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	rate_limit   INTEGER NOT NULL DEFAULT 100,
	is_active    BOOLEAN NOT NULL DEFAULT 1,
	created_at   DATETIME NOT NULL,
	last_used_at DATETIME
);

CREATE TABLE IF NOT EXISTS links (
	id            TEXT PRIMARY KEY,
	short_code    TEXT NOT NULL,
	domain        TEXT NOT NULL,
	url           TEXT NOT NULL,
	title         TEXT,
	description   TEXT,
	password_hash TEXT,
	expires_at    DATETIME,
	clicks        INTEGER NOT NULL DEFAULT 0,
	owner_id      TEXT REFERENCES api_keys (id) ON DELETE SET NULL,
	project_id    TEXT,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL,
	UNIQUE (short_code, domain)
);

CREATE INDEX IF NOT EXISTS idx_links_owner_created ON links (owner_id, created_at, id);

CREATE TABLE IF NOT EXISTS click_events (
	id           TEXT PRIMARY KEY,
	link_id      TEXT NOT NULL REFERENCES links (id) ON DELETE CASCADE,
	clicked_at   DATETIME NOT NULL,
	ip           TEXT,
	user_agent   TEXT,
	referer      TEXT,
	device       TEXT,
	browser      TEXT,
	os           TEXT,
	country      TEXT,
	region       TEXT,
	city         TEXT,
	utm_source   TEXT,
	utm_medium   TEXT,
	utm_campaign TEXT,
	utm_term     TEXT,
	utm_content  TEXT
);

CREATE INDEX IF NOT EXISTS idx_click_events_link_time ON click_events (link_id, clicked_at);
`

// DB is a migrated SQLite or libSQL database.
type DB struct {
	db *sqlx.DB
}

// DriverName picks the database/sql driver for dsn.
func DriverName(dsn string) string {
	if strings.Contains(dsn, "libsql://") || strings.Contains(dsn, "wss://") {
		return "libsql"
	}
	return "sqlite"
}

// Open connects to dsn and creates the schema if needed.
func Open(ctx context.Context, dsn string) (*DB, error) {
	db, err := sqlx.Open(DriverName(dsn), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One connection keeps PRAGMAs and shared in-memory databases alive
	// and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Health checks if the database is responsive.
func (d *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
