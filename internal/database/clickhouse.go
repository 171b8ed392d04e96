package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/golang-migrate/migrate/v4"
	clickmigrations "github.com/golang-migrate/migrate/v4/database/clickhouse"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/config"
	"github.com/rdrlink/shortener/internal/models"
)

//go:embed migrations/clickhouse/*.sql
var clickhouseMigrationsFS embed.FS

const clickHouseInsert = `INSERT INTO clicks (
	id, link_id, clicked_at, ip, user_agent, referer, device, browser, os,
	country, region, city, utm_source, utm_medium, utm_campaign, utm_term, utm_content
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// ClickHouseSink exports click events to ClickHouse in batches.
// Push never blocks; events are dropped when the buffer is full.
type ClickHouseSink struct {
	db            *sql.DB
	events        chan models.ClickEvent
	batchSize     int
	flushInterval time.Duration
	logger        *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// ConnectClickHouse opens the connection, applies migrations and starts
// the batch worker.
func ConnectClickHouse(ctx context.Context, cfg config.ClickHouseConfig, logger *zap.Logger) (*ClickHouseSink, error) {
	db := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout: 30 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := migrateClickHouse(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 100
	}
	s := &ClickHouseSink{
		db:            db,
		events:        make(chan models.ClickEvent, batchSize*10),
		batchSize:     batchSize,
		flushInterval: cfg.FlushInterval,
		logger:        logger,
		done:          make(chan struct{}),
	}
	go s.worker()
	return s, nil
}

func migrateClickHouse(db *sql.DB) error {
	source, err := iofs.New(clickhouseMigrationsFS, "migrations/clickhouse")
	if err != nil {
		return fmt.Errorf("failed to open clickhouse migrations: %w", err)
	}

	driver, err := clickmigrations.WithInstance(db, &clickmigrations.Config{})
	if err != nil {
		return fmt.Errorf("failed to create clickhouse migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "clickhouse", driver)
	if err != nil {
		return fmt.Errorf("failed to create clickhouse migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply clickhouse migrations: %w", err)
	}
	return nil
}

// Push queues an event for export.
func (s *ClickHouseSink) Push(event models.ClickEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.events <- event:
	default:
		s.logger.Warn("clickhouse buffer full, dropping click", zap.String("link_id", event.LinkID.String()))
	}
}

// Close flushes buffered events and closes the connection.
func (s *ClickHouseSink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()

	<-s.done
	return s.db.Close()
}

// Health checks if ClickHouse is responsive.
func (s *ClickHouseSink) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSink) worker() {
	defer close(s.done)

	interval := s.flushInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	buffer := make([]models.ClickEvent, 0, s.batchSize)
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		if err := s.write(buffer); err != nil {
			s.logger.Warn("clickhouse batch write failed", zap.Int("events", len(buffer)), zap.Error(err))
		}
		buffer = buffer[:0]
	}

	for {
		select {
		case event, ok := <-s.events:
			if !ok {
				flush()
				return
			}
			buffer = append(buffer, event)
			if len(buffer) >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (s *ClickHouseSink) write(events []models.ClickEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, clickHouseInsert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			e.ID, e.LinkID, e.Timestamp.UTC(),
			deref(e.IP), deref(e.UserAgent), deref(e.Referer),
			deref(e.Device), deref(e.Browser), deref(e.OS),
			deref(e.Country), deref(e.Region), deref(e.City),
			deref(e.UTMSource), deref(e.UTMMedium), deref(e.UTMCampaign), deref(e.UTMTerm), deref(e.UTMContent),
		)
		if err != nil {
			s.logger.Error("failed to exec clickhouse insert", zap.String("event_id", e.ID.String()), zap.Error(err))
		}
	}
	return tx.Commit()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
