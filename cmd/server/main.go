// ===========================================
// Short Link Service - Main Entry Point
// ===========================================
// RESPONSIBILITY:
// 1. Load configuration
// 2. Initialize dependencies (DB, Redis, GeoIP, ClickHouse)
// 3. Set up HTTP server with middleware
// 4. Start background workers and jobs
// 5. Handle graceful shutdown
//
// Required dependencies (the relational store) fail startup. Optional
// ones (Redis, GeoIP, ClickHouse) are logged and skipped.
// ===========================================

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rdrlink/shortener/internal/config"
	"github.com/rdrlink/shortener/internal/database"
	"github.com/rdrlink/shortener/internal/geo"
	"github.com/rdrlink/shortener/internal/handler"
	"github.com/rdrlink/shortener/internal/jobs"
	"github.com/rdrlink/shortener/internal/middleware"
	"github.com/rdrlink/shortener/internal/queue"
	"github.com/rdrlink/shortener/internal/repository"
	"github.com/rdrlink/shortener/internal/repository/sqlite"
	"github.com/rdrlink/shortener/internal/service"
)

// Version is set at build time using ldflags.
// go build -ldflags "-X main.Version=1.0.0"
var Version = "dev"

// linkStore is what both relational backends provide for links.
type linkStore interface {
	service.LinkStore
	jobs.CounterStore
}

// stores bundles one relational backend.
type stores struct {
	links  linkStore
	clicks service.ClickStore
	keys   service.APIKeyStore
	health handler.Checker
	close  func()
}

func main() {
	cfg := config.Load()
	if Version != "dev" {
		cfg.App.Version = Version
	}

	logger := initLogger(cfg.App)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting short link service",
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("primary_domain", cfg.Shortener.PrimaryDomain),
	)

	// If we can't connect within 30 seconds, something is wrong.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// ===========================================
	// Relational store (required)
	// ===========================================
	st, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer st.close()

	checks := map[string]handler.Checker{"database": st.health}

	// ===========================================
	// Redis (optional): link cache, shared rate limits, job lock
	// ===========================================
	var (
		linkCache service.LinkCache
		counter   middleware.WindowCounter
		locker    *redislock.Client
	)
	if cfg.Redis.URL != "" {
		rdb, err := database.NewRedisDB(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			linkCache = database.NewLinkCache(rdb, cfg.Redis.LocalCacheSize, cfg.Redis.CacheTTL)
			counter = rdb
			locker = redislock.New(rdb.Client)
			checks["redis"] = rdb
			logger.Info("redis connected")
		}
	}
	if counter == nil {
		mem := middleware.NewMemoryCounter(cfg.RateLimit.CleanupInterval)
		defer mem.Close()
		counter = mem
	}

	// ===========================================
	// Click enrichment and export (optional)
	// ===========================================
	var locator geo.Locator = geo.Nop{}
	if cfg.GeoIP.DBPath != "" {
		reader, err := geo.Open(cfg.GeoIP.DBPath)
		if err != nil {
			logger.Warn("geoip database unavailable", zap.String("path", cfg.GeoIP.DBPath), zap.Error(err))
		} else {
			defer func() { _ = reader.Close() }()
			locator = reader
		}
	}

	var sinks []service.ClickSink
	var clickhouse *database.ClickHouseSink
	if cfg.ClickHouse.Addr != "" {
		clickhouse, err = database.ConnectClickHouse(ctx, cfg.ClickHouse, logger)
		if err != nil {
			logger.Warn("clickhouse export disabled", zap.Error(err))
		} else {
			sinks = append(sinks, clickhouse)
			checks["clickhouse"] = clickhouse
		}
	}

	// ===========================================
	// Services
	// ===========================================
	executor := queue.New(queue.Config{
		Workers:   cfg.Clicks.Workers,
		QueueSize: cfg.Clicks.QueueSize,
		Timeout:   cfg.Clicks.WriteTimeout,
	}, logger)

	resolver := service.NewResolver(st.links, linkCache, cfg.Shortener.PrimaryDomain, logger)
	recorder := service.NewClickRecorder(st.links, st.clicks, locator, logger, sinks...)
	redirects := service.NewRedirectService(resolver, recorder, executor,
		cfg.Shortener.PrimaryDomain, cfg.Shortener.UTMPrefixMatch, logger)
	links := service.NewLinkService(st.links, resolver, cfg.Shortener, logger)
	analytics := service.NewAnalyticsService(st.links, st.clicks)
	apiKeys := service.NewAPIKeyService(st.keys, executor, logger)

	// ===========================================
	// Background jobs
	// ===========================================
	scheduler := cron.New()
	if cfg.Jobs.ReconcileSchedule != "" {
		reconciler := jobs.NewReconciler(st.links, locker, cfg.Jobs.ReconcileLockTTL, logger)
		if _, err := reconciler.Schedule(scheduler, cfg.Jobs.ReconcileSchedule); err != nil {
			return err
		}
	}
	scheduler.Start()

	// ===========================================
	// HTTP server
	// ===========================================
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rateLimiter := middleware.NewRateLimiter(counter, cfg.RateLimit.RequestsPerMinute, logger)
	var redirectLimiter *middleware.RateLimiter
	if cfg.RateLimit.RedirectRequestsPerMinute > 0 {
		redirectLimiter = middleware.NewRateLimiter(counter, cfg.RateLimit.RedirectRequestsPerMinute, logger).Scoped("redirect")
	}

	router := handler.NewRouter(handler.RouterConfig{
		Logger:          logger,
		Redirects:       handler.NewRedirectHandler(redirects),
		Links:           handler.NewLinkHandler(links, logger),
		Clicks:          handler.NewClickHandler(recorder),
		Analytics:       handler.NewAnalyticsHandler(analytics, logger),
		Health:          handler.NewHealthHandler(checks, cfg.App.Version),
		Auth:            middleware.NewAPIKeyAuth(apiKeys, logger),
		RateLimiter:     rateLimiter,
		RedirectLimiter: redirectLimiter,
		CORS:            middleware.DefaultCORSConfig(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ===========================================
	// Wait for shutdown signal
	// ===========================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Order: stop new requests, drain queued clicks, stop jobs, flush export.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := executor.Shutdown(shutdownCtx); err != nil {
		logger.Warn("click queue not drained", zap.Error(err))
	}
	<-scheduler.Stop().Done()
	if clickhouse != nil {
		if err := clickhouse.Close(); err != nil {
			logger.Warn("clickhouse flush failed", zap.Error(err))
		}
	}

	logger.Info("server stopped")
	return runErr
}

// openStores selects PostgreSQL for postgres:// URLs and SQLite/libSQL
// for everything else.
func openStores(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*stores, error) {
	if cfg.IsPostgres() {
		pg, err := database.NewPostgresDB(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := pg.Migrate(); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		logger.Info("postgres connected")
		return &stores{
			links:  repository.NewLinkRepository(pg.Pool),
			clicks: repository.NewClickRepository(pg.Pool),
			keys:   repository.NewAPIKeyRepository(pg.Pool),
			health: pg,
			close:  pg.Close,
		}, nil
	}

	db, err := sqlite.Open(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	logger.Info("sqlite opened", zap.String("driver", sqlite.DriverName(cfg.URL)))
	return &stores{
		links:  sqlite.NewLinkRepository(db),
		clicks: sqlite.NewClickRepository(db),
		keys:   sqlite.NewAPIKeyRepository(db),
		health: db,
		close:  func() { _ = db.Close() },
	}, nil
}

// initLogger builds a JSON logger in production and a console logger
// otherwise. LOG_LEVEL overrides the level.
func initLogger(cfg config.AppConfig) *zap.Logger {
	var loggerConfig zap.Config
	if cfg.IsProduction() {
		loggerConfig = zap.NewProductionConfig()
	} else {
		loggerConfig = zap.NewDevelopmentConfig()
		loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		loggerConfig.Level = level
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}
