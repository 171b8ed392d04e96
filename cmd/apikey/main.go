// Command apikey mints an API key and prints it once.
//
//	apikey -name "marketing site" -rate-limit 120
//
// It reads DATABASE_URL (and .env) like the server does.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/config"
	"github.com/rdrlink/shortener/internal/database"
	"github.com/rdrlink/shortener/internal/repository"
	"github.com/rdrlink/shortener/internal/repository/sqlite"
	"github.com/rdrlink/shortener/internal/service"
)

func main() {
	name := flag.String("name", "", "human-readable key name (required)")
	rateLimit := flag.Int("rate-limit", 0, "requests per minute, 0 uses RATE_LIMIT_RPM")
	flag.Parse()

	if *name == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if *rateLimit <= 0 {
		*rateLimit = cfg.RateLimit.RequestsPerMinute
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, *name, *rateLimit); err != nil {
		logger.Fatal("failed to create API key", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger, name string, rateLimit int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var keys service.APIKeyStore
	if cfg.Database.IsPostgres() {
		pg, err := database.NewPostgresDB(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.Migrate(); err != nil {
			return err
		}
		keys = repository.NewAPIKeyRepository(pg.Pool)
	} else {
		db, err := sqlite.Open(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		keys = sqlite.NewAPIKeyRepository(db)
	}

	raw, key, err := service.NewAPIKeyService(keys, nil, logger).GenerateKey(ctx, name, rateLimit)
	if err != nil {
		return err
	}

	logger.Info("API key created",
		zap.String("key_id", key.ID.String()),
		zap.String("name", key.Name),
		zap.Int("rate_limit", key.RateLimit),
	)
	// The raw key is not stored anywhere.
	fmt.Println(raw)
	return nil
}
