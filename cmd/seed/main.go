// Command seed loads a generated marketplace catalog into Postgres.
//
//	go run ./cmd/seed -products 10000 -stores 50 -reset
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/utafrali/marketplace/internal/config"
	"github.com/utafrali/marketplace/internal/seed"
	"github.com/utafrali/marketplace/migrations"
	"github.com/utafrali/marketplace/pkg/database"
	"github.com/utafrali/marketplace/pkg/logger"
)

func main() {
	defaults := seed.DefaultOptions()
	products := flag.Int("products", defaults.Products, "number of products to generate")
	stores := flag.Int("stores", defaults.Stores, "number of stores to generate")
	rngSeed := flag.Uint64("seed", defaults.Seed, "random seed; equal seeds produce equal catalogs")
	reset := flag.Bool("reset", false, "remove existing catalog rows first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("marketplace-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	start := time.Now()
	catalog := seed.Generate(seed.Options{
		Products: *products,
		Stores:   *stores,
		Seed:     *rngSeed,
		Now:      time.Now().UTC(),
	})
	log.Info("catalog generated",
		slog.Int("products", len(catalog.Products)),
		slog.Int("stores", len(catalog.Stores)),
		slog.Int("shipping_rates", len(catalog.Rates)),
	)

	if err := seed.NewWriter(pool, log).Write(ctx, catalog, *reset); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("seed complete", slog.Duration("elapsed", time.Since(start)))
}
