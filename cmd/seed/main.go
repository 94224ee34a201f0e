// Package main loads carriers and destination licenses from a YAML file into
// the PostgreSQL database used by the API server.
//
//	DATABASE_URL=postgres://... seed config/seed.yaml
package main

import (
	"context"
	"fmt"
	"os"

	"transdoc/internal/domain/carrier"
	"transdoc/internal/domain/country"
	"transdoc/internal/infrastructure/storage/postgres"
	"transdoc/internal/infrastructure/storage/postgres/carrier_repo"
	"transdoc/pkg/config"
	"transdoc/pkg/logger"
)

const defaultSeedFile = "config/seed.yaml"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	path := defaultSeedFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalw("failed to read seed file", "path", path, "error", err)
	}
	file, err := carrier.ParseSeed(data)
	if err != nil {
		log.Fatalw("invalid seed file", "path", path, "error", err)
	}

	if cfg.DB.URL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.URL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}

	txManager := postgres.NewTxManager(pool)
	repo := carrier_repo.New(txManager)

	var res carrier.SeedResult
	err = txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		res, err = file.Apply(ctx, repo, country.Default())
		return err
	})
	if err != nil {
		log.Fatalw("seeding failed, nothing was written", "error", err)
	}

	log.Infow("seed completed", "path", path, "carriers", res.Carriers, "licenses", res.Licenses)
}
