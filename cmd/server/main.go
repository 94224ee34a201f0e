// Package main is the entry point for the document issuing API server.
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

	"transdoc/internal/domain/country"
	"transdoc/internal/domain/documents/crt"
	"transdoc/internal/domain/documents/manifest"
	"transdoc/internal/domain/license"
	"transdoc/internal/domain/numbering"
	v1 "transdoc/internal/infrastructure/http/v1"
	"transdoc/internal/infrastructure/metrics"
	"transdoc/internal/infrastructure/numerator"
	"transdoc/internal/infrastructure/storage/postgres"
	"transdoc/internal/infrastructure/storage/postgres/carrier_repo"
	"transdoc/internal/infrastructure/storage/postgres/document_repo"
	"transdoc/pkg/config"
	"transdoc/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	if cfg.DB.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	log.Infow("starting transdoc server", "version", version, "home_market", cfg.Numbering.HomeMarket)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.URL)
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns
	poolCfg.MaxConnLifetime = cfg.DB.MaxConnLifetime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if cfg.DB.MigrateOnStart {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatalw("failed to apply schema", "error", err)
		}
	}

	txManager := postgres.NewTxManager(pool)
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit trail", "error", err)
	}

	// --- Numbering engine ---
	countries := country.Default()
	carriers := carrier_repo.New(txManager)
	resolver := license.NewResolver(carriers, countries, cfg.Numbering.HomeMarket)

	// The sequencer runs on the pool: numbers are committed independently of
	// the issuing transaction.
	sequencer := numerator.NewPostgres(pool)

	m := metrics.New()
	m.RegisterPool(pool)

	numbers := numbering.NewService(carriers, resolver, sequencer, numbering.Options{
		MaxBatch:   cfg.Numbering.MaxBatch,
		MaxRetries: cfg.Numbering.MaxRetries,
	}).WithObserver(m)

	// --- Issuers ---
	crts := crt.NewService(document_repo.NewCRTRepo(txManager), carriers, numbers, txManager, auditService)
	manifests := manifest.NewService(document_repo.NewManifestRepo(txManager), crts, numbers, txManager, auditService)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		DB:        pool,
		Version:   version,
		Logger:    log,
		Metrics:   m,
		Countries: countries,
		Carriers:  carriers,
		Licenses:  carriers,
		Numbers:   numbers,
		CRTs:      crts,
		Manifests: manifests,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}
	log.Info("server stopped")
}
