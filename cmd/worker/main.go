// Package main is the entry point for the background worker. It watches
// destination license expiry dates and exports the counts as metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"transdoc/internal/infrastructure/metrics"
	"transdoc/internal/infrastructure/storage/postgres"
	"transdoc/internal/infrastructure/storage/postgres/carrier_repo"
	"transdoc/internal/worker"
	"transdoc/pkg/config"
	"transdoc/pkg/logger"
)

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
	log = log.WithComponent("worker")
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	if cfg.DB.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Infow("starting license expiry worker", "interval", cfg.Worker.Interval)

	poolCfg := postgres.DefaultPoolConfig(cfg.DB.URL)
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 0
	poolCfg.ApplicationName = "transdoc-worker"

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	m := metrics.New()
	m.RegisterPool(pool)

	carriers := carrier_repo.New(postgres.NewTxManager(pool))
	watcher := worker.NewExpiryWatcher(carriers, carriers, cfg.Worker.Interval).WithObserver(m)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		watcher.Run(logger.WithLogger(ctx, log))
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Infow("metrics listener starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics listener failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()
	wg.Wait()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = server.Shutdown(shutdownCtx)

	log.Info("worker stopped")
}
