// Package main is the entry point for the millstock background worker.
// It rebuilds recent stock snapshots and prunes the audit log on a cron schedule.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"millstock/internal/app"
	"millstock/internal/config"
	"millstock/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Server.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting millstock worker")

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to initialize services", "error", err)
	}
	defer rt.Close()

	worker := NewWorker(rt.Services.StockProducts, rt.Services.Audit, cfg.Scheduler, log)
	if err := worker.Start(ctx); err != nil {
		log.Fatalw("failed to schedule jobs", "error", err)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()
	<-worker.Stop().Done()
	log.Info("worker stopped")
}
