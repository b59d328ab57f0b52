// Package main is the entry point for the millstock API server.
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

	"millstock/internal/app"
	"millstock/internal/config"
	"millstock/internal/domain/auth"
	v1 "millstock/internal/infrastructure/http/v1"
	"millstock/internal/infrastructure/http/v1/handlers"
	"millstock/internal/infrastructure/storage/postgres"
	"millstock/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

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

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting millstock server", "storage", cfg.Database.Driver, "version", version)

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to initialize services", "error", err)
	}
	defer rt.Close()

	if rt.Pool != nil {
		postgres.LogPoolStats(ctx, "main", rt.Pool)
	}

	// --- JWT Service ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.Auth.JWTSecret, cfg.Auth.Issuer))
	if cfg.Auth.Disabled {
		log.Warn("authentication disabled, every request runs as the development admin")
	}

	checks := map[string]handlers.Pinger{}
	if rt.TxManager != nil {
		checks["database"] = rt.TxManager
	}
	if rt.Redis != nil {
		checks["redis"] = rt.Redis
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Services:     rt.Services,
		Logger:       log,
		JWTValidator: jwtService,
		AuthDisabled: cfg.Auth.Disabled,
		Pool:         rt.Pool,
		HealthChecks: checks,
		Storage:      cfg.Database.Driver,
		Version:      version,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Server.Port, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
