package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/jobboard/api"
	"github.com/garnizeh/jobboard/internal/app"
	"github.com/garnizeh/jobboard/internal/config"
	"github.com/joho/godotenv"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting jobboard server", slog.String("version", version), slog.String("buildTime", buildTime))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open application: %v", err)
	}

	pool := a.WorkerPool()
	pool.Start(ctx)

	schedDone := make(chan struct{})
	if cfg.Alerts.Enabled {
		sched := a.Scheduler(pool)
		go func() {
			defer close(schedDone)
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("alerts scheduler stopped", "err", err)
			}
		}()
	} else {
		close(schedDone)
	}

	handler := api.SetupRoutes(cfg, version, buildTime, api.Services{
		Users:    a.Repo,
		Profiles: a.Repo,
		Catalog:  a.Catalog,
		Tracker:  a.Tracker,
		DB:       a.DB,
	})

	// WriteTimeout stays unset: /v1/interests/stream holds responses open
	server := &http.Server{
		Addr:        cfg.Addr,
		Handler:     handler,
		ReadTimeout: cfg.APITimeout,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}
	<-schedDone
	pool.Stop()

	if err := a.Close(); err != nil {
		logger.Error("close application", "err", err)
	}

	logger.Info("server exited")
}
