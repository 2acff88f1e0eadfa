// Package app wires the storage, services and background workers shared by
// the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/alerts"
	"github.com/garnizeh/jobboard/internal/catalog"
	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/internal/docstore"
	"github.com/garnizeh/jobboard/internal/jobs"
	"github.com/garnizeh/jobboard/internal/notifier"
	"github.com/garnizeh/jobboard/internal/repository/sqlite"
	"github.com/garnizeh/jobboard/internal/schema"
	"github.com/garnizeh/jobboard/internal/tracker"
)

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *db.DB
	Repo     *sqlite.SQLiteRepo
	Schemas  *schema.Loader
	Docs     *docstore.Store
	Catalog  *catalog.Catalog
	Tracker  *tracker.Tracker
	Queue    *jobs.Repository
	Notifier notifier.Notifier
}

// Open connects to the database, applies migrations when configured and
// builds the services on top of it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, conn, dbfs.Migrations, dbfs.SeedFiles); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	repo := sqlite.New(conn, logger)
	loader, err := schema.NewLoader(ctx, repo)
	if err != nil {
		conn.Close()
		return nil, err
	}

	docs := docstore.New(conn, logger)
	cat := catalog.New(docs, logger, catalog.WithValidator(loader))

	opts := []tracker.Option{
		tracker.WithLogger(logger),
		tracker.WithValidator(loader),
		tracker.WithLookupConcurrency(cfg.Tracker.LookupConcurrency),
	}
	if cfg.Tracker.StrictTransitions {
		opts = append(opts, tracker.WithTransitions(tracker.LifecycleTransitions))
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       conn,
		Repo:     repo,
		Schemas:  loader,
		Docs:     docs,
		Catalog:  cat,
		Tracker:  tracker.New(docs, cat, opts...),
		Queue:    jobs.NewRepository(conn),
		Notifier: NewNotifier(cfg.Notifier, logger),
	}, nil
}

// NewNotifier picks the delivery channel configured for deadline alerts.
func NewNotifier(cfg config.NotifierConfig, logger *slog.Logger) notifier.Notifier {
	if strings.EqualFold(cfg.Kind, "email") {
		e := cfg.Email
		return notifier.NewEmailNotifier(notifier.EmailConfig{
			Host:     e.Host,
			Port:     e.Port,
			Username: e.Username,
			Password: e.Password,
			From:     e.From,
			Subject:  e.Subject,
		}, nil)
	}
	return notifier.NewLogNotifier(logger)
}

// WorkerPool builds the background pool with every job handler registered.
func (a *App) WorkerPool() *jobs.WorkerPool {
	handlers := map[string]jobs.Handler{
		alerts.JobType: alerts.Handler(a.Tracker, a.Repo, a.Notifier, a.Logger),
	}
	return jobs.NewWorkerPool(a.Queue, handlers, a.Logger, a.Config.Workers.Count)
}

// Scheduler builds the periodic deadline scan producer feeding pool.
func (a *App) Scheduler(pool jobs.Enqueuer) *alerts.Scheduler {
	return alerts.NewScheduler(a.Repo, pool, a.Logger, alerts.Config{
		Interval:    a.Config.Alerts.Interval,
		Timeout:     a.Config.Alerts.Timeout,
		MaxAttempts: a.Config.Workers.MaxAttempts,
	})
}

// Close stops subscriptions and closes the database.
func (a *App) Close() error {
	if err := a.Docs.Close(); err != nil {
		a.Logger.Warn("close document store", "err", err)
	}
	return a.DB.Close()
}
