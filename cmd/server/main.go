package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cognitypin/cognitypin/internal/api"
	"github.com/cognitypin/cognitypin/internal/app"
	"github.com/cognitypin/cognitypin/internal/content"
	"github.com/cognitypin/cognitypin/internal/events"
	"github.com/cognitypin/cognitypin/internal/platform/clock"
	"github.com/cognitypin/cognitypin/internal/platform/config"
	"github.com/cognitypin/cognitypin/internal/platform/logging"
	"github.com/cognitypin/cognitypin/internal/platform/metrics"
	"github.com/cognitypin/cognitypin/internal/platform/storage"
	"github.com/cognitypin/cognitypin/internal/reminder"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.LoadFile(".env")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	backends, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer backends.Close()

	bus := events.NewBus()
	bus.Subscribe(events.Record(backends.Events))

	m := metrics.New()
	svc := app.New(app.Config{
		Catalog:   catalog,
		Prefs:     backends.Prefs,
		Bus:       bus,
		Clock:     clock.Real{},
		Metrics:   m,
		DailyGoal: cfg.Reading.DailyGoal,
	})
	defer svc.Close()

	if cfg.Reminder.Enabled {
		sched := reminder.New(svc.Progress(), bus, svc.Clock(), cfg.Reminder.Time, time.Local)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      newHandler(svc, m, backends),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "articles", svc.Repository().Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}

// loadCatalog reads the catalog directory, or the embedded seed catalog
// when path is empty.
func loadCatalog(path string) (*content.Catalog, error) {
	if path == "" {
		return content.LoadSeed()
	}
	c, err := content.LoadDir(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog from %s: %w", path, err)
	}
	return c, nil
}

// newHandler creates the HTTP router with readiness checks for every open
// backend.
func newHandler(svc *app.Service, m *metrics.Metrics, backends *storage.Backends) http.Handler {
	var checks []api.Check
	for _, p := range backends.Probes() {
		checks = append(checks, api.Check{Name: p.Name, Fn: p.Fn})
	}
	return api.New(api.Config{App: svc, Metrics: m, Checks: checks}).Handler()
}
