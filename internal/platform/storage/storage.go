// Package storage opens the preferences backend and the optional event
// log selected by configuration.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/cognitypin/cognitypin/internal/events"
	"github.com/cognitypin/cognitypin/internal/platform/cache"
	"github.com/cognitypin/cognitypin/internal/platform/config"
	"github.com/cognitypin/cognitypin/internal/platform/database"
	"github.com/cognitypin/cognitypin/internal/platform/sqlite"
	"github.com/cognitypin/cognitypin/internal/prefs"
)

// Backends holds the opened connections. Only the ones the configuration
// asks for are non-nil.
type Backends struct {
	Prefs  prefs.Store
	Events events.EventLogger
	DB     *database.DB
	Cache  *cache.Cache
	SQLite *sqlx.DB
	Driver string
}

// Probe is a named connectivity check.
type Probe struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Open connects every backend cfg needs. On error, whatever was already
// opened is closed.
func Open(ctx context.Context, cfg *config.Config) (b *Backends, err error) {
	b = &Backends{Driver: cfg.Storage.Driver, Events: events.NopEventLogger{}}
	defer func() {
		if err != nil {
			b.Close()
			b = nil
		}
	}()

	if cfg.NeedsDatabase() {
		b.DB, err = database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return b, fmt.Errorf("connecting to database: %w", err)
		}
	}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		b.Prefs = prefs.NewMemoryStore()
	case config.DriverSQLite:
		b.SQLite, err = sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return b, err
		}
		b.Prefs = prefs.NewSQLiteStore(b.SQLite)
	case config.DriverPostgres:
		if err = b.DB.Migrate(ctx, prefs.PostgresSchema); err != nil {
			return b, fmt.Errorf("migrating preferences: %w", err)
		}
		b.Prefs, err = prefs.NewPostgresStore(b.DB.Pool)
		if err != nil {
			return b, err
		}
	case config.DriverRedis:
		b.Cache, err = cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return b, fmt.Errorf("connecting to cache: %w", err)
		}
		b.Prefs = prefs.NewRedisStore(b.Cache)
	default:
		return b, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.EventLog {
		l := events.NewPostgresEventLogger(b.DB.Pool)
		if err = l.EnsureSchema(ctx); err != nil {
			return b, err
		}
		b.Events = l
	}

	slog.Info("storage opened", "driver", cfg.Storage.Driver, "event_log", cfg.EventLog)
	return b, nil
}

// Probes returns a readiness check for every open connection.
func (b *Backends) Probes() []Probe {
	var probes []Probe
	if b.DB != nil {
		probes = append(probes, Probe{Name: "database", Fn: b.DB.HealthCheck})
	}
	if b.Cache != nil {
		probes = append(probes, Probe{Name: "cache", Fn: b.Cache.HealthCheck})
	}
	if b.SQLite != nil {
		probes = append(probes, Probe{Name: "sqlite", Fn: b.SQLite.PingContext})
	}
	return probes
}

// Close releases every open connection.
func (b *Backends) Close() error {
	if b == nil {
		return nil
	}
	var errs []error
	if b.SQLite != nil {
		errs = append(errs, b.SQLite.Close())
	}
	if b.Cache != nil {
		errs = append(errs, b.Cache.Close())
	}
	if b.DB != nil {
		b.DB.Close()
	}
	return errors.Join(errs...)
}
