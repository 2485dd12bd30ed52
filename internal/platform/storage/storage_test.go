package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/cognitypin/cognitypin/internal/events"
	"github.com/cognitypin/cognitypin/internal/platform/config"
	"github.com/cognitypin/cognitypin/internal/platform/storage"
	"github.com/cognitypin/cognitypin/internal/prefs"
)

func TestOpen_Memory(t *testing.T) {
	b, err := storage.Open(t.Context(), &config.Config{Storage: config.StorageConfig{Driver: config.DriverMemory}})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	if _, ok := b.Prefs.(*prefs.MemoryStore); !ok {
		t.Errorf("Prefs = %T, want *prefs.MemoryStore", b.Prefs)
	}
	if _, ok := b.Events.(events.NopEventLogger); !ok {
		t.Errorf("Events = %T, want NopEventLogger", b.Events)
	}
	if got := len(b.Probes()); got != 0 {
		t.Errorf("Probes() = %d, want 0", got)
	}
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "cognitypin.db")
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.DriverSQLite, SQLitePath: path}}

	b, err := storage.Open(t.Context(), cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	if err := b.Prefs.Set(prefs.KeyUserProgress, []byte(`{"streakDays":2}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	probes := b.Probes()
	if len(probes) != 1 || probes[0].Name != "sqlite" {
		t.Fatalf("Probes() = %v", probes)
	}
	if err := probes[0].Fn(t.Context()); err != nil {
		t.Errorf("sqlite probe error = %v", err)
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"unknown driver", config.Config{Storage: config.StorageConfig{Driver: "etcd"}}},
		{"bad cache url", config.Config{Storage: config.StorageConfig{Driver: config.DriverRedis}, Cache: config.CacheConfig{URL: "not a url"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := storage.Open(t.Context(), &tt.cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if b != nil {
				t.Errorf("Backends = %v, want nil on error", b)
			}
		})
	}
}

func TestClose_Nil(t *testing.T) {
	var b *storage.Backends
	if err := b.Close(); err != nil {
		t.Errorf("Close() on nil = %v", err)
	}
}
