package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.MongoDatabase != "kestrel" {
		t.Errorf("MongoDatabase = %q, want kestrel", cfg.MongoDatabase)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if !cfg.WatchdogEnabled {
		t.Error("WatchdogEnabled should default to true")
	}
	if cfg.WatchdogSchedule != "*/15 * * * *" {
		t.Errorf("WatchdogSchedule = %q, want */15 * * * *", cfg.WatchdogSchedule)
	}
	if cfg.WatchdogLockTTL != 600*time.Second {
		t.Errorf("WatchdogLockTTL = %v, want 10m", cfg.WatchdogLockTTL)
	}
	if cfg.DefaultSLAHours != 24 {
		t.Errorf("DefaultSLAHours = %d, want 24", cfg.DefaultSLAHours)
	}
	if cfg.DedupChunkSize != 10 {
		t.Errorf("DedupChunkSize = %d, want 10", cfg.DedupChunkSize)
	}
	if cfg.BatchWriteLimit != 500 {
		t.Errorf("BatchWriteLimit = %d, want 500", cfg.BatchWriteLimit)
	}
	if cfg.AlertSeverity != "HIGH" {
		t.Errorf("AlertSeverity = %q, want HIGH", cfg.AlertSeverity)
	}
	if cfg.WarehouseURL != "" {
		t.Errorf("WarehouseURL = %q, want empty (mirror disabled)", cfg.WarehouseURL)
	}
	if len(cfg.MirrorRetainPaths) != 3 {
		t.Errorf("MirrorRetainPaths = %v, want 3 default paths", cfg.MirrorRetainPaths)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MONGO_DATABASE", "kestrel_test")
	t.Setenv("DEFAULT_SLA_HOURS", "4")
	t.Setenv("WATCHDOG_ENABLED", "false")
	t.Setenv("MIRROR_RETAIN_PATHS", "$.device.model , $.duration_seconds")

	cfg := Load()

	if cfg.MongoDatabase != "kestrel_test" {
		t.Errorf("MongoDatabase = %q, want kestrel_test", cfg.MongoDatabase)
	}
	if cfg.DefaultSLAHours != 4 {
		t.Errorf("DefaultSLAHours = %d, want 4", cfg.DefaultSLAHours)
	}
	if cfg.WatchdogEnabled {
		t.Error("WatchdogEnabled should be false")
	}
	want := []string{"$.device.model", "$.duration_seconds"}
	if len(cfg.MirrorRetainPaths) != len(want) {
		t.Fatalf("MirrorRetainPaths = %v, want %v", cfg.MirrorRetainPaths, want)
	}
	for i, p := range want {
		if cfg.MirrorRetainPaths[i] != p {
			t.Errorf("MirrorRetainPaths[%d] = %q, want %q", i, cfg.MirrorRetainPaths[i], p)
		}
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DEFAULT_SLA_HOURS", "soon")
	t.Setenv("WATCHDOG_ENABLED", "yes please")

	cfg := Load()

	if cfg.DefaultSLAHours != 24 {
		t.Errorf("DefaultSLAHours = %d, want default 24 for invalid value", cfg.DefaultSLAHours)
	}
	if !cfg.WatchdogEnabled {
		t.Error("WatchdogEnabled should fall back to true for invalid value")
	}
}
