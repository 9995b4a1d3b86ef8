package config

import (
	"os"
	"testing"
	"time"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"STORE_DRIVER", "COUNTDOWN_TICK", "SYNC_INTERVAL_SECONDS", "REDIS_ENABLED", "STATS_TIMEZONE", "DATABASE_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != StoreDriverBolt {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}
	if cfg.Countdown.Tick != time.Second || cfg.Countdown.SyncInterval != 30*time.Second {
		t.Errorf("countdown = %+v", cfg.Countdown)
	}
	if cfg.Redis.Enabled || cfg.Redis.Channel != "powertimer:timers" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Database.URL == "" {
		t.Error("database url not built from parts")
	}
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("SYNC_INTERVAL_SECONDS", "45")
	t.Setenv("COUNTDOWN_TICK", "250ms")
	t.Setenv("STATS_TIMEZONE", "UTC")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != StoreDriverPostgres {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}
	if cfg.Countdown.SyncInterval != 45*time.Second || cfg.Countdown.Tick != 250*time.Millisecond {
		t.Errorf("countdown = %+v", cfg.Countdown)
	}
	if loc, _ := cfg.Stats.Location(); loc != time.UTC {
		t.Errorf("location = %v", loc)
	}
	if cfg.Address() != "0.0.0.0:9090" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_DRIVER", "sqlite")
	if _, err := Load(); err == nil {
		t.Error("unknown driver accepted")
	}

	t.Setenv("STORE_DRIVER", "bolt")
	t.Setenv("STATS_TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Error("unknown timezone accepted")
	}
}
