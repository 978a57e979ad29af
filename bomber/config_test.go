package bomber

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[log]
level = "DEBUG"

[db]
host = "localhost"
port = 5432
user = "bomber"
database = "bomber"

[server]
addr = ":9000"

[ledger]
endpoint = "http://ledger.local"
poll_interval = "2s"

[snapshots]
enabled = true
bucket = "bomber-snapshots"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Log.Level != slog.LevelDebug {
		t.Errorf("Log.Level = %v", cfg.Log.Level)
	}
	if cfg.DB.Host != "localhost" || cfg.DB.Port != 5432 {
		t.Errorf("DB = %+v", cfg.DB)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.EventsAddr != ":8081" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Ledger.PollInterval.Std() != 2*time.Second || cfg.Ledger.BatchSize != 50 {
		t.Errorf("Ledger = %+v", cfg.Ledger)
	}
	if cfg.Monitor.Interval.Std() != 15*time.Minute {
		t.Errorf("Monitor.Interval = %v", cfg.Monitor.Interval.Std())
	}
	if !cfg.Snapshots.Enabled || cfg.Snapshots.Prefix != "snapshots" {
		t.Errorf("Snapshots = %+v", cfg.Snapshots)
	}
}

func TestLoadConfig_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[monitor]\ninterval = \"soon\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() accepted an invalid duration")
	}
}
