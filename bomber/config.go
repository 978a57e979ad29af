package bomber

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/iceweasel13/solana-bomber/bomber/config"
	"github.com/iceweasel13/solana-bomber/bomber/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.withDefaults()
	return &cfg, nil
}

type Config struct {
	Log       LogConfig         `toml:"log"`
	DB        database.DBConfig `toml:"db"`
	Server    ServerConfig      `toml:"server"`
	Ledger    LedgerConfig      `toml:"ledger"`
	Snapshots SnapshotConfig    `toml:"snapshots"`
	Monitor   MonitorConfig     `toml:"monitor"`
}

type LogConfig struct {
	Level   slog.Level `toml:"level"`
	NoColor bool       `toml:"no_color"`
}

type ServerConfig struct {
	Addr         string   `toml:"addr"`
	EventsAddr   string   `toml:"events_addr"`
	AllowOrigins string   `toml:"allow_origins"`
	RateLimit    int      `toml:"rate_limit"`
	CacheSize    int      `toml:"cache_size"`
	TrustedProxy []string `toml:"trusted_proxies"`
}

type LedgerConfig struct {
	// Endpoint is the base URL of the token ledger gateway. Empty disables dispatching.
	Endpoint       string   `toml:"endpoint"`
	APIKey         string   `toml:"api_key"`
	PollInterval   Duration `toml:"poll_interval"`
	BatchSize      int      `toml:"batch_size"`
	MaxConcurrency int      `toml:"max_concurrency"`
	MaxAttempts    int      `toml:"max_attempts"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// SnapshotConfig points at an S3 compatible bucket (DigitalOcean Spaces in production).
type SnapshotConfig struct {
	Enabled  bool   `toml:"enabled"`
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
	Bucket   string `toml:"bucket"`
	Prefix   string `toml:"prefix"`
}

// Duration decodes toml strings such as "15m".
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type MonitorConfig struct {
	Interval Duration `toml:"interval"`
}

func (c *Config) withDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.EventsAddr == "" {
		c.Server.EventsAddr = ":8081"
	}
	if c.Server.AllowOrigins == "" {
		c.Server.AllowOrigins = "*"
	}
	if c.Server.RateLimit <= 0 {
		c.Server.RateLimit = config.RateLimitPerUser
	}
	if c.Server.CacheSize <= 0 {
		c.Server.CacheSize = config.CacheSize
	}
	if c.Ledger.PollInterval <= 0 {
		c.Ledger.PollInterval = Duration(config.LedgerPollInterval)
	}
	if c.Ledger.BatchSize <= 0 {
		c.Ledger.BatchSize = config.DefaultBatchSize
	}
	if c.Ledger.MaxConcurrency <= 0 {
		c.Ledger.MaxConcurrency = config.LedgerMaxConcurrency
	}
	if c.Ledger.MaxAttempts <= 0 {
		c.Ledger.MaxAttempts = config.LedgerMaxAttempts
	}
	if c.Ledger.RequestTimeout <= 0 {
		c.Ledger.RequestTimeout = Duration(config.LedgerRequestTimeout)
	}
	if c.Snapshots.Prefix == "" {
		c.Snapshots.Prefix = "snapshots"
	}
	if c.Monitor.Interval <= 0 {
		c.Monitor.Interval = Duration(config.MonitorInterval)
	}
}
