package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/iceweasel13/solana-bomber/bomber/config"
	"github.com/iceweasel13/solana-bomber/bomber/database/models"
	"github.com/iceweasel13/solana-bomber/bomber/logger"
)

// schemaVersion is bumped whenever tables or indexes below change.
const schemaVersion = 1

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"ssl_mode"`
	PoolSize int    `toml:"pool_size"`
	// MaxLifetime is in seconds.
	MaxLifetime int `toml:"max_lifetime"`
}

// DSN renders the config as a postgres URL. User and password are escaped.
func (c DBConfig) DSN() string {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.SSLMode == "" {
		q.Set("sslmode", "disable")
	}
	q.Set("connect_timeout", strconv.Itoa(int(config.NetworkDialTimeout.Seconds())))

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// DB holds two handles on the same database. Repositories go through bun;
// schema bookkeeping and raw statements go through the pgx pool.
type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

// New connects and waits for the server to answer, for up to
// config.DBConnectAttempts pings.
func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := waitReady(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN())))
	if cfg.PoolSize > 0 {
		sqldb.SetMaxOpenConns(cfg.PoolSize)
	}
	return &DB{pool: pool, bunDB: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func waitReady(ctx context.Context, pool *pgxpool.Pool) error {
	var err error
	for attempt := 1; attempt <= config.DBConnectAttempts; attempt++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		slog.Warn("Database not ready, retrying",
			slog.String("type", "db"),
			slog.Int("attempt", attempt),
			slog.Any("error", err))

		t := time.NewTimer(config.DBConnectBackoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", config.DBConnectAttempts, err)
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	start := time.Now()
	tag, err := db.pool.Exec(ctx, sql, args...)
	logger.LogStatement("exec", sql, time.Since(start), err)
	return tag, err
}

func (db *DB) Close() {
	if db.bunDB != nil {
		db.bunDB.Close()
	}
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks both handles.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgx: %w", err)
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun: %w", err)
	}
	return nil
}

var schemaModels = []any{
	(*models.GlobalState)(nil),
	(*models.PlayerProfile)(nil),
	(*models.LedgerRequest)(nil),
	(*models.ClaimRecord)(nil),
	(*models.EconomyStats)(nil),
}

var schemaStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_player_profiles_referrer ON player_profiles(referrer) WHERE referrer IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_player_profiles_power ON player_profiles(player_power DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_requests_due ON ledger_requests(next_attempt_at, id) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_requests_owner ON ledger_requests(owner, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_owner_time ON claims(owner, claimed_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_economy_stats_timestamp ON economy_stats(timestamp)`,
	`ALTER TABLE global_state DROP CONSTRAINT IF EXISTS global_state_single_row`,
	`ALTER TABLE global_state ADD CONSTRAINT global_state_single_row CHECK (id = 1)`,
}

// InitializeSchema creates tables and indexes unless the recorded schema
// version is already current. Every statement is idempotent, so a crash
// halfway through is repaired by the next run.
func (db *DB) InitializeSchema(ctx context.Context) error {
	if _, err := db.ExecWithLog(ctx, `CREATE TABLE IF NOT EXISTS schema_meta (
		version INTEGER NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`); err != nil {
		return fmt.Errorf("failed to create schema_meta: %w", err)
	}

	current, err := db.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if current >= schemaVersion {
		slog.Debug("Schema up to date", slog.String("type", "db"), slog.Int("version", current))
		return nil
	}

	for _, model := range schemaModels {
		if _, err := db.bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	for _, stmt := range schemaStatements {
		if _, err := db.ExecWithLog(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	if _, err := db.ExecWithLog(ctx, `INSERT INTO schema_meta(version) VALUES ($1)`, schemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	slog.Info("Database schema applied",
		slog.String("type", "db"),
		slog.Int("from", current),
		slog.Int("to", schemaVersion))
	return nil
}

func (db *DB) schemaVersion(ctx context.Context) (int, error) {
	var v int
	err := db.pool.QueryRow(ctx, `SELECT version FROM schema_meta ORDER BY version DESC LIMIT 1`).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}
