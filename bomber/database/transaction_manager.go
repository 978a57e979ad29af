package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/iceweasel13/solana-bomber/bomber/config"
	"github.com/iceweasel13/solana-bomber/bomber/database/repositories"
)

// TxOptions picks the isolation level and retry budget for one unit of work.
type TxOptions struct {
	Isolation  sql.IsolationLevel
	Timeout    time.Duration
	MaxRetries int
}

// SerializableTx is used for every state-changing game operation. Conflicts
// between concurrent owners surface as 40001 and are retried.
func SerializableTx() TxOptions {
	return TxOptions{
		Isolation:  sql.LevelSerializable,
		Timeout:    config.DefaultTxTimeout,
		MaxRetries: config.MaxTxRetries,
	}
}

// TxManager runs closures inside bun transactions and replays them on
// serialization failures. fn must be safe to run more than once.
type TxManager struct {
	db *bun.DB
}

func NewTxManager(db *bun.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) Run(ctx context.Context, opts TxOptions, fn func(context.Context, bun.Tx) error) error {
	for attempt := 1; ; attempt++ {
		err := m.attempt(ctx, opts, fn)
		if err == nil || !repositories.IsRetryable(err) || attempt > opts.MaxRetries {
			return err
		}

		slog.Warn("Transaction conflict, retrying",
			slog.String("type", "db"),
			slog.Int("attempt", attempt),
			slog.String("sqlstate", repositories.SQLState(err)))

		t := time.NewTimer(config.TxRetryBackoff * time.Duration(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (m *TxManager) attempt(ctx context.Context, opts TxOptions, fn func(context.Context, bun.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: opts.Isolation})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
