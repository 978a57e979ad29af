package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/iceweasel13/solana-bomber/bomber/config"
)

// Postgres SQLSTATE codes the repositories react to.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// BaseRepository carries the bun handle and the shared error mapping.
type BaseRepository struct {
	db      *bun.DB
	timeout time.Duration
}

func NewBaseRepository(db *bun.DB) *BaseRepository {
	return &BaseRepository{db: db, timeout: config.DefaultQueryTimeout}
}

// RepositoryError wraps a driver error with the operation and row it concerned.
type RepositoryError struct {
	Op     string
	Entity string
	Key    any
	Err    error
}

func (e *RepositoryError) Error() string {
	if e.Key == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
	}
	return fmt.Sprintf("%s %s %v: %v", e.Op, e.Entity, e.Key, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// NotFoundError is a missing row. Owners and snowflake ids are both keys.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
}

// ConflictError is a unique violation, e.g. a second house for the same owner.
type ConflictError struct {
	Entity string
	Key    any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %v already exists", e.Entity, e.Key)
}

func (br *BaseRepository) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, br.timeout)
}

// HandleErrorWithID maps err for the row identified by key. Serialization
// failures are wrapped but stay detectable so the transaction manager can
// retry them.
func (br *BaseRepository) HandleErrorWithID(op, entity string, key any, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return &NotFoundError{Entity: entity, Key: key}
	case SQLState(err) == pgUniqueViolation:
		return &ConflictError{Entity: entity, Key: key}
	}
	return &RepositoryError{Op: op, Entity: entity, Key: key, Err: err}
}

func (br *BaseRepository) HandleError(op, entity string, err error) error {
	return br.HandleErrorWithID(op, entity, nil, err)
}

// Count runs query as a count under the default timeout.
func (br *BaseRepository) Count(ctx context.Context, entity string, query *bun.SelectQuery) (int, error) {
	ctx, cancel := br.WithTimeout(ctx)
	defer cancel()

	n, err := query.Count(ctx)
	return n, br.HandleError("count", entity, err)
}

// SQLState returns the Postgres error code carried by err, or "".
func SQLState(err error) string {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return ""
	}
	return pgErr.Field('C')
}

// IsRetryable reports a serialization failure or deadlock.
func IsRetryable(err error) bool {
	switch SQLState(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}

func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
