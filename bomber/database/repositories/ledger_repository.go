package repositories

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/iceweasel13/solana-bomber/bomber/database/models"
)

type LedgerRepository interface {
	CreateBatch(ctx context.Context, tx bun.Tx, requests []*models.LedgerRequest) error
	// ClaimBatch leases up to limit due requests. A leased request is not
	// returned again until the lease runs out, so a crashed dispatcher only
	// delays delivery.
	ClaimBatch(ctx context.Context, limit int, lease time.Duration) ([]*models.LedgerRequest, error)
	MarkSent(ctx context.Context, id snowflake.ID) error
	MarkRetry(ctx context.Context, id snowflake.ID, cause string, next time.Time) error
	MarkFailed(ctx context.Context, id snowflake.ID, cause string) error
	Requeue(ctx context.Context, id snowflake.ID) error
	CountByStatus(ctx context.Context) (map[models.LedgerStatus]int, error)
	GetByOwner(ctx context.Context, owner string, limit int) ([]*models.LedgerRequest, error)
}

type ledgerRepository struct {
	*BaseRepository
}

func NewLedgerRepository(db *bun.DB) LedgerRepository {
	return &ledgerRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *ledgerRepository) CreateBatch(ctx context.Context, tx bun.Tx, requests []*models.LedgerRequest) error {
	if len(requests) == 0 {
		return nil
	}
	_, err := tx.NewInsert().Model(&requests).Exec(ctx)
	return r.HandleError("create_batch", "ledger_request", err)
}

func (r *ledgerRepository) ClaimBatch(ctx context.Context, limit int, lease time.Duration) ([]*models.LedgerRequest, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var claimed []*models.LedgerRequest
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()
		if err := tx.NewSelect().
			Model(&claimed).
			Where("status = ?", models.LedgerStatusPending).
			Where("next_attempt_at <= ?", now).
			Order("id ASC").
			Limit(limit).
			For("UPDATE SKIP LOCKED").
			Scan(ctx); err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}

		ids := make([]snowflake.ID, len(claimed))
		for i, req := range claimed {
			ids[i] = req.ID
			req.Attempts++
			req.NextAttemptAt = now.Add(lease)
			req.UpdatedAt = now
		}
		_, err := tx.NewUpdate().
			Model((*models.LedgerRequest)(nil)).
			Set("attempts = attempts + 1").
			Set("next_attempt_at = ?", now.Add(lease)).
			Set("updated_at = ?", now).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, r.HandleError("claim_batch", "ledger_request", err)
	}
	return claimed, nil
}

func (r *ledgerRepository) MarkSent(ctx context.Context, id snowflake.ID) error {
	now := time.Now()
	return r.update(ctx, "mark_sent", id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("status = ?", models.LedgerStatusSent).
			Set("sent_at = ?", now).
			Set("last_error = NULL")
	})
}

func (r *ledgerRepository) MarkRetry(ctx context.Context, id snowflake.ID, cause string, next time.Time) error {
	return r.update(ctx, "mark_retry", id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("last_error = ?", cause).
			Set("next_attempt_at = ?", next)
	})
}

func (r *ledgerRepository) MarkFailed(ctx context.Context, id snowflake.ID, cause string) error {
	return r.update(ctx, "mark_failed", id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("status = ?", models.LedgerStatusFailed).
			Set("last_error = ?", cause)
	})
}

// Requeue puts a failed request back in the queue with a fresh attempt budget.
func (r *ledgerRepository) Requeue(ctx context.Context, id snowflake.ID) error {
	return r.update(ctx, "requeue", id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("status = ?", models.LedgerStatusPending).
			Set("attempts = 0").
			Set("next_attempt_at = ?", time.Now()).
			Where("status = ?", models.LedgerStatusFailed)
	})
}

func (r *ledgerRepository) update(ctx context.Context, operation string, id snowflake.ID, set func(*bun.UpdateQuery) *bun.UpdateQuery) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	q := r.db.NewUpdate().
		Model((*models.LedgerRequest)(nil)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id)
	result, err := set(q).Exec(ctx)
	if err != nil {
		return r.HandleErrorWithID(operation, "ledger_request", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &NotFoundError{Entity: "ledger_request", Key: id}
	}
	return nil
}

func (r *ledgerRepository) CountByStatus(ctx context.Context) (map[models.LedgerStatus]int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var rows []struct {
		Status models.LedgerStatus `bun:"status"`
		Count  int                 `bun:"count"`
	}
	err := r.db.NewSelect().
		Model((*models.LedgerRequest)(nil)).
		Column("status").
		ColumnExpr("COUNT(*) AS count").
		Group("status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, r.HandleError("count_by_status", "ledger_request", err)
	}

	counts := make(map[models.LedgerStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *ledgerRepository) GetByOwner(ctx context.Context, owner string, limit int) ([]*models.LedgerRequest, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var requests []*models.LedgerRequest
	err := r.db.NewSelect().
		Model(&requests).
		Where("owner = ?", owner).
		Order("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get_by_owner", "ledger_request", owner, err)
	}
	return requests, nil
}
