package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/iceweasel13/solana-bomber/bomber/database/models"
)

// EconomyStatsRepository stores the monitor's periodic rows. The latest row
// survives restarts and seeds the halving detector.
type EconomyStatsRepository interface {
	Create(ctx context.Context, stats *models.EconomyStats) error
	GetLatest(ctx context.Context) (*models.EconomyStats, error)
}

type economyStatsRepository struct {
	*BaseRepository
}

func NewEconomyStatsRepository(db *bun.DB) EconomyStatsRepository {
	return &economyStatsRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *economyStatsRepository) Create(ctx context.Context, stats *models.EconomyStats) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	if stats.Timestamp.IsZero() {
		stats.Timestamp = time.Now().UTC()
	}
	_, err := r.db.NewInsert().Model(stats).Returning("id").Exec(ctx)
	return r.HandleError("create", "economy_stats", err)
}

func (r *economyStatsRepository) GetLatest(ctx context.Context) (*models.EconomyStats, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var latest models.EconomyStats
	if err := r.db.NewSelect().Model(&latest).OrderExpr("timestamp DESC, id DESC").Limit(1).Scan(ctx); err != nil {
		return nil, r.HandleError("get_latest", "economy_stats", err)
	}
	return &latest, nil
}
