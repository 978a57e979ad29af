package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/iceweasel13/solana-bomber/bomber/database/models"
)

type ClaimRepository interface {
	CreateTx(ctx context.Context, tx bun.Tx, claim *models.ClaimRecord) error
	GetByOwner(ctx context.Context, owner string, limit int) ([]*models.ClaimRecord, error)
}

type claimRepository struct {
	*BaseRepository
}

func NewClaimRepository(db *bun.DB) ClaimRepository {
	return &claimRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *claimRepository) CreateTx(ctx context.Context, tx bun.Tx, claim *models.ClaimRecord) error {
	_, err := tx.NewInsert().Model(claim).Exec(ctx)
	return r.HandleErrorWithID("create", "claim", claim.ID, err)
}

// GetByOwner returns the newest claims first.
func (r *claimRepository) GetByOwner(ctx context.Context, owner string, limit int) ([]*models.ClaimRecord, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	claims := []*models.ClaimRecord{}
	err := r.db.NewSelect().
		Model(&claims).
		Where("owner = ?", owner).
		Order("claimed_at DESC", "id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get_by_owner", "claim", owner, err)
	}
	return claims, nil
}
