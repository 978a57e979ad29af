package repositories

import (
	"context"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/iceweasel13/solana-bomber/bomber/database/models"
)

type PlayerRepository interface {
	GetByOwner(ctx context.Context, owner string) (*models.PlayerProfile, error)
	GetByOwnerForUpdate(ctx context.Context, tx bun.Tx, owner string) (*models.PlayerProfile, error)
	Exists(ctx context.Context, tx bun.Tx, owner string) (bool, error)
	Create(ctx context.Context, tx bun.Tx, player *models.PlayerProfile) error
	Update(ctx context.Context, tx bun.Tx, player *models.PlayerProfile) error
	CountReferrals(ctx context.Context, referrer string) (int, error)
	GetTopByPower(ctx context.Context, limit int) ([]*models.PlayerProfile, error)
}

type playerRepository struct {
	*BaseRepository
}

func NewPlayerRepository(db *bun.DB) PlayerRepository {
	return &playerRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *playerRepository) GetByOwner(ctx context.Context, owner string) (*models.PlayerProfile, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	player := new(models.PlayerProfile)
	err := r.db.NewSelect().
		Model(player).
		Where("owner = ?", owner).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "player_profile", owner, err)
	}
	return player, nil
}

func (r *playerRepository) GetByOwnerForUpdate(ctx context.Context, tx bun.Tx, owner string) (*models.PlayerProfile, error) {
	player := new(models.PlayerProfile)
	err := tx.NewSelect().
		Model(player).
		Where("owner = ?", owner).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("lock", "player_profile", owner, err)
	}
	return player, nil
}

func (r *playerRepository) Exists(ctx context.Context, tx bun.Tx, owner string) (bool, error) {
	exists, err := tx.NewSelect().
		Model((*models.PlayerProfile)(nil)).
		Where("owner = ?", owner).
		Exists(ctx)
	return exists, r.HandleErrorWithID("exists", "player_profile", owner, err)
}

func (r *playerRepository) Create(ctx context.Context, tx bun.Tx, player *models.PlayerProfile) error {
	_, err := tx.NewInsert().Model(player).Exec(ctx)
	if err != nil {
		slog.Error("Failed to create player profile",
			slog.String("type", "db"),
			slog.String("owner", player.Owner),
			slog.Any("error", err))
	}
	return r.HandleErrorWithID("create", "player_profile", player.Owner, err)
}

func (r *playerRepository) Update(ctx context.Context, tx bun.Tx, player *models.PlayerProfile) error {
	_, err := tx.NewUpdate().
		Model(player).
		WherePK().
		Exec(ctx)
	return r.HandleErrorWithID("update", "player_profile", player.Owner, err)
}

func (r *playerRepository) CountReferrals(ctx context.Context, referrer string) (int, error) {
	return r.Count(ctx, "player_profile", r.db.NewSelect().
		Model((*models.PlayerProfile)(nil)).
		Where("referrer = ?", referrer))
}

func (r *playerRepository) GetTopByPower(ctx context.Context, limit int) ([]*models.PlayerProfile, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var players []*models.PlayerProfile
	err := r.db.NewSelect().
		Model(&players).
		Column("owner", "house_level", "coin_balance", "player_power", "hero_count", "created_at", "updated_at").
		Order("player_power DESC", "owner ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("top_by_power", "player_profile", err)
	}
	return players, nil
}
