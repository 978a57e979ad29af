package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/iceweasel13/solana-bomber/bomber/database/models"
)

type GlobalStateRepository interface {
	Get(ctx context.Context) (*models.GlobalState, error)
	// GetForUpdate locks the row until tx ends.
	GetForUpdate(ctx context.Context, tx bun.Tx) (*models.GlobalState, error)
	Create(ctx context.Context, tx bun.Tx, state *models.GlobalState) error
	Update(ctx context.Context, tx bun.Tx, state *models.GlobalState) error
}

type globalStateRepository struct {
	*BaseRepository
}

func NewGlobalStateRepository(db *bun.DB) GlobalStateRepository {
	return &globalStateRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *globalStateRepository) Get(ctx context.Context) (*models.GlobalState, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	state := new(models.GlobalState)
	err := r.db.NewSelect().
		Model(state).
		Where("id = ?", models.GlobalStateID).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "global_state", models.GlobalStateID, err)
	}
	return state, nil
}

func (r *globalStateRepository) GetForUpdate(ctx context.Context, tx bun.Tx) (*models.GlobalState, error) {
	state := new(models.GlobalState)
	err := tx.NewSelect().
		Model(state).
		Where("id = ?", models.GlobalStateID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("lock", "global_state", models.GlobalStateID, err)
	}
	return state, nil
}

func (r *globalStateRepository) Create(ctx context.Context, tx bun.Tx, state *models.GlobalState) error {
	_, err := tx.NewInsert().Model(state).Exec(ctx)
	return r.HandleErrorWithID("create", "global_state", state.ID, err)
}

func (r *globalStateRepository) Update(ctx context.Context, tx bun.Tx, state *models.GlobalState) error {
	_, err := tx.NewUpdate().
		Model(state).
		WherePK().
		Exec(ctx)
	return r.HandleErrorWithID("update", "global_state", state.ID, err)
}
