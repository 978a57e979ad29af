package database

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/iceweasel13/solana-bomber/bomber/database/models"
	"github.com/iceweasel13/solana-bomber/bomber/database/repositories"
	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
	"github.com/iceweasel13/solana-bomber/bomber/economy/ledger"
	"github.com/iceweasel13/solana-bomber/bomber/economy/profile"
	"github.com/iceweasel13/solana-bomber/bomber/interfaces"
	"github.com/iceweasel13/solana-bomber/bomber/utils"
)

// GameStore is the Postgres implementation of interfaces.GameStore.
type GameStore struct {
	tm      *TxManager
	globals repositories.GlobalStateRepository
	players repositories.PlayerRepository
	ledger  repositories.LedgerRepository
	claims  repositories.ClaimRepository
	ids     *utils.IDGenerator
}

func NewGameStore(db *bun.DB, ids *utils.IDGenerator) *GameStore {
	return &GameStore{
		tm:      NewTxManager(db),
		globals: repositories.NewGlobalStateRepository(db),
		players: repositories.NewPlayerRepository(db),
		ledger:  repositories.NewLedgerRepository(db),
		claims:  repositories.NewClaimRepository(db),
		ids:     ids,
	}
}

func (s *GameStore) InTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.GameTx) error) error {
	return s.tm.Run(ctx, SerializableTx(), func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &gameTx{store: s, tx: tx, profiles: make(map[string]*models.PlayerProfile)})
	})
}

func (s *GameStore) LoadGlobal(ctx context.Context) (*global.State, error) {
	row, err := s.globals.Get(ctx)
	if err != nil {
		return nil, globalError(err)
	}
	state := row.State
	return &state, nil
}

func (s *GameStore) LoadProfile(ctx context.Context, owner string) (*profile.Profile, error) {
	row, err := s.players.GetByOwner(ctx, owner)
	if err != nil {
		return nil, profileError(err)
	}
	p := row.State.Clone()
	return &p, nil
}

func (s *GameStore) ReferralCount(ctx context.Context, owner string) (int, error) {
	return s.players.CountReferrals(ctx, owner)
}

func (s *GameStore) ClaimHistory(ctx context.Context, owner string, limit int) ([]*models.ClaimRecord, error) {
	return s.claims.GetByOwner(ctx, owner, limit)
}

func (s *GameStore) Leaderboard(ctx context.Context, limit int) ([]*models.PlayerProfile, error) {
	return s.players.GetTopByPower(ctx, limit)
}

func globalError(err error) error {
	if repositories.IsNotFound(err) {
		return economy.ErrNotInitialized
	}
	return err
}

func profileError(err error) error {
	if repositories.IsNotFound(err) {
		return economy.ErrProfileNotFound
	}
	return err
}

// gameTx remembers the rows it loaded so saves update them in place.
type gameTx struct {
	store     *GameStore
	tx        bun.Tx
	globalRow *models.GlobalState
	profiles  map[string]*models.PlayerProfile
}

func (t *gameTx) LockGlobal(ctx context.Context) (*global.State, error) {
	row, err := t.store.globals.GetForUpdate(ctx, t.tx)
	if err != nil {
		return nil, globalError(err)
	}
	t.globalRow = row
	state := row.State
	return &state, nil
}

func (t *gameTx) CreateGlobal(ctx context.Context, state *global.State) error {
	row := models.NewGlobalState(state, time.Now())
	if err := t.store.globals.Create(ctx, t.tx, row); err != nil {
		if repositories.IsConflict(err) {
			return economy.ErrAlreadyInitialized
		}
		return err
	}
	t.globalRow = row
	return nil
}

func (t *gameTx) SaveGlobal(ctx context.Context, state *global.State) error {
	if t.globalRow == nil {
		return fmt.Errorf("global state saved without being locked")
	}
	t.globalRow.Sync(state, time.Now())
	return t.store.globals.Update(ctx, t.tx, t.globalRow)
}

func (t *gameTx) LockProfile(ctx context.Context, owner string) (*profile.Profile, error) {
	row, err := t.store.players.GetByOwnerForUpdate(ctx, t.tx, owner)
	if err != nil {
		return nil, profileError(err)
	}
	t.profiles[owner] = row
	p := row.State.Clone()
	return &p, nil
}

func (t *gameTx) ProfileExists(ctx context.Context, owner string) (bool, error) {
	return t.store.players.Exists(ctx, t.tx, owner)
}

func (t *gameTx) CreateProfile(ctx context.Context, p *profile.Profile) error {
	row := models.NewPlayerProfile(p, time.Now())
	if err := t.store.players.Create(ctx, t.tx, row); err != nil {
		if repositories.IsConflict(err) {
			return economy.ErrProfileAlreadyExists
		}
		return err
	}
	t.profiles[p.Owner] = row
	return nil
}

func (t *gameTx) SaveProfile(ctx context.Context, p *profile.Profile) error {
	row, ok := t.profiles[p.Owner]
	if !ok {
		return fmt.Errorf("profile %s saved without being locked", p.Owner)
	}
	row.Sync(p, time.Now())
	return t.store.players.Update(ctx, t.tx, row)
}

func (t *gameTx) Enqueue(ctx context.Context, owner, operation string, requests []ledger.Request) error {
	now := time.Now()
	rows := make([]*models.LedgerRequest, 0, len(requests))
	for _, req := range requests {
		if req.Amount == 0 {
			continue
		}
		row, err := models.NewLedgerRequest(t.store.ids.Next(), owner, operation, req, now)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return t.store.ledger.CreateBatch(ctx, t.tx, rows)
}

func (t *gameTx) RecordClaim(ctx context.Context, receipt profile.ClaimReceipt) error {
	row, err := models.NewClaimRecord(t.store.ids.Next(), receipt)
	if err != nil {
		return err
	}
	return t.store.claims.CreateTx(ctx, t.tx, row)
}
