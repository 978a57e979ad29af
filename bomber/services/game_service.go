package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/iceweasel13/solana-bomber/bomber/config"
	"github.com/iceweasel13/solana-bomber/bomber/database/models"
	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/claim"
	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
	"github.com/iceweasel13/solana-bomber/bomber/economy/heroes"
	"github.com/iceweasel13/solana-bomber/bomber/economy/house"
	"github.com/iceweasel13/solana-bomber/bomber/economy/ledger"
	"github.com/iceweasel13/solana-bomber/bomber/economy/profile"
	"github.com/iceweasel13/solana-bomber/bomber/interfaces"
	"github.com/iceweasel13/solana-bomber/bomber/logger"
)

// GameService runs every game operation against the store. Player operations
// are serialized per owner, executed in one transaction together with their
// ledger requests, and announced to subscribers only after commit.
type GameService struct {
	store  interfaces.GameStore
	locks  *claim.Manager
	cache  *lru.Cache
	// gens counts committed writes per owner so a view that loaded before a
	// write cannot cache what it read after the write invalidated the entry.
	gens   *xsync.MapOf[string, uint64]
	events EventPublisher
	now    func() time.Time
}

type cachedProfile struct {
	profile  profile.Profile
	loadedAt time.Time
}

func NewGameService(store interfaces.GameStore, locks *claim.Manager, cacheSize int, events EventPublisher) (*GameService, error) {
	if cacheSize <= 0 {
		cacheSize = config.CacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile cache: %w", err)
	}
	if events == nil {
		events = NopPublisher
	}
	return &GameService{
		store:  store,
		locks:  locks,
		cache:  cache,
		gens:   xsync.NewMapOf[string, uint64](),
		events: events,
		now:    time.Now,
	}, nil
}

// playerOpFunc mutates p and g and returns the ledger requests to enqueue.
// It may run more than once when the transaction is retried.
type playerOpFunc func(ctx context.Context, tx interfaces.GameTx, p *profile.Profile, g *global.State, now int64) ([]ledger.Request, error)

func (s *GameService) withProfile(ctx context.Context, op, owner string, fn playerOpFunc) (err error) {
	if owner == "" {
		return economy.ErrInvalidIdentity
	}

	start := time.Now()
	defer func() { logger.LogOperation(op, owner, time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, config.OperationTimeout)
	defer cancel()

	unlock, err := s.locks.Lock(ctx, owner)
	if err != nil {
		return err
	}
	defer unlock()
	defer s.invalidate(owner)

	return s.store.InTx(ctx, func(ctx context.Context, tx interfaces.GameTx) error {
		g, err := tx.LockGlobal(ctx)
		if err != nil {
			return err
		}
		p, err := tx.LockProfile(ctx, owner)
		if err != nil {
			return err
		}

		reqs, err := fn(ctx, tx, p, g, s.now().Unix())
		if err != nil {
			return err
		}

		if err := tx.SaveProfile(ctx, p); err != nil {
			return err
		}
		if err := tx.SaveGlobal(ctx, g); err != nil {
			return err
		}
		return tx.Enqueue(ctx, owner, op, reqs)
	})
}

func (s *GameService) withGlobal(ctx context.Context, op, caller string, fn func(g *global.State, now int64) error) (err error) {
	start := time.Now()
	defer func() { logger.LogOperation(op, caller, time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, config.OperationTimeout)
	defer cancel()

	return s.store.InTx(ctx, func(ctx context.Context, tx interfaces.GameTx) error {
		g, err := tx.LockGlobal(ctx)
		if err != nil {
			return err
		}
		if err := g.RequireAuthority(caller); err != nil {
			return err
		}
		if err := fn(g, s.now().Unix()); err != nil {
			return err
		}
		return tx.SaveGlobal(ctx, g)
	})
}

func (s *GameService) publish(t EventType, sender string, payload any) {
	s.events.Publish(Event{Type: t, Sender: sender, Payload: payload, Time: s.now().UTC()})
}

// InitializeGame creates the global state with caller as the authority.
func (s *GameService) InitializeGame(ctx context.Context, caller, treasury, currencyMint string, params global.Params) (state *global.State, err error) {
	start := time.Now()
	defer func() { logger.LogOperation("initialize_game", caller, time.Since(start), err) }()

	err = s.store.InTx(ctx, func(ctx context.Context, tx interfaces.GameTx) error {
		g, err := global.New(caller, treasury, currencyMint, params)
		if err != nil {
			return err
		}
		if err := tx.CreateGlobal(ctx, g); err != nil {
			return err
		}
		state = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *GameService) StartGame(ctx context.Context, caller string) error {
	var startedAt int64
	err := s.withGlobal(ctx, "start_game", caller, func(g *global.State, now int64) error {
		startedAt = now
		return g.StartGame(now)
	})
	if err == nil {
		s.publish(EventGameStarted, caller, map[string]int64{"start_time": startedAt})
	}
	return err
}

func (s *GameService) SetPaused(ctx context.Context, caller string, paused bool) error {
	err := s.withGlobal(ctx, "set_paused", caller, func(g *global.State, _ int64) error {
		g.SetPaused(paused)
		return nil
	})
	if err == nil {
		if paused {
			s.publish(EventGamePaused, caller, nil)
		} else {
			s.publish(EventGameResumed, caller, nil)
		}
	}
	return err
}

func (s *GameService) SetMintingEnabled(ctx context.Context, caller string, enabled bool) error {
	err := s.withGlobal(ctx, "set_minting_enabled", caller, func(g *global.State, _ int64) error {
		g.SetMintingEnabled(enabled)
		return nil
	})
	if err == nil {
		s.publish(EventConfigUpdated, caller, map[string]bool{"minting_enabled": enabled})
	}
	return err
}

func (s *GameService) SetUpgradesEnabled(ctx context.Context, caller string, enabled bool) error {
	err := s.withGlobal(ctx, "set_upgrades_enabled", caller, func(g *global.State, _ int64) error {
		g.SetUpgradesEnabled(enabled)
		return nil
	})
	if err == nil {
		s.publish(EventConfigUpdated, caller, map[string]bool{"house_upgrades_enabled": enabled})
	}
	return err
}

func (s *GameService) SetTreasury(ctx context.Context, caller, treasury string) error {
	return s.withGlobal(ctx, "set_treasury", caller, func(g *global.State, _ int64) error {
		return g.SetTreasury(treasury)
	})
}

// UpdateConfig applies u all-or-nothing and returns the resulting parameters.
func (s *GameService) UpdateConfig(ctx context.Context, caller string, u global.ParamsUpdate) (global.Params, error) {
	var params global.Params
	err := s.withGlobal(ctx, "update_config", caller, func(g *global.State, _ int64) error {
		if err := g.UpdateParams(u); err != nil {
			return err
		}
		params = g.Params
		return nil
	})
	if err != nil {
		return global.Params{}, err
	}
	s.publish(EventConfigUpdated, caller, params)
	return params, nil
}

// PurchaseHouse creates the caller's profile.
func (s *GameService) PurchaseHouse(ctx context.Context, owner string) (p *profile.Profile, err error) {
	if owner == "" {
		return nil, economy.ErrInvalidIdentity
	}

	start := time.Now()
	defer func() { logger.LogOperation("purchase_house", owner, time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, config.OperationTimeout)
	defer cancel()

	unlock, err := s.locks.Lock(ctx, owner)
	if err != nil {
		return nil, err
	}
	defer unlock()
	defer s.invalidate(owner)

	err = s.store.InTx(ctx, func(ctx context.Context, tx interfaces.GameTx) error {
		g, err := tx.LockGlobal(ctx)
		if err != nil {
			return err
		}
		exists, err := tx.ProfileExists(ctx, owner)
		if err != nil {
			return err
		}
		if exists {
			return economy.ErrProfileAlreadyExists
		}

		created, reqs, err := profile.PurchaseHouse(g, owner, s.now().Unix())
		if err != nil {
			return err
		}
		if err := tx.CreateProfile(ctx, created); err != nil {
			return err
		}
		if err := tx.SaveGlobal(ctx, g); err != nil {
			return err
		}
		if err := tx.Enqueue(ctx, owner, "purchase_house", reqs); err != nil {
			return err
		}
		p = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(EventHousePurchased, owner, map[string]string{"owner": owner})
	return p, nil
}

func (s *GameService) SetReferrer(ctx context.Context, owner, referrer string) error {
	return s.withProfile(ctx, "set_referrer", owner, func(_ context.Context, _ interfaces.GameTx, p *profile.Profile, g *global.State, _ int64) ([]ledger.Request, error) {
		return nil, p.SetReferrer(g, referrer)
	})
}

func (s *GameService) BuyHeroes(ctx context.Context, owner string, quantity int) ([]heroes.Hero, error) {
	var minted []heroes.Hero
	err := s.withProfile(ctx, "buy_heroes", owner, func(_ context.Context, _ interfaces.GameTx, p *profile.Profile, g *global.State, now int64) ([]ledger.Request, error) {
		hs, reqs, err := p.BuyHeroes(g, quantity, now)
		if err != nil {
			return nil, err
		}
		minted = hs
		return reqs, nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(EventHeroesMinted, owner, map[string]any{"owner": owner, "count": len(minted)})
	return minted, nil
}

func (s *GameService) PlaceHero(ctx context.Context, owner string, pl house.Placement) error {
	return s.withProfile(ctx, "place_hero", owner, func(_ context.Context, _ interfaces.GameTx, p *profile.Profile, g *global.State, now int64) ([]ledger.Request, error) {
		return nil, p.PlaceHero(g, pl, now)
	})
}

func (s *GameService) BulkPlace(ctx context.Context, owner string, batch []house.Placement) error {
	return s.withProfile(ctx, "bulk_place", owner, func(_ context.Context, _ interfaces.GameTx, p *profile.Profile, g *global.State, now int64) ([]ledger.Request, error) {
		return nil, p.BulkPlace(g, batch, now)
	})
}

// RemoveHero clears the tile at (x, y) and returns the index of the hero that stood there.
func (s *GameService) RemoveHero(ctx context.Context, owner string, x, y uint8) (uint16, error) {
	var removed uint16
	err := s.withProfile(ctx, "remove_hero", owner, func(_ context.Context, _ interfaces.GameTx, p *profile.Profile, g *global.State, now int64) ([]ledger.Request, error) {
		idx, err := p.RemoveHero(g, x, y, now)
		removed = idx
		return nil, err
	})
	return removed, err
}

func (s *GameService) MoveToMining(ctx context.Context, owner string, index uint16) error {
	return s.withProfile(ctx, "move_to_mining", owner, func(_ context.Context, _ interfaces.GameTx, p *profile.Profile, g *global.State, now int64) ([]ledger.Request, error) {
		return nil, p.MoveToMining(g, index, now)
	})
}

func (s *GameService) BulkMoveToMining(ctx context.Context, owner string, indices []uint16) error {
	return s.withProfile(ctx, "bulk_move_to_mining", owner, func(_ context.Context, _ interfaces.GameTx, p *profile.Profile, g *global.State, now int64) ([]ledger.Request, error) {
		return nil, p.BulkMoveToMining(g, indices, now)
	})
}

// Claim pays out the caller's accrued rewards and records the claim.
func (s *GameService) Claim(ctx context.Context, owner string) (profile.ClaimReceipt, error) {
	var receipt profile.ClaimReceipt
	err := s.withProfile(ctx, "claim", owner, func(ctx context.Context, tx interfaces.GameTx, p *profile.Profile, g *global.State, now int64) ([]ledger.Request, error) {
		r, reqs, err := p.Claim(g, now)
		if err != nil {
			return nil, err
		}
		if err := tx.RecordClaim(ctx, r); err != nil {
			return nil, err
		}
		receipt = r
		return reqs, nil
	})
	if err != nil {
		return profile.ClaimReceipt{}, err
	}

	s.publish(EventRewardsClaimed, owner, receipt)
	if receipt.HalvingCrossed() {
		slog.Info("Halving epoch reached",
			slog.String("type", "sys"),
			slog.Uint64("epoch", receipt.EpochAfter))
		s.publish(EventHalving, owner, map[string]uint64{"epoch": receipt.EpochAfter})
	}
	return receipt, nil
}

func (s *GameService) RecoverHP(ctx context.Context, owner string) (profile.RecoveryReport, error) {
	var report profile.RecoveryReport
	err := s.withProfile(ctx, "recover_hp", owner, func(_ context.Context, _ interfaces.GameTx, p *profile.Profile, g *global.State, now int64) ([]ledger.Request, error) {
		r, err := p.RecoverHP(g, now)
		report = r
		return nil, err
	})
	return report, err
}

// UpgradeHouse returns the coins spent on the upgrade.
func (s *GameService) UpgradeHouse(ctx context.Context, owner string) (uint64, error) {
	var cost uint64
	var level uint8
	err := s.withProfile(ctx, "upgrade_house", owner, func(_ context.Context, _ interfaces.GameTx, p *profile.Profile, g *global.State, now int64) ([]ledger.Request, error) {
		c, err := p.UpgradeHouse(g, now)
		cost = c
		level = uint8(p.House.Level)
		return nil, err
	})
	if err != nil {
		return 0, err
	}
	s.publish(EventHouseUpgraded, owner, map[string]any{"owner": owner, "level": level, "cost": cost})
	return cost, nil
}

// invalidate drops owner's cached profile after a write.
func (s *GameService) invalidate(owner string) {
	s.gens.Compute(owner, func(gen uint64, _ bool) (uint64, bool) {
		s.cache.Remove(owner)
		return gen + 1, false
	})
}

// loadProfile serves views from the cache. A freshly loaded profile is only
// cached if no write for owner was invalidated while it was being read.
func (s *GameService) loadProfile(ctx context.Context, owner string) (*profile.Profile, error) {
	if owner == "" {
		return nil, economy.ErrInvalidIdentity
	}
	if v, ok := s.cache.Get(owner); ok {
		entry := v.(cachedProfile)
		if time.Since(entry.loadedAt) < config.CacheExpiration {
			p := entry.profile.Clone()
			return &p, nil
		}
		s.cache.Remove(owner)
	}

	seen, _ := s.gens.Load(owner)
	p, err := s.store.LoadProfile(ctx, owner)
	if err != nil {
		return nil, err
	}
	s.gens.Compute(owner, func(gen uint64, loaded bool) (uint64, bool) {
		if gen == seen {
			s.cache.Add(owner, cachedProfile{profile: p.Clone(), loadedAt: time.Now()})
		}
		return gen, !loaded
	})
	return p, nil
}

func (s *GameService) GameInfo(ctx context.Context) (global.Info, error) {
	g, err := s.store.LoadGlobal(ctx)
	if err != nil {
		return global.Info{}, err
	}
	return g.Info()
}

func (s *GameService) PendingRewards(ctx context.Context, owner string) (profile.Pending, error) {
	g, err := s.store.LoadGlobal(ctx)
	if err != nil {
		return profile.Pending{}, err
	}
	p, err := s.loadProfile(ctx, owner)
	if err != nil {
		return profile.Pending{}, err
	}
	return p.PendingRewards(g, s.now().Unix())
}

func (s *GameService) PlayerStats(ctx context.Context, owner string) (profile.Stats, error) {
	g, err := s.store.LoadGlobal(ctx)
	if err != nil {
		return profile.Stats{}, err
	}
	p, err := s.loadProfile(ctx, owner)
	if err != nil {
		return profile.Stats{}, err
	}
	stats, err := p.Stats(g, s.now().Unix())
	if err != nil {
		return profile.Stats{}, err
	}
	if stats.ReferralCount, err = s.store.ReferralCount(ctx, owner); err != nil {
		return profile.Stats{}, fmt.Errorf("failed to count referrals: %w", err)
	}
	return stats, nil
}

func (s *GameService) HeroDetails(ctx context.Context, owner string, index uint16) (profile.HeroDetails, error) {
	p, err := s.loadProfile(ctx, owner)
	if err != nil {
		return profile.HeroDetails{}, err
	}
	return p.HeroDetails(index, s.now().Unix())
}

func (s *GameService) GridState(ctx context.Context, owner string) (profile.GridState, error) {
	p, err := s.loadProfile(ctx, owner)
	if err != nil {
		return profile.GridState{}, err
	}
	return p.GridState()
}

func (s *GameService) ClaimHistory(ctx context.Context, owner string, limit int) ([]*models.ClaimRecord, error) {
	if owner == "" {
		return nil, economy.ErrInvalidIdentity
	}
	return s.store.ClaimHistory(ctx, owner, clampLimit(limit, config.ClaimHistoryDefault, config.ClaimHistoryMax))
}

func (s *GameService) Leaderboard(ctx context.Context, limit int) ([]*models.PlayerProfile, error) {
	return s.store.Leaderboard(ctx, clampLimit(limit, config.DefaultBatchSize, config.MaxBatchSize))
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
