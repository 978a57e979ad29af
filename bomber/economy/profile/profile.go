// Package profile runs player operations. Each operation takes the player's
// profile and the global state, validates everything, and either applies all
// of its changes to both or none of them.
package profile

import (
	"math"
	"slices"

	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
	"github.com/iceweasel13/solana-bomber/bomber/economy/heroes"
	"github.com/iceweasel13/solana-bomber/bomber/economy/house"
	"github.com/iceweasel13/solana-bomber/bomber/economy/ledger"
	"github.com/iceweasel13/solana-bomber/bomber/economy/mining"
	"github.com/iceweasel13/solana-bomber/bomber/economy/utils"
	"github.com/iceweasel13/solana-bomber/bomber/economy/vitality"
)

// MaxInventory bounds the roster so every index fits a uint16.
const MaxInventory = math.MaxUint16

// Profile is one player's complete state.
type Profile struct {
	Owner             string            `json:"owner"`
	House             house.House       `json:"house"`
	Inventory         []heroes.Hero     `json:"inventory"`
	Map               mining.Assignment `json:"mining_map"`
	CoinBalance       uint64            `json:"coin_balance"`
	PlayerPower       uint64            `json:"player_power"`
	Referrer          string            `json:"referrer,omitempty"`
	ReferralBonusPaid uint64            `json:"referral_bonus_paid"`
	LastClaimTime     int64             `json:"last_claim_time"`
	CreatedAt         int64             `json:"created_at"`
}

func (p Profile) Clone() Profile {
	p.House = p.House.Clone()
	p.Inventory = slices.Clone(p.Inventory)
	if p.Inventory == nil {
		p.Inventory = []heroes.Hero{}
	}
	p.Map = p.Map.Clone()
	return p
}

// PurchaseHouse creates the owner's profile and requests the entry fee
// transfer to the treasury.
func PurchaseHouse(g *global.State, owner string, now int64) (*Profile, []ledger.Request, error) {
	if owner == "" {
		return nil, nil, economy.ErrInvalidIdentity
	}
	if err := g.RequireStarted(); err != nil {
		return nil, nil, err
	}

	if err := g.AddHouse(); err != nil {
		return nil, nil, err
	}

	p := &Profile{
		Owner:     owner,
		House:     house.New(),
		Inventory: []heroes.Hero{},
		Map:       mining.Assignment{},
		CreatedAt: now,
	}
	var reqs []ledger.Request
	if price := g.Params.InitialHousePrice; price > 0 {
		reqs = append(reqs, ledger.TransferNative(owner, g.Treasury, price))
	}
	return p, reqs, nil
}

// stage runs fn on draft copies of p and g and commits both only on success.
func (p *Profile) stage(g *global.State, fn func(p *Profile, g *global.State) error) error {
	type world struct {
		profile Profile
		global  global.State
	}
	w := world{profile: *p, global: *g}
	clone := func(w world) world {
		w.profile = w.profile.Clone()
		return w
	}
	if err := utils.Stage(&w, clone, func(d *world) error { return fn(&d.profile, &d.global) }); err != nil {
		return err
	}
	*p, *g = w.profile, w.global
	return nil
}

// refreshPower recomputes the cached mining power and moves the global hash
// power with it.
func (p *Profile) refreshPower(g *global.State) {
	power := p.Map.TotalPower(p.Inventory)
	g.AdjustHashPower(p.PlayerPower, power)
	p.PlayerPower = power
}

func (p *Profile) hero(index uint16) (*heroes.Hero, error) {
	if int(index) >= len(p.Inventory) {
		return nil, economy.ErrInvalidHeroIndex
	}
	return &p.Inventory[index], nil
}

// Location is where a hero currently is.
type Location string

const (
	LocationIdle     Location = "idle"
	LocationBench    Location = "bench"
	LocationRestroom Location = "restroom"
	LocationMining   Location = "mining"
)

func (p *Profile) locate(index uint16) (Location, house.Tile) {
	if p.Map.Contains(index) {
		return LocationMining, house.Tile{}
	}
	if t, ok := p.House.TileOf(index); ok {
		if t.IsRestroom {
			return LocationRestroom, t
		}
		return LocationBench, t
	}
	return LocationIdle, house.Tile{}
}

// settle applies the hero's pending drain or recovery for its current location
// and restamps it to now.
func (p *Profile) settle(index uint16, now int64) error {
	h, err := p.hero(index)
	if err != nil {
		return err
	}
	return p.advance(h, index, now)
}

// advance moves h, the hero at index, forward to now.
func (p *Profile) advance(h *heroes.Hero, index uint16, now int64) error {
	loc, tile := p.locate(index)
	switch loc {
	case LocationMining:
		vitality.Settle(h, now, true, 0)
	case LocationBench, LocationRestroom:
		m, err := p.House.Multiplier(tile)
		if err != nil {
			return err
		}
		vitality.Settle(h, now, false, m)
	default:
		h.LastActionTime = max(h.LastActionTime, now)
	}
	return nil
}

// SetReferrer records who referred this player. It can be set once.
func (p *Profile) SetReferrer(g *global.State, referrer string) error {
	if err := g.RequireActive(); err != nil {
		return err
	}
	if referrer == "" {
		return economy.ErrInvalidIdentity
	}
	if referrer == p.Owner {
		return economy.ErrCannotReferSelf
	}
	if p.Referrer != "" {
		return economy.ErrReferrerAlreadySet
	}
	p.Referrer = referrer
	return nil
}

// BuyHeroes spends coins on quantity freshly generated heroes. The spent coins
// are split between the burn counter and the reward pool.
func (p *Profile) BuyHeroes(g *global.State, quantity int, now int64) ([]heroes.Hero, []ledger.Request, error) {
	var bought []heroes.Hero
	var reqs []ledger.Request

	err := p.stage(g, func(p *Profile, g *global.State) error {
		if err := g.RequireActive(); err != nil {
			return err
		}
		if !g.MintingEnabled {
			return economy.ErrMintingDisabled
		}
		if quantity < utils.MinHeroPurchase || quantity > utils.MaxHeroPurchase {
			return economy.ErrInvalidHeroQuantity
		}
		if len(p.Inventory)+quantity > MaxInventory {
			return economy.ErrInventoryFull
		}

		cost, err := utils.Mul(utils.HeroPrice, uint64(quantity))
		if err != nil {
			return err
		}
		if p.CoinBalance < cost {
			return economy.ErrInsufficientCoins
		}
		p.CoinBalance -= cost

		burn, err := g.RecordSpend(cost)
		if err != nil {
			return err
		}

		bought = make([]heroes.Hero, 0, quantity)
		for i := 0; i < quantity; i++ {
			seq, err := g.NextHeroSequence()
			if err != nil {
				return err
			}
			h, err := heroes.Generate(uint16(len(p.Inventory)), now, seq, p.Owner)
			if err != nil {
				return err
			}
			p.Inventory = append(p.Inventory, h)
			bought = append(bought, h)
		}

		if burn > 0 {
			reqs = append(reqs, ledger.Burn(burn))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return bought, reqs, nil
}
