package profile

import (
	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
	"github.com/iceweasel13/solana-bomber/bomber/economy/heroes"
	"github.com/iceweasel13/solana-bomber/bomber/economy/house"
	"github.com/iceweasel13/solana-bomber/bomber/economy/mining"
)

// Stats is the player summary view.
type Stats struct {
	Owner                    string  `json:"owner"`
	HouseLevel               uint8   `json:"house_level"`
	GridWidth                uint8   `json:"grid_width"`
	GridHeight               uint8   `json:"grid_height"`
	CoinBalance              uint64  `json:"coin_balance"`
	PlayerPower              uint64  `json:"player_power"`
	TotalHeroes              int     `json:"total_heroes"`
	HeroesOnMap              int     `json:"heroes_on_map"`
	HeroesOnBench            int     `json:"heroes_on_bench"`
	HeroesInRestroom         int     `json:"heroes_in_restroom"`
	HeroesIdle               int     `json:"heroes_idle"`
	SleepingHeroes           int     `json:"sleeping_heroes"`
	MapCapacity              int     `json:"map_capacity"`
	RestroomCapacity         int     `json:"restroom_capacity"`
	UpgradeCost              *uint64 `json:"upgrade_cost,omitempty"`
	UpgradeCooldownRemaining int64   `json:"upgrade_cooldown_remaining"`
	CanUpgrade               bool    `json:"can_upgrade"`
	Referrer                 string  `json:"referrer,omitempty"`
	ReferralBonusPaid        uint64  `json:"referral_bonus_paid"`
	ReferralCount            int     `json:"referral_count"`
	LastClaimTime            int64   `json:"last_claim_time"`
}

// Stats builds the summary at now. Sleeping counts use estimated hp.
// ReferralCount is filled in by the caller, which can see other profiles.
func (p *Profile) Stats(g *global.State, now int64) (Stats, error) {
	width, height, err := p.House.Level.Dimensions()
	if err != nil {
		return Stats{}, err
	}
	restrooms, err := p.House.Level.RestroomCapacity()
	if err != nil {
		return Stats{}, err
	}
	cooldown, err := p.House.CooldownRemaining(now)
	if err != nil {
		return Stats{}, err
	}

	s := Stats{
		Owner:                    p.Owner,
		HouseLevel:               uint8(p.House.Level),
		GridWidth:                width,
		GridHeight:               height,
		CoinBalance:              p.CoinBalance,
		PlayerPower:              p.PlayerPower,
		TotalHeroes:              len(p.Inventory),
		MapCapacity:              mining.MaxMapHeroes,
		RestroomCapacity:         restrooms,
		UpgradeCooldownRemaining: cooldown,
		Referrer:                 p.Referrer,
		ReferralBonusPaid:        p.ReferralBonusPaid,
		LastClaimTime:            p.LastClaimTime,
	}

	if p.House.Level < house.MaxLevel {
		cost, err := p.House.Level.UpgradeCost()
		if err != nil {
			return Stats{}, err
		}
		s.UpgradeCost = &cost
		_, err = p.House.UpgradeCost(now, p.CoinBalance)
		s.CanUpgrade = err == nil && g.UpgradesEnabled
	}

	for i := range p.Inventory {
		idx := uint16(i)
		switch loc, _ := p.locate(idx); loc {
		case LocationMining:
			s.HeroesOnMap++
		case LocationBench:
			s.HeroesOnBench++
		case LocationRestroom:
			s.HeroesInRestroom++
		default:
			s.HeroesIdle++
		}
		h, err := p.estimate(idx, now)
		if err != nil {
			return Stats{}, err
		}
		if h.IsSleeping() {
			s.SleepingHeroes++
		}
	}
	return s, nil
}

// estimate returns a copy of the hero as it would be if settled at now.
func (p *Profile) estimate(index uint16, now int64) (heroes.Hero, error) {
	h, err := p.hero(index)
	if err != nil {
		return heroes.Hero{}, err
	}
	est := *h
	if err := p.advance(&est, index, now); err != nil {
		return heroes.Hero{}, err
	}
	return est, nil
}

// HeroDetails is the per-hero view.
type HeroDetails struct {
	Index       uint16      `json:"index"`
	Hero        heroes.Hero `json:"hero"`
	EstimatedHP uint32      `json:"estimated_hp"`
	MiningPower uint64      `json:"mining_power"`
	Location    Location    `json:"location"`
	X           *uint8      `json:"x,omitempty"`
	Y           *uint8      `json:"y,omitempty"`
}

func (p *Profile) HeroDetails(index uint16, now int64) (HeroDetails, error) {
	h, err := p.hero(index)
	if err != nil {
		return HeroDetails{}, err
	}
	estimated, err := p.estimate(index, now)
	if err != nil {
		return HeroDetails{}, err
	}
	d := HeroDetails{
		Index:       index,
		Hero:        *h,
		EstimatedHP: estimated.HP,
		MiningPower: h.MiningPower(),
	}
	loc, tile := p.locate(index)
	d.Location = loc
	if loc == LocationBench || loc == LocationRestroom {
		x, y := tile.X, tile.Y
		d.X, d.Y = &x, &y
	}
	return d, nil
}

// Cell is one grid position in the grid view.
type Cell struct {
	X          uint8   `json:"x"`
	Y          uint8   `json:"y"`
	HeroIndex  *uint16 `json:"hero_index,omitempty"`
	IsRestroom bool    `json:"is_restroom"`
}

// GridState is the full grid, row-major.
type GridState struct {
	Level         uint8  `json:"level"`
	Width         uint8  `json:"width"`
	Height        uint8  `json:"height"`
	RestroomsUsed int    `json:"restrooms_used"`
	Cells         []Cell `json:"cells"`
}

func (p *Profile) GridState() (GridState, error) {
	width, height, err := p.House.Level.Dimensions()
	if err != nil {
		return GridState{}, err
	}
	gs := GridState{
		Level:         uint8(p.House.Level),
		Width:         width,
		Height:        height,
		RestroomsUsed: p.House.RestroomsUsed(),
		Cells:         make([]Cell, 0, int(width)*int(height)),
	}
	for y := uint8(0); y < height; y++ {
		for x := uint8(0); x < width; x++ {
			c := Cell{X: x, Y: y}
			if t, ok := p.House.TileAt(x, y); ok {
				idx := t.HeroIndex
				c.HeroIndex = &idx
				c.IsRestroom = t.IsRestroom
			}
			gs.Cells = append(gs.Cells, c)
		}
	}
	return gs, nil
}
