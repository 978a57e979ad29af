// Package house owns a player's grid: which hero rests on which tile, which
// tiles are restrooms, and the house level that bounds both.
package house

import (
	"slices"

	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/utils"
	"github.com/iceweasel13/solana-bomber/bomber/economy/vitality"
)

// Tile is an occupied grid position. Empty positions are not stored.
type Tile struct {
	X          uint8  `json:"x"`
	Y          uint8  `json:"y"`
	HeroIndex  uint16 `json:"hero_index"`
	IsRestroom bool   `json:"is_restroom"`
}

// Placement asks for a hero to occupy (X, Y).
type Placement struct {
	HeroIndex  uint16 `json:"hero_index"`
	X          uint8  `json:"x"`
	Y          uint8  `json:"y"`
	IsRestroom bool   `json:"is_restroom"`
}

type House struct {
	Level           Level  `json:"level"`
	Tiles           []Tile `json:"tiles"`
	LastUpgradeTime int64  `json:"last_upgrade_time"`
}

// New returns a level 1 house with an empty grid.
func New() House {
	return House{Level: MinLevel, Tiles: []Tile{}}
}

func (h House) Clone() House {
	h.Tiles = slices.Clone(h.Tiles)
	if h.Tiles == nil {
		h.Tiles = []Tile{}
	}
	return h
}

func (h House) TileAt(x, y uint8) (Tile, bool) {
	for _, t := range h.Tiles {
		if t.X == x && t.Y == y {
			return t, true
		}
	}
	return Tile{}, false
}

func (h House) TileOf(heroIndex uint16) (Tile, bool) {
	for _, t := range h.Tiles {
		if t.HeroIndex == heroIndex {
			return t, true
		}
	}
	return Tile{}, false
}

func (h House) RestroomsUsed() int {
	n := 0
	for _, t := range h.Tiles {
		if t.IsRestroom {
			n++
		}
	}
	return n
}

// Multiplier is the recovery multiplier for a hero resting on t.
func (h House) Multiplier(t Tile) (uint32, error) {
	if !t.IsRestroom {
		return vitality.BenchMultiplier, nil
	}
	return h.Level.RestroomMultiplier()
}

func (h House) validate(p Placement, heroCount, restrooms int) error {
	if int(p.HeroIndex) >= heroCount {
		return economy.ErrInvalidHeroIndex
	}
	width, height, err := h.Level.Dimensions()
	if err != nil {
		return err
	}
	if p.X >= width || p.Y >= height {
		return economy.ErrInvalidGridCoordinates
	}
	if _, ok := h.TileAt(p.X, p.Y); ok {
		return economy.ErrGridPositionOccupied
	}
	if _, ok := h.TileOf(p.HeroIndex); ok {
		return economy.ErrHeroAlreadyPlaced
	}
	if p.IsRestroom {
		capacity, err := h.Level.RestroomCapacity()
		if err != nil {
			return err
		}
		if restrooms >= capacity {
			return economy.ErrRestroomFull
		}
	}
	return nil
}

// Place puts one hero on the grid. heroCount is the owner's inventory size.
func (h *House) Place(p Placement, heroCount int) error {
	if err := h.validate(p, heroCount, h.RestroomsUsed()); err != nil {
		return err
	}
	h.Tiles = append(h.Tiles, Tile{X: p.X, Y: p.Y, HeroIndex: p.HeroIndex, IsRestroom: p.IsRestroom})
	return nil
}

// PlaceAll validates every placement against the current grid and against
// each other before inserting any of them. On error the grid is unchanged.
func (h *House) PlaceAll(ps []Placement, heroCount int) error {
	if len(ps) == 0 {
		return economy.ErrEmptyBatch
	}

	type coord struct{ x, y uint8 }
	seenTiles := make(map[coord]struct{}, len(ps))
	seenHeroes := make(map[uint16]struct{}, len(ps))
	restrooms := h.RestroomsUsed()

	for i, p := range ps {
		if err := h.validate(p, heroCount, restrooms); err != nil {
			return economy.Wrap(asGameError(err), "placement %d", i)
		}
		if _, dup := seenTiles[coord{p.X, p.Y}]; dup {
			return economy.Wrap(economy.ErrDuplicatePlacement, "placement %d", i)
		}
		if _, dup := seenHeroes[p.HeroIndex]; dup {
			return economy.Wrap(economy.ErrDuplicatePlacement, "placement %d", i)
		}
		seenTiles[coord{p.X, p.Y}] = struct{}{}
		seenHeroes[p.HeroIndex] = struct{}{}
		if p.IsRestroom {
			restrooms++
		}
	}

	for _, p := range ps {
		h.Tiles = append(h.Tiles, Tile{X: p.X, Y: p.Y, HeroIndex: p.HeroIndex, IsRestroom: p.IsRestroom})
	}
	return nil
}

// Remove clears (x, y) and returns the hero that was there.
func (h *House) Remove(x, y uint8) (Tile, error) {
	width, height, err := h.Level.Dimensions()
	if err != nil {
		return Tile{}, err
	}
	if x >= width || y >= height {
		return Tile{}, economy.ErrInvalidGridCoordinates
	}
	for i, t := range h.Tiles {
		if t.X == x && t.Y == y {
			h.Tiles = slices.Delete(h.Tiles, i, i+1)
			return t, nil
		}
	}
	return Tile{}, economy.ErrGridPositionEmpty
}

// Evict removes the hero's tile, if it has one.
func (h *House) Evict(heroIndex uint16) (Tile, bool) {
	for i, t := range h.Tiles {
		if t.HeroIndex == heroIndex {
			h.Tiles = slices.Delete(h.Tiles, i, i+1)
			return t, true
		}
	}
	return Tile{}, false
}

// CooldownRemaining is the seconds left before the next upgrade is allowed.
// A house that was never upgraded has no cooldown.
func (h House) CooldownRemaining(now int64) (int64, error) {
	if h.LastUpgradeTime <= 0 {
		return 0, nil
	}
	cooldown, err := h.Level.UpgradeCooldown()
	if err != nil {
		return 0, err
	}
	elapsed := int64(utils.Elapsed(now, h.LastUpgradeTime))
	if elapsed >= cooldown {
		return 0, nil
	}
	return cooldown - elapsed, nil
}

// UpgradeCost checks every upgrade precondition against balance and returns
// the price without changing the house.
func (h House) UpgradeCost(now int64, balance uint64) (uint64, error) {
	if h.Level >= MaxLevel {
		return 0, economy.ErrMaxHouseLevelReached
	}
	cost, err := h.Level.UpgradeCost()
	if err != nil {
		return 0, err
	}
	remaining, err := h.CooldownRemaining(now)
	if err != nil {
		return 0, err
	}
	if remaining > 0 {
		return 0, economy.ErrUpgradeCooldownActive
	}
	if balance < cost {
		return 0, economy.ErrInsufficientCoins
	}
	return cost, nil
}

// Upgrade raises the level by one and returns the cost the caller must deduct.
func (h *House) Upgrade(now int64, balance uint64) (uint64, error) {
	cost, err := h.UpgradeCost(now, balance)
	if err != nil {
		return 0, err
	}
	h.Level++
	h.LastUpgradeTime = now
	return cost, nil
}

func asGameError(err error) *economy.GameError {
	if ge, ok := economy.AsGameError(err); ok {
		return ge
	}
	return economy.ErrInvalidCalculation
}
