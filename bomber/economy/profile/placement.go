package profile

import (
	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
	"github.com/iceweasel13/solana-bomber/bomber/economy/house"
)

// takeOffMap settles a mining hero's drain and removes it from the map.
func (p *Profile) takeOffMap(index uint16, now int64) error {
	if !p.Map.Contains(index) {
		return nil
	}
	if err := p.settle(index, now); err != nil {
		return err
	}
	p.Map.Remove(index)
	return nil
}

// PlaceHero puts a hero on a grid tile. A hero coming off the mining map has
// its drain settled first.
func (p *Profile) PlaceHero(g *global.State, pl house.Placement, now int64) error {
	return p.stage(g, func(p *Profile, g *global.State) error {
		if err := g.RequireActive(); err != nil {
			return err
		}
		if err := p.House.Place(pl, len(p.Inventory)); err != nil {
			return err
		}
		if err := p.takeOffMap(pl.HeroIndex, now); err != nil {
			return err
		}
		p.Inventory[pl.HeroIndex].LastActionTime = now
		p.refreshPower(g)
		return nil
	})
}

// BulkPlace places every hero in the batch or none of them.
func (p *Profile) BulkPlace(g *global.State, batch []house.Placement, now int64) error {
	return p.stage(g, func(p *Profile, g *global.State) error {
		if err := g.RequireActive(); err != nil {
			return err
		}
		if err := p.House.PlaceAll(batch, len(p.Inventory)); err != nil {
			return err
		}
		for _, pl := range batch {
			if err := p.takeOffMap(pl.HeroIndex, now); err != nil {
				return err
			}
			p.Inventory[pl.HeroIndex].LastActionTime = now
		}
		p.refreshPower(g)
		return nil
	})
}

// RemoveHero clears a grid tile. The hero keeps the recovery it earned there
// and becomes idle.
func (p *Profile) RemoveHero(g *global.State, x, y uint8, now int64) (uint16, error) {
	var removed uint16
	err := p.stage(g, func(p *Profile, g *global.State) error {
		if err := g.RequireActive(); err != nil {
			return err
		}
		tile, ok := p.House.TileAt(x, y)
		if ok {
			if err := p.settle(tile.HeroIndex, now); err != nil {
				return err
			}
		}
		tile, err := p.House.Remove(x, y)
		if err != nil {
			return err
		}
		removed = tile.HeroIndex
		return nil
	})
	return removed, err
}

// MoveToMining assigns a hero to the mining map. A hero leaving a grid tile has
// its recovery settled first, so a rested hero is no longer asleep.
func (p *Profile) MoveToMining(g *global.State, index uint16, now int64) error {
	return p.stage(g, func(p *Profile, g *global.State) error {
		if err := g.RequireActive(); err != nil {
			return err
		}
		if err := p.moveToMining(index, now); err != nil {
			return err
		}
		p.refreshPower(g)
		return nil
	})
}

// BulkMoveToMining assigns every hero in the batch or none of them.
func (p *Profile) BulkMoveToMining(g *global.State, indices []uint16, now int64) error {
	return p.stage(g, func(p *Profile, g *global.State) error {
		if err := g.RequireActive(); err != nil {
			return err
		}
		if len(indices) == 0 {
			return economy.ErrEmptyBatch
		}
		seen := make(map[uint16]struct{}, len(indices))
		for i, idx := range indices {
			if _, dup := seen[idx]; dup {
				return economy.Wrap(economy.ErrDuplicatePlacement, "hero %d", idx)
			}
			seen[idx] = struct{}{}
			if err := p.moveToMining(idx, now); err != nil {
				return economy.Wrap(asGameError(err), "move %d", i)
			}
		}
		p.refreshPower(g)
		return nil
	})
}

func (p *Profile) moveToMining(index uint16, now int64) error {
	if _, err := p.hero(index); err != nil {
		return err
	}
	if p.Map.Contains(index) {
		return economy.ErrHeroAlreadyOnMap
	}
	if err := p.settle(index, now); err != nil {
		return err
	}
	p.House.Evict(index)
	return p.Map.Add(p.Inventory, index)
}

func asGameError(err error) *economy.GameError {
	if ge, ok := economy.AsGameError(err); ok {
		return ge
	}
	return economy.ErrInvalidCalculation
}
