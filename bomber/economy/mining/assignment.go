package mining

import (
	"slices"

	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/heroes"
	"github.com/iceweasel13/solana-bomber/bomber/economy/utils"
)

// MaxMapHeroes is the mining map capacity.
const MaxMapHeroes = 15

// Assignment is the ordered set of inventory indices currently mining.
type Assignment []uint16

func (a Assignment) Clone() Assignment {
	c := slices.Clone(a)
	if c == nil {
		c = Assignment{}
	}
	return c
}

func (a Assignment) Contains(index uint16) bool {
	return slices.Contains(a, index)
}

// CheckMove validates moving roster[index] onto a map holding a.
func (a Assignment) CheckMove(roster []heroes.Hero, index uint16) error {
	if int(index) >= len(roster) {
		return economy.ErrInvalidHeroIndex
	}
	if a.Contains(index) {
		return economy.ErrHeroAlreadyOnMap
	}
	if len(a) >= MaxMapHeroes {
		return economy.ErrMapFull
	}
	if roster[index].IsSleeping() {
		return economy.ErrHeroIsSleeping
	}
	return nil
}

func (a *Assignment) Add(roster []heroes.Hero, index uint16) error {
	if err := a.CheckMove(roster, index); err != nil {
		return err
	}
	*a = append(*a, index)
	return nil
}

// Remove drops index and reports whether it was assigned.
func (a *Assignment) Remove(index uint16) bool {
	i := slices.Index(*a, index)
	if i < 0 {
		return false
	}
	*a = slices.Delete(*a, i, i+1)
	return true
}

// TotalPower sums the mining power of every assigned hero that is awake.
func (a Assignment) TotalPower(roster []heroes.Hero) uint64 {
	var total uint64
	for _, idx := range a {
		if int(idx) < len(roster) && !roster[idx].IsSleeping() {
			total = utils.SaturatingAdd(total, roster[idx].MiningPower())
		}
	}
	return total
}
