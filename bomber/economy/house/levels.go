package house

import (
	"github.com/iceweasel13/solana-bomber/bomber/economy"
)

// Level is a house level, 1 through 6. Every per-level table below is a switch
// over all six levels; a level outside the table is a calculation error.
type Level uint8

const (
	MinLevel Level = 1
	MaxLevel Level = 6
)

func (l Level) Valid() bool {
	return l >= MinLevel && l <= MaxLevel
}

// Dimensions is the grid size (width, height) at this level.
func (l Level) Dimensions() (width, height uint8, err error) {
	switch l {
	case 1:
		return 4, 4, nil
	case 2:
		return 4, 6, nil
	case 3:
		return 5, 6, nil
	case 4:
		return 6, 6, nil
	case 5:
		return 6, 7, nil
	case 6:
		return 7, 7, nil
	default:
		return 0, 0, economy.ErrInvalidLevel
	}
}

// RestroomCapacity is the number of restroom tiles allowed at this level.
func (l Level) RestroomCapacity() (int, error) {
	switch l {
	case 1:
		return 4, nil
	case 2:
		return 6, nil
	case 3:
		return 8, nil
	case 4:
		return 10, nil
	case 5:
		return 12, nil
	case 6:
		return 15, nil
	default:
		return 0, economy.ErrInvalidLevel
	}
}

// RestroomMultiplier is the recovery multiplier of a restroom tile, on the
// vitality scale where 100 is 1.0x.
func (l Level) RestroomMultiplier() (uint32, error) {
	switch l {
	case 1:
		return 100, nil
	case 2:
		return 200, nil
	case 3:
		return 500, nil
	case 4:
		return 800, nil
	case 5:
		return 1100, nil
	case 6:
		return 1400, nil
	default:
		return 0, economy.ErrInvalidLevel
	}
}

// UpgradeCost is the coin price of moving from this level to the next.
func (l Level) UpgradeCost() (uint64, error) {
	switch l {
	case 1:
		return 720, nil
	case 2:
		return 2_400, nil
	case 3:
		return 5_400, nil
	case 4:
		return 9_600, nil
	case 5:
		return 15_000, nil
	case 6:
		return 0, economy.ErrMaxHouseLevelReached
	default:
		return 0, economy.ErrInvalidLevel
	}
}

// UpgradeCooldown is the wait, in seconds, between reaching this level and the
// next upgrade.
func (l Level) UpgradeCooldown() (int64, error) {
	const hour = 3600
	switch l {
	case 1:
		return 2 * hour, nil
	case 2:
		return 6 * hour, nil
	case 3:
		return 12 * hour, nil
	case 4:
		return 18 * hour, nil
	case 5:
		return 24 * hour, nil
	case 6:
		return 0, nil
	default:
		return 0, economy.ErrInvalidLevel
	}
}
