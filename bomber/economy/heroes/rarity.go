package heroes

import "fmt"

// Rarity is the hero tier rolled at generation time.
type Rarity uint8

const (
	Common Rarity = iota
	Uncommon
	Rare
	SuperRare
	Epic
	Legendary
)

// RarityRollDomain is the size of the rarity roll: rolls are uniform over [0, 1000].
const RarityRollDomain = 1001

var rarityNames = [...]string{"Common", "Uncommon", "Rare", "SuperRare", "Epic", "Legendary"}

func (r Rarity) String() string {
	if int(r) < len(rarityNames) {
		return rarityNames[r]
	}
	return fmt.Sprintf("Rarity(%d)", uint8(r))
}

func (r Rarity) MarshalText() ([]byte, error) {
	if int(r) >= len(rarityNames) {
		return nil, fmt.Errorf("unknown rarity %d", uint8(r))
	}
	return []byte(rarityNames[r]), nil
}

func (r *Rarity) UnmarshalText(text []byte) error {
	for i, name := range rarityNames {
		if name == string(text) {
			*r = Rarity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown rarity %q", text)
}

// RarityFromRoll maps a roll in [0, 1000] onto the tier table:
// 50% Common, 30% Uncommon, 15% Rare, 4% SuperRare, 0.9% Epic, 0.2% Legendary.
func RarityFromRoll(roll uint16) Rarity {
	switch {
	case roll < 500:
		return Common
	case roll < 800:
		return Uncommon
	case roll < 950:
		return Rare
	case roll < 990:
		return SuperRare
	case roll < 999:
		return Epic
	default:
		return Legendary
	}
}

// StatRange is an inclusive [Min, Max] range.
type StatRange struct {
	Min uint32
	Max uint32
}

// Pick maps v uniformly-ish onto the range.
func (s StatRange) Pick(v uint64) uint32 {
	span := uint64(s.Max-s.Min) + 1
	return s.Min + uint32(v%span)
}

func (s StatRange) Contains(v uint32) bool {
	return v >= s.Min && v <= s.Max
}

// StatTable is the declared stat ranges of one rarity tier.
type StatTable struct {
	Power     StatRange
	Speed     StatRange
	Stamina   StatRange
	BombCount StatRange
	BombRange StatRange
}

// Stats returns the stat ranges for the tier.
func (r Rarity) Stats() StatTable {
	switch r {
	case Common:
		return StatTable{Power: StatRange{1, 3}, Speed: StatRange{1, 2}, Stamina: StatRange{3, 5}, BombCount: StatRange{1, 1}, BombRange: StatRange{1, 2}}
	case Uncommon:
		return StatTable{Power: StatRange{3, 5}, Speed: StatRange{2, 3}, Stamina: StatRange{5, 8}, BombCount: StatRange{1, 2}, BombRange: StatRange{2, 3}}
	case Rare:
		return StatTable{Power: StatRange{5, 8}, Speed: StatRange{3, 5}, Stamina: StatRange{8, 12}, BombCount: StatRange{2, 2}, BombRange: StatRange{3, 4}}
	case SuperRare:
		return StatTable{Power: StatRange{8, 12}, Speed: StatRange{5, 7}, Stamina: StatRange{12, 18}, BombCount: StatRange{2, 3}, BombRange: StatRange{4, 5}}
	case Epic:
		return StatTable{Power: StatRange{12, 18}, Speed: StatRange{7, 10}, Stamina: StatRange{18, 25}, BombCount: StatRange{3, 3}, BombRange: StatRange{5, 6}}
	default:
		return StatTable{Power: StatRange{18, 25}, Speed: StatRange{10, 15}, Stamina: StatRange{25, 35}, BombCount: StatRange{3, 4}, BombRange: StatRange{6, 8}}
	}
}

// HPMultiplier scales the stat sum into max hp.
func (r Rarity) HPMultiplier() uint32 {
	switch r {
	case Common:
		return 2
	case Uncommon, Rare:
		return 3
	case SuperRare, Epic:
		return 4
	default:
		return 5
	}
}
