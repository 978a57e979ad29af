package heroes

// Hero is one generated entity. Everything except HP and LastActionTime is
// fixed at generation.
type Hero struct {
	ID             uint16 `json:"id"`
	Rarity         Rarity `json:"rarity"`
	SkinID         uint8  `json:"skin_id"`
	Power          uint32 `json:"power"`
	Speed          uint32 `json:"speed"`
	Stamina        uint32 `json:"stamina"`
	MaxStamina     uint32 `json:"max_stamina"`
	BombCount      uint8  `json:"bomb_count"`
	BombRange      uint8  `json:"bomb_range"`
	HP             uint32 `json:"hp"`
	MaxHP          uint32 `json:"max_hp"`
	LastActionTime int64  `json:"last_action_time"`
}

// MiningPower is power*bomb_count + bomb_range*0.5 + speed*2, truncated to an
// integer. bomb_range/2 is exactly the truncated half because the other terms
// are whole.
func (h Hero) MiningPower() uint64 {
	return uint64(h.Power)*uint64(h.BombCount) + uint64(h.BombRange)/2 + uint64(h.Speed)*2
}

func (h Hero) IsSleeping() bool {
	return h.HP == 0
}
