// Package vitality computes hp drain while mining and hp recovery while resting.
// All functions are pure: the result depends only on the hero and the elapsed
// seconds, so repeated application over split intervals never gains value.
package vitality

import (
	"github.com/iceweasel13/solana-bomber/bomber/economy/heroes"
	"github.com/iceweasel13/solana-bomber/bomber/economy/utils"
)

const (
	DrainIntervalSeconds    = 60
	RecoveryIntervalSeconds = 120

	// MultiplierScale is 1.0x. Location multipliers are expressed on this scale,
	// so 300 is a 3.0x restroom.
	MultiplierScale = 100

	BenchMultiplier = MultiplierScale
)

// Drain is the hp lost after elapsed seconds of mining: one speed's worth per full minute.
func Drain(h heroes.Hero, elapsed uint64) uint32 {
	minutes := elapsed / DrainIntervalSeconds
	return utils.ClampUint32(utils.SaturatingMul(minutes, uint64(h.Speed)))
}

// Recover is the hp regained after elapsed seconds of rest at the given
// location multiplier: stamina per full two minutes, scaled.
func Recover(h heroes.Hero, elapsed uint64, multiplier uint32) uint32 {
	ticks := elapsed / RecoveryIntervalSeconds
	base := utils.SaturatingMul(ticks, uint64(h.Stamina))
	scaled := utils.SaturatingMul(base, uint64(multiplier)) / MultiplierScale
	return utils.ClampUint32(scaled)
}

// ApplyDrain lowers hp, flooring at zero, and returns the hp actually lost.
func ApplyDrain(h *heroes.Hero, elapsed uint64) uint32 {
	loss := min(Drain(*h, elapsed), h.HP)
	h.HP -= loss
	return loss
}

// ApplyRecovery raises hp, capping at max hp, and returns the hp actually gained.
func ApplyRecovery(h *heroes.Hero, elapsed uint64, multiplier uint32) uint32 {
	if h.HP >= h.MaxHP {
		return 0
	}
	gain := min(Recover(*h, elapsed, multiplier), h.MaxHP-h.HP)
	h.HP += gain
	return gain
}

// Settle applies the pending drain or recovery since the hero's last action and
// restamps it to now. mining selects drain; otherwise recovery at multiplier.
func Settle(h *heroes.Hero, now int64, mining bool, multiplier uint32) {
	elapsed := utils.Elapsed(now, h.LastActionTime)
	if mining {
		ApplyDrain(h, elapsed)
	} else {
		ApplyRecovery(h, elapsed, multiplier)
	}
	if now > h.LastActionTime {
		h.LastActionTime = now
	}
}
