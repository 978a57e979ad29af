// Package mining holds the issuance schedule and the pure claim computation.
package mining

import (
	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/utils"
)

// CurrentRate is initial >> floor(totalMined / interval). Sixty-four or more
// halvings leave nothing.
func CurrentRate(initial, totalMined, interval uint64) (uint64, error) {
	if interval == 0 {
		return 0, economy.ErrInvalidHalvingInterval
	}
	halvings := totalMined / interval
	if halvings >= 64 {
		return 0, nil
	}
	return initial >> halvings, nil
}

// HalvingEpoch is the number of halvings that have happened.
func HalvingEpoch(totalMined, interval uint64) (uint64, error) {
	if interval == 0 {
		return 0, economy.ErrInvalidHalvingInterval
	}
	return totalMined / interval, nil
}

// UntilNextHalving is the mined amount left before the rate halves again.
func UntilNextHalving(totalMined, interval uint64) (uint64, error) {
	if interval == 0 {
		return 0, economy.ErrInvalidHalvingInterval
	}
	return interval - totalMined%interval, nil
}

// BurnSplit divides amount into the burned share and the remainder.
func BurnSplit(amount uint64, burnBps uint16) (burn, remainder uint64, err error) {
	if burnBps > utils.BasisPoints {
		return 0, 0, economy.ErrInvalidBurnPercentage
	}
	if burn, err = utils.MulDiv(amount, uint64(burnBps), utils.BasisPoints); err != nil {
		return 0, 0, err
	}
	return burn, amount - burn, nil
}

// ReferralBonus is amount * feeBps / 10000, truncated.
func ReferralBonus(amount uint64, feeBps uint16) (uint64, error) {
	if feeBps > utils.BasisPoints {
		return 0, economy.ErrInvalidReferralFee
	}
	return utils.MulDiv(amount, uint64(feeBps), utils.BasisPoints)
}

// GrossReward is elapsed hours * power * rate, accrued per second and
// truncated, then scaled by precision.
func GrossReward(elapsedSeconds, power, rate, precision uint64) (uint64, error) {
	if precision == 0 {
		return 0, economy.ErrInvalidRewardsPrecision
	}
	powerSeconds, err := utils.Mul(elapsedSeconds, power)
	if err != nil {
		return 0, err
	}
	reward, err := utils.MulDiv(powerSeconds, rate, utils.SecondsPerHour)
	if err != nil {
		return 0, err
	}
	return utils.Mul(reward, precision)
}
