package mining

import (
	"slices"

	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/heroes"
	"github.com/iceweasel13/solana-bomber/bomber/economy/utils"
	"github.com/iceweasel13/solana-bomber/bomber/economy/vitality"
)

// ClaimInput is everything a claim depends on. Nothing else is read.
type ClaimInput struct {
	Roster      []heroes.Hero
	Map         Assignment
	Now         int64
	Rate        uint64
	Precision   uint64
	BurnBps     uint16
	ReferralBps uint16
}

// ClaimPlan is the outcome of a claim before it is applied.
type ClaimPlan struct {
	// Roster is a copy of the input roster with drain applied and every mining
	// hero restamped to Now.
	Roster       []heroes.Hero
	Elapsed      uint64
	TotalPower   uint64
	ActiveHeroes int
	Gross        uint64
	Burn         uint64
	Referral     uint64
	Net          uint64
}

// PlanClaim runs the claim computation without touching its input.
//
// Every assigned hero is drained for its own elapsed time; the billing window
// runs from the earliest last action among assigned heroes; power counts only
// heroes still awake after the drain.
func PlanClaim(in ClaimInput) (ClaimPlan, error) {
	if len(in.Map) == 0 {
		return ClaimPlan{}, economy.ErrNoHeroesOnMap
	}

	roster := slices.Clone(in.Roster)
	earliest := in.Now
	var total uint64
	active := 0

	for _, idx := range in.Map {
		if int(idx) >= len(roster) {
			return ClaimPlan{}, economy.ErrInvalidHeroIndex
		}
		h := &roster[idx]
		if h.LastActionTime < earliest {
			earliest = h.LastActionTime
		}
		vitality.ApplyDrain(h, utils.Elapsed(in.Now, h.LastActionTime))
		if !h.IsSleeping() {
			var err error
			if total, err = utils.Add(total, h.MiningPower()); err != nil {
				return ClaimPlan{}, err
			}
			active++
		}
		h.LastActionTime = in.Now
	}

	if total == 0 {
		return ClaimPlan{}, economy.ErrNoActiveHeroes
	}

	elapsed := utils.Elapsed(in.Now, earliest)
	gross, err := GrossReward(elapsed, total, in.Rate, in.Precision)
	if err != nil {
		return ClaimPlan{}, err
	}
	if gross == 0 {
		return ClaimPlan{}, economy.ErrNoRewardsToClaim
	}

	burn, _, err := BurnSplit(gross, in.BurnBps)
	if err != nil {
		return ClaimPlan{}, err
	}
	referral, err := ReferralBonus(gross, in.ReferralBps)
	if err != nil {
		return ClaimPlan{}, err
	}

	return ClaimPlan{
		Roster:       roster,
		Elapsed:      elapsed,
		TotalPower:   total,
		ActiveHeroes: active,
		Gross:        gross,
		Burn:         burn,
		Referral:     referral,
		Net:          gross - referral,
	}, nil
}
