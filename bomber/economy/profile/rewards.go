package profile

import (
	"errors"

	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
	"github.com/iceweasel13/solana-bomber/bomber/economy/ledger"
	"github.com/iceweasel13/solana-bomber/bomber/economy/mining"
	"github.com/iceweasel13/solana-bomber/bomber/economy/utils"
	"github.com/iceweasel13/solana-bomber/bomber/economy/vitality"
)

// ClaimReceipt describes a committed claim.
type ClaimReceipt struct {
	Owner        string `json:"owner"`
	Referrer     string `json:"referrer,omitempty"`
	Gross        uint64 `json:"gross"`
	Net          uint64 `json:"net"`
	Referral     uint64 `json:"referral"`
	Burn         uint64 `json:"burn"`
	Elapsed      uint64 `json:"elapsed_seconds"`
	TotalPower   uint64 `json:"total_power"`
	ActiveHeroes int    `json:"active_heroes"`
	Rate         uint64 `json:"rate"`
	EpochBefore  uint64 `json:"halving_epoch_before"`
	EpochAfter   uint64 `json:"halving_epoch_after"`
	ClaimedAt    int64  `json:"claimed_at"`
}

// HalvingCrossed reports whether this claim moved issuance into a new epoch.
func (r ClaimReceipt) HalvingCrossed() bool {
	return r.EpochAfter > r.EpochBefore
}

func (p *Profile) claimInput(g *global.State, now int64) (mining.ClaimInput, error) {
	rate, err := g.CurrentRate()
	if err != nil {
		return mining.ClaimInput{}, err
	}
	return mining.ClaimInput{
		Roster:      p.Inventory,
		Map:         p.Map,
		Now:         now,
		Rate:        rate,
		Precision:   g.Params.RewardsPrecision,
		BurnBps:     g.Params.BurnBps,
		ReferralBps: g.Params.ReferralBps,
	}, nil
}

// Claim drains every mining hero, pays out the reward accrued since the
// earliest last action on the map, and advances the issuance counters.
//
// The burn share is recorded against the global burn counter; the player
// receives gross minus the referral share.
func (p *Profile) Claim(g *global.State, now int64) (ClaimReceipt, []ledger.Request, error) {
	var receipt ClaimReceipt
	var reqs []ledger.Request

	err := p.stage(g, func(p *Profile, g *global.State) error {
		if err := g.RequireActive(); err != nil {
			return err
		}
		in, err := p.claimInput(g, now)
		if err != nil {
			return err
		}
		plan, err := mining.PlanClaim(in)
		if err != nil {
			return err
		}

		epochBefore, err := g.HalvingEpoch()
		if err != nil {
			return err
		}
		if err := g.RecordMined(plan.Gross, plan.Burn); err != nil {
			return err
		}
		epochAfter, err := g.HalvingEpoch()
		if err != nil {
			return err
		}

		balance, err := utils.Add(p.CoinBalance, plan.Net)
		if err != nil {
			return err
		}
		p.Inventory = plan.Roster
		p.CoinBalance = balance
		p.LastClaimTime = now
		p.refreshPower(g)

		if p.Referrer != "" && plan.Referral > 0 {
			p.ReferralBonusPaid = utils.SaturatingAdd(p.ReferralBonusPaid, plan.Referral)
			reqs = append(reqs, ledger.Mint(p.Referrer, plan.Referral))
		}
		if plan.Net > 0 {
			reqs = append(reqs, ledger.Mint(p.Owner, plan.Net))
		}

		receipt = ClaimReceipt{
			Owner:        p.Owner,
			Referrer:     p.Referrer,
			Gross:        plan.Gross,
			Net:          plan.Net,
			Referral:     plan.Referral,
			Burn:         plan.Burn,
			Elapsed:      plan.Elapsed,
			TotalPower:   plan.TotalPower,
			ActiveHeroes: plan.ActiveHeroes,
			Rate:         in.Rate,
			EpochBefore:  epochBefore,
			EpochAfter:   epochAfter,
			ClaimedAt:    now,
		}
		return nil
	})
	if err != nil {
		return ClaimReceipt{}, nil, err
	}
	return receipt, reqs, nil
}

// Pending is the claim preview. Reason is set when a claim now would be rejected.
type Pending struct {
	Gross        uint64 `json:"gross"`
	Net          uint64 `json:"net"`
	Referral     uint64 `json:"referral"`
	Burn         uint64 `json:"burn"`
	Elapsed      uint64 `json:"elapsed_seconds"`
	TotalPower   uint64 `json:"total_power"`
	ActiveHeroes int    `json:"active_heroes"`
	Rate         uint64 `json:"rate"`
	Reason       string `json:"reason,omitempty"`
}

// PendingRewards computes what Claim would pay at now without changing anything.
func (p *Profile) PendingRewards(g *global.State, now int64) (Pending, error) {
	in, err := p.claimInput(g, now)
	if err != nil {
		return Pending{}, err
	}
	plan, err := mining.PlanClaim(in)
	switch {
	case errors.Is(err, economy.ErrNoHeroesOnMap),
		errors.Is(err, economy.ErrNoActiveHeroes),
		errors.Is(err, economy.ErrNoRewardsToClaim):
		return Pending{Rate: in.Rate, Reason: asGameError(err).Code}, nil
	case err != nil:
		return Pending{}, err
	}
	return Pending{
		Gross:        plan.Gross,
		Net:          plan.Net,
		Referral:     plan.Referral,
		Burn:         plan.Burn,
		Elapsed:      plan.Elapsed,
		TotalPower:   plan.TotalPower,
		ActiveHeroes: plan.ActiveHeroes,
		Rate:         in.Rate,
	}, nil
}

// RecoveryReport summarizes a RecoverHP call.
type RecoveryReport struct {
	HeroesResting int    `json:"heroes_resting"`
	HPRecovered   uint64 `json:"hp_recovered"`
}

// RecoverHP applies the recovery earned by every hero resting on the grid and
// restamps them.
func (p *Profile) RecoverHP(g *global.State, now int64) (RecoveryReport, error) {
	var report RecoveryReport
	err := p.stage(g, func(p *Profile, g *global.State) error {
		if err := g.RequireActive(); err != nil {
			return err
		}
		for _, tile := range p.House.Tiles {
			h, err := p.hero(tile.HeroIndex)
			if err != nil {
				return err
			}
			before := h.HP
			m, err := p.House.Multiplier(tile)
			if err != nil {
				return err
			}
			vitality.Settle(h, now, false, m)
			report.HeroesResting++
			report.HPRecovered += uint64(h.HP - before)
		}
		return nil
	})
	if err != nil {
		return RecoveryReport{}, err
	}
	return report, nil
}

// UpgradeHouse raises the house level and deducts its price.
func (p *Profile) UpgradeHouse(g *global.State, now int64) (uint64, error) {
	var cost uint64
	err := p.stage(g, func(p *Profile, g *global.State) error {
		if err := g.RequireActive(); err != nil {
			return err
		}
		if !g.UpgradesEnabled {
			return economy.ErrUpgradesDisabled
		}
		c, err := p.House.Upgrade(now, p.CoinBalance)
		if err != nil {
			return err
		}
		p.CoinBalance -= c
		cost = c
		return nil
	})
	return cost, err
}
