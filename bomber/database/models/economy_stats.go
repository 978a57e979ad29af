package models

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
)

type EconomyStats struct {
	bun.BaseModel `bun:"table:economy_stats,alias:es"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Timestamp time.Time `bun:"timestamp,notnull" json:"timestamp"`

	// Issuance
	CurrentRate      int64 `bun:"current_rate,notnull" json:"current_rate"`
	HalvingEpoch     int64 `bun:"halving_epoch,notnull" json:"halving_epoch"`
	UntilNextHalving int64 `bun:"until_next_halving,notnull" json:"until_next_halving"`
	TotalMined       int64 `bun:"total_mined,notnull" json:"total_mined"`
	TotalBurned      int64 `bun:"total_burned,notnull" json:"total_burned"`
	RewardPool       int64 `bun:"reward_pool,notnull" json:"reward_pool"`

	// Population
	HouseCount     int64 `bun:"house_count,notnull" json:"house_count"`
	UniqueHeroes   int64 `bun:"unique_heroes,notnull" json:"unique_heroes"`
	TotalHashPower int64 `bun:"total_hash_power,notnull" json:"total_hash_power"`

	// Ledger outbox health
	PendingLedgerRequests int `bun:"pending_ledger_requests,notnull" json:"pending_ledger_requests"`
	FailedLedgerRequests  int `bun:"failed_ledger_requests,notnull" json:"failed_ledger_requests"`

	Paused bool `bun:"game_paused,notnull" json:"game_paused"`
}

func NewEconomyStats(info global.Info, now time.Time) *EconomyStats {
	return &EconomyStats{
		Timestamp:        now,
		CurrentRate:      clampInt64(info.CurrentRate),
		HalvingEpoch:     clampInt64(info.HalvingEpoch),
		UntilNextHalving: clampInt64(info.UntilNextHalving),
		TotalMined:       clampInt64(info.TotalMined),
		TotalBurned:      clampInt64(info.TotalBurned),
		RewardPool:       clampInt64(info.RewardPool),
		HouseCount:       clampInt64(info.HouseCount),
		UniqueHeroes:     clampInt64(info.UniqueHeroesCount),
		TotalHashPower:   clampInt64(info.TotalHashPower),
		Paused:           info.Paused,
	}
}
