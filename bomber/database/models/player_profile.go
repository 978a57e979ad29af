package models

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/iceweasel13/solana-bomber/bomber/economy/profile"
)

type PlayerProfile struct {
	bun.BaseModel `bun:"table:player_profiles,alias:pp"`

	Owner       string          `bun:"owner,pk"`
	HouseLevel  int             `bun:"house_level,notnull"`
	CoinBalance int64           `bun:"coin_balance,notnull"`
	PlayerPower int64           `bun:"player_power,notnull"`
	HeroCount   int             `bun:"hero_count,notnull"`
	Referrer    string          `bun:"referrer,nullzero"`
	State       profile.Profile `bun:"state,type:jsonb,notnull"`
	CreatedAt   time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

func NewPlayerProfile(p *profile.Profile, now time.Time) *PlayerProfile {
	m := &PlayerProfile{Owner: p.Owner, CreatedAt: now}
	m.Sync(p, now)
	return m
}

func (m *PlayerProfile) Sync(p *profile.Profile, now time.Time) {
	m.HouseLevel = int(p.House.Level)
	m.CoinBalance = clampInt64(p.CoinBalance)
	m.PlayerPower = clampInt64(p.PlayerPower)
	m.HeroCount = len(p.Inventory)
	m.Referrer = p.Referrer
	m.State = p.Clone()
	m.UpdatedAt = now
}
