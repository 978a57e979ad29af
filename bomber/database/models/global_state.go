package models

import (
	"math"
	"time"

	"github.com/uptrace/bun"

	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
)

// GlobalStateID is the primary key of the only global_state row.
const GlobalStateID = 1

// GlobalState stores the full economic state as jsonb. The counters are
// copied into columns so operators can query them without unpacking json.
type GlobalState struct {
	bun.BaseModel `bun:"table:global_state,alias:gs"`

	ID             int          `bun:"id,pk"`
	Authority      string       `bun:"authority,notnull"`
	GameStarted    bool         `bun:"game_started,notnull"`
	Paused         bool         `bun:"game_paused,notnull"`
	HouseCount     int64        `bun:"house_count,notnull"`
	TotalMined     int64        `bun:"total_mined,notnull"`
	TotalBurned    int64        `bun:"total_burned,notnull"`
	TotalHashPower int64        `bun:"total_hash_power,notnull"`
	State          global.State `bun:"state,type:jsonb,notnull"`
	CreatedAt      time.Time    `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time    `bun:"updated_at,notnull,default:current_timestamp"`
}

func NewGlobalState(s *global.State, now time.Time) *GlobalState {
	m := &GlobalState{ID: GlobalStateID, CreatedAt: now}
	m.Sync(s, now)
	return m
}

// Sync copies s into the row.
func (m *GlobalState) Sync(s *global.State, now time.Time) {
	m.Authority = s.Authority
	m.GameStarted = s.GameStarted
	m.Paused = s.Paused
	m.HouseCount = clampInt64(s.HouseCount)
	m.TotalMined = clampInt64(s.TotalMined)
	m.TotalBurned = clampInt64(s.TotalBurned)
	m.TotalHashPower = clampInt64(s.TotalHashPower)
	m.State = *s
	m.UpdatedAt = now
}

// clampInt64 is for reporting columns only; the jsonb state keeps exact values.
func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
