package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/iceweasel13/solana-bomber/bomber/economy/profile"
	"github.com/iceweasel13/solana-bomber/bomber/economy/utils"
)

type ClaimRecord struct {
	bun.BaseModel `bun:"table:claims,alias:cl"`

	ID             snowflake.ID `bun:"id,pk" json:"id"`
	Owner          string       `bun:"owner,notnull" json:"owner"`
	Referrer       string       `bun:"referrer,nullzero" json:"referrer,omitempty"`
	Gross          int64        `bun:"gross,notnull" json:"gross"`
	Net            int64        `bun:"net,notnull" json:"net"`
	Referral       int64        `bun:"referral,notnull" json:"referral"`
	Burn           int64        `bun:"burn,notnull" json:"burn"`
	ElapsedSeconds int64        `bun:"elapsed_seconds,notnull" json:"elapsed_seconds"`
	TotalPower     int64        `bun:"total_power,notnull" json:"total_power"`
	ActiveHeroes   int          `bun:"active_heroes,notnull" json:"active_heroes"`
	Rate           int64        `bun:"rate,notnull" json:"rate"`
	HalvingEpoch   int64        `bun:"halving_epoch,notnull" json:"halving_epoch"`
	ClaimedAt      time.Time    `bun:"claimed_at,notnull" json:"claimed_at"`
}

func NewClaimRecord(id snowflake.ID, r profile.ClaimReceipt) (*ClaimRecord, error) {
	values := []uint64{r.Gross, r.Net, r.Referral, r.Burn, r.Elapsed, r.TotalPower, r.Rate, r.EpochAfter}
	converted := make([]int64, len(values))
	for i, v := range values {
		c, err := utils.ToInt64(v)
		if err != nil {
			return nil, err
		}
		converted[i] = c
	}

	return &ClaimRecord{
		ID:             id,
		Owner:          r.Owner,
		Referrer:       r.Referrer,
		Gross:          converted[0],
		Net:            converted[1],
		Referral:       converted[2],
		Burn:           converted[3],
		ElapsedSeconds: converted[4],
		TotalPower:     converted[5],
		ActiveHeroes:   r.ActiveHeroes,
		Rate:           converted[6],
		HalvingEpoch:   converted[7],
		ClaimedAt:      time.Unix(r.ClaimedAt, 0).UTC(),
	}, nil
}
