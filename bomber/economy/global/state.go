// Package global holds the single shared economic state: issuance counters,
// tunable parameters and the switches that gate player operations.
package global

import (
	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/mining"
	"github.com/iceweasel13/solana-bomber/bomber/economy/utils"
)

// Params are the tunable economic parameters.
type Params struct {
	InitialHousePrice uint64 `json:"initial_house_price" yaml:"initial_house_price"`
	InitialRate       uint64 `json:"initial_bombcoin_per_block" yaml:"initial_bombcoin_per_block"`
	HalvingInterval   uint64 `json:"halving_interval" yaml:"halving_interval"`
	BurnBps           uint16 `json:"burn_pct" yaml:"burn_pct"`
	ReferralBps       uint16 `json:"referral_fee" yaml:"referral_fee"`
	RewardsPrecision  uint64 `json:"rewards_precision" yaml:"rewards_precision"`
}

// DefaultParams mirrors the launch configuration.
func DefaultParams() Params {
	return Params{
		InitialHousePrice: utils.DefaultInitialHousePrice,
		InitialRate:       utils.DefaultInitialRate,
		HalvingInterval:   utils.DefaultHalvingInterval,
		BurnBps:           utils.DefaultBurnBps,
		ReferralBps:       utils.DefaultReferralBps,
		RewardsPrecision:  utils.DefaultRewardsPrecision,
	}
}

func (p Params) Validate() error {
	if p.BurnBps > utils.BasisPoints {
		return economy.ErrInvalidBurnPercentage
	}
	if p.ReferralBps > utils.BasisPoints {
		return economy.ErrInvalidReferralFee
	}
	if p.HalvingInterval == 0 {
		return economy.ErrInvalidHalvingInterval
	}
	if p.RewardsPrecision == 0 {
		return economy.ErrInvalidRewardsPrecision
	}
	return nil
}

// ParamsUpdate carries optional new values. Nil fields are left alone.
type ParamsUpdate struct {
	InitialHousePrice *uint64 `json:"initial_house_price,omitempty"`
	InitialRate       *uint64 `json:"initial_bombcoin_per_block,omitempty"`
	HalvingInterval   *uint64 `json:"halving_interval,omitempty"`
	BurnBps           *uint16 `json:"burn_pct,omitempty"`
	ReferralBps       *uint16 `json:"referral_fee,omitempty"`
	RewardsPrecision  *uint64 `json:"rewards_precision,omitempty"`
}

func (u ParamsUpdate) apply(p Params) Params {
	if u.InitialHousePrice != nil {
		p.InitialHousePrice = *u.InitialHousePrice
	}
	if u.InitialRate != nil {
		p.InitialRate = *u.InitialRate
	}
	if u.HalvingInterval != nil {
		p.HalvingInterval = *u.HalvingInterval
	}
	if u.BurnBps != nil {
		p.BurnBps = *u.BurnBps
	}
	if u.ReferralBps != nil {
		p.ReferralBps = *u.ReferralBps
	}
	if u.RewardsPrecision != nil {
		p.RewardsPrecision = *u.RewardsPrecision
	}
	return p
}

// State is the global economic state. There is exactly one.
type State struct {
	Authority    string `json:"authority"`
	Treasury     string `json:"treasury"`
	CurrencyMint string `json:"currency_mint"`

	Params Params `json:"params"`

	GameStarted     bool  `json:"game_started"`
	Paused          bool  `json:"game_paused"`
	MintingEnabled  bool  `json:"minting_enabled"`
	UpgradesEnabled bool  `json:"house_upgrades_enabled"`
	StartTime       int64 `json:"start_time"`

	HouseCount        uint64 `json:"house_count"`
	UniqueHeroesCount uint64 `json:"unique_heroes_count"`
	TotalHashPower    uint64 `json:"total_hash_power"`
	TotalMined        uint64 `json:"total_mined"`
	TotalBurned       uint64 `json:"total_burned"`
	RewardPool        uint64 `json:"reward_pool"`
}

// New initializes the global state: not started, not paused, minting and
// upgrades on.
func New(authority, treasury, currencyMint string, p Params) (*State, error) {
	if authority == "" || treasury == "" {
		return nil, economy.ErrInvalidIdentity
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &State{
		Authority:       authority,
		Treasury:        treasury,
		CurrencyMint:    currencyMint,
		Params:          p,
		MintingEnabled:  true,
		UpgradesEnabled: true,
	}, nil
}

func (s *State) RequireAuthority(caller string) error {
	if caller == "" || caller != s.Authority {
		return economy.ErrUnauthorized
	}
	return nil
}

// RequireActive gates every state-mutating player operation.
func (s *State) RequireActive() error {
	if s.Paused {
		return economy.ErrGamePaused
	}
	return nil
}

// RequireStarted gates operations that need a running game.
func (s *State) RequireStarted() error {
	if err := s.RequireActive(); err != nil {
		return err
	}
	if !s.GameStarted {
		return economy.ErrGameNotStarted
	}
	return nil
}

// StartGame flips game_started once.
func (s *State) StartGame(now int64) error {
	if s.GameStarted {
		return economy.ErrGameAlreadyStarted
	}
	s.GameStarted = true
	s.StartTime = now
	return nil
}

func (s *State) SetPaused(paused bool)           { s.Paused = paused }
func (s *State) SetMintingEnabled(enabled bool)  { s.MintingEnabled = enabled }
func (s *State) SetUpgradesEnabled(enabled bool) { s.UpgradesEnabled = enabled }

func (s *State) SetTreasury(treasury string) error {
	if treasury == "" {
		return economy.ErrInvalidIdentity
	}
	s.Treasury = treasury
	return nil
}

// UpdateParams validates the merged parameters before applying any field.
func (s *State) UpdateParams(u ParamsUpdate) error {
	next := u.apply(s.Params)
	if err := next.Validate(); err != nil {
		return err
	}
	s.Params = next
	return nil
}

// CurrentRate is the issuance rate after halvings.
func (s *State) CurrentRate() (uint64, error) {
	return mining.CurrentRate(s.Params.InitialRate, s.TotalMined, s.Params.HalvingInterval)
}

func (s *State) HalvingEpoch() (uint64, error) {
	return mining.HalvingEpoch(s.TotalMined, s.Params.HalvingInterval)
}

func (s *State) UntilNextHalving() (uint64, error) {
	return mining.UntilNextHalving(s.TotalMined, s.Params.HalvingInterval)
}

// RecordMined adds a claim's gross and burn shares to the issuance counters.
func (s *State) RecordMined(gross, burn uint64) error {
	mined, err := utils.Add(s.TotalMined, gross)
	if err != nil {
		return err
	}
	burned, err := utils.Add(s.TotalBurned, burn)
	if err != nil {
		return err
	}
	s.TotalMined, s.TotalBurned = mined, burned
	return nil
}

// RecordSpend splits coins spent in the shop between the burn counter and the reward pool.
func (s *State) RecordSpend(amount uint64) (burn uint64, err error) {
	burn, rest, err := mining.BurnSplit(amount, s.Params.BurnBps)
	if err != nil {
		return 0, err
	}
	burned, err := utils.Add(s.TotalBurned, burn)
	if err != nil {
		return 0, err
	}
	pool, err := utils.Add(s.RewardPool, rest)
	if err != nil {
		return 0, err
	}
	s.TotalBurned, s.RewardPool = burned, pool
	return burn, nil
}

// AdjustHashPower moves the global hash power from a player's old power to their new power.
func (s *State) AdjustHashPower(before, after uint64) {
	s.TotalHashPower = utils.SaturatingAdd(utils.SaturatingSub(s.TotalHashPower, before), after)
}

// NextHeroSequence returns the sequence for the next generated hero and advances the counter.
func (s *State) NextHeroSequence() (uint64, error) {
	seq := s.UniqueHeroesCount
	next, err := utils.Add(seq, 1)
	if err != nil {
		return 0, err
	}
	s.UniqueHeroesCount = next
	return seq, nil
}

func (s *State) AddHouse() error {
	n, err := utils.Add(s.HouseCount, 1)
	if err != nil {
		return err
	}
	s.HouseCount = n
	return nil
}

// Info is the read-only game snapshot.
type Info struct {
	State
	CurrentRate      uint64 `json:"current_reward_rate"`
	HalvingEpoch     uint64 `json:"halving_epoch"`
	UntilNextHalving uint64 `json:"until_next_halving"`
}

func (s *State) Info() (Info, error) {
	rate, err := s.CurrentRate()
	if err != nil {
		return Info{}, err
	}
	epoch, err := s.HalvingEpoch()
	if err != nil {
		return Info{}, err
	}
	next, err := s.UntilNextHalving()
	if err != nil {
		return Info{}, err
	}
	return Info{State: *s, CurrentRate: rate, HalvingEpoch: epoch, UntilNextHalving: next}, nil
}
