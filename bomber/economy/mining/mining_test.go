package mining

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/heroes"
)

func TestCurrentRate(t *testing.T) {
	tests := []struct {
		name       string
		initial    uint64
		totalMined uint64
		interval   uint64
		want       uint64
		wantErr    error
	}{
		{name: "NoHalving", initial: 1000, totalMined: 999, interval: 1000, want: 1000},
		{name: "TwoHalvings", initial: 1000, totalMined: 2500, interval: 1000, want: 250},
		{name: "SixtyFourHalvings", initial: math.MaxUint64, totalMined: 64, interval: 1, want: 0},
		{name: "SixtyThreeHalvings", initial: math.MaxUint64, totalMined: 63, interval: 1, want: 1},
		{name: "ZeroInterval", initial: 1000, interval: 0, wantErr: economy.ErrInvalidHalvingInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CurrentRate(tt.initial, tt.totalMined, tt.interval)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CurrentRate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CurrentRate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCurrentRate_NeverIncreases(t *testing.T) {
	configs := []struct{ initial, interval uint64 }{
		{1000, 1000},
		{1, 1},
		{math.MaxUint64, 7},
		{1_000_000_000, 1_000_000_000},
		{12345, math.MaxUint64},
	}

	for _, c := range configs {
		prev := uint64(math.MaxUint64)
		check := func(mined uint64) {
			rate, err := CurrentRate(c.initial, mined, c.interval)
			if err != nil {
				t.Fatalf("CurrentRate(%d, %d, %d) error = %v", c.initial, mined, c.interval, err)
			}
			if rate > prev {
				t.Fatalf("initial %d interval %d: rate rose to %d at mined %d (was %d)", c.initial, c.interval, rate, mined, prev)
			}
			if rate > c.initial {
				t.Fatalf("rate %d exceeds initial %d", rate, c.initial)
			}
			prev = rate
		}

		for mined := uint64(0); mined < 5_000; mined++ {
			check(mined)
		}
		// then geometric steps up to the top of the range
		for mined := uint64(5_000); mined < math.MaxUint64/3; mined = mined*3 + 1 {
			check(mined)
		}
		check(math.MaxUint64)
	}
}

func TestUntilNextHalving(t *testing.T) {
	got, err := UntilNextHalving(2500, 1000)
	if err != nil || got != 500 {
		t.Errorf("UntilNextHalving() = %d, %v; want 500", got, err)
	}
	got, err = UntilNextHalving(3000, 1000)
	if err != nil || got != 1000 {
		t.Errorf("UntilNextHalving(boundary) = %d, %v; want 1000", got, err)
	}
	epoch, err := HalvingEpoch(3000, 1000)
	if err != nil || epoch != 3 {
		t.Errorf("HalvingEpoch() = %d, %v; want 3", epoch, err)
	}
}

func TestBurnSplit(t *testing.T) {
	tests := []struct {
		name          string
		amount        uint64
		bps           uint16
		wantBurn      uint64
		wantRemainder uint64
		wantErr       error
	}{
		{name: "Half", amount: 1000, bps: 5000, wantBurn: 500, wantRemainder: 500},
		{name: "Truncates", amount: 999, bps: 5000, wantBurn: 499, wantRemainder: 500},
		{name: "All", amount: 1000, bps: 10000, wantBurn: 1000},
		{name: "None", amount: 1000, bps: 0, wantRemainder: 1000},
		{name: "Large", amount: math.MaxUint64, bps: 10000, wantBurn: math.MaxUint64},
		{name: "OverLimit", amount: 1000, bps: 10001, wantErr: economy.ErrInvalidBurnPercentage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			burn, rem, err := BurnSplit(tt.amount, tt.bps)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("BurnSplit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if burn != tt.wantBurn || rem != tt.wantRemainder {
				t.Errorf("BurnSplit() = %d, %d; want %d, %d", burn, rem, tt.wantBurn, tt.wantRemainder)
			}
			if err == nil && burn+rem != tt.amount {
				t.Errorf("split does not sum to amount")
			}
		})
	}
}

func TestReferralBonus(t *testing.T) {
	if got, err := ReferralBonus(310, 250); err != nil || got != 7 {
		t.Errorf("ReferralBonus(310, 250) = %d, %v; want 7", got, err)
	}
	if _, err := ReferralBonus(1, 10001); !errors.Is(err, economy.ErrInvalidReferralFee) {
		t.Errorf("ReferralBonus(over limit) error = %v", err)
	}
}

func TestGrossReward(t *testing.T) {
	tests := []struct {
		name      string
		elapsed   uint64
		power     uint64
		rate      uint64
		precision uint64
		want      uint64
		wantErr   error
	}{
		{name: "OneHour", elapsed: 3600, power: 31, rate: 10, precision: 1, want: 310},
		{name: "HalfHour", elapsed: 1800, power: 1, rate: 1000, precision: 1, want: 500},
		{name: "Precision", elapsed: 3600, power: 2, rate: 3, precision: 100, want: 600},
		{name: "TooShort", elapsed: 1, power: 1, rate: 1, precision: 1, want: 0},
		{name: "Overflow", elapsed: math.MaxUint64, power: 2, rate: 1, precision: 1, wantErr: economy.ErrArithmeticOverflow},
		{name: "ZeroPrecision", elapsed: 3600, power: 1, rate: 1, precision: 0, wantErr: economy.ErrInvalidRewardsPrecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GrossReward(tt.elapsed, tt.power, tt.rate, tt.precision)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("GrossReward() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("GrossReward() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAssignment(t *testing.T) {
	roster := make([]heroes.Hero, 17)
	for i := range roster {
		roster[i] = heroes.Hero{ID: uint16(i), HP: 10, MaxHP: 10}
	}
	roster[16].HP = 0

	var a Assignment
	for i := uint16(0); i < MaxMapHeroes; i++ {
		if err := a.Add(roster, i); err != nil {
			t.Fatalf("Add(%d) error = %v", i, err)
		}
	}

	tests := []struct {
		name    string
		index   uint16
		wantErr error
	}{
		{name: "AlreadyOnMap", index: 0, wantErr: economy.ErrHeroAlreadyOnMap},
		{name: "Full", index: 15, wantErr: economy.ErrMapFull},
		{name: "BadIndex", index: 17, wantErr: economy.ErrInvalidHeroIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := a.CheckMove(roster, tt.index); !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckMove(%d) error = %v, wantErr %v", tt.index, err, tt.wantErr)
			}
		})
	}

	if !a.Remove(3) || a.Contains(3) || len(a) != MaxMapHeroes-1 {
		t.Errorf("Remove(3) left %v", a)
	}
	if err := a.CheckMove(roster, 16); !errors.Is(err, economy.ErrHeroIsSleeping) {
		t.Errorf("CheckMove(sleeping) error = %v", err)
	}
}

func referenceHero(last int64) heroes.Hero {
	return heroes.Hero{Power: 10, BombCount: 1, BombRange: 3, Speed: 10, Stamina: 5, HP: 700, MaxHP: 700, LastActionTime: last}
}

func TestPlanClaim(t *testing.T) {
	const start = 1_700_000_000

	t.Run("Reference", func(t *testing.T) {
		in := ClaimInput{
			Roster:      []heroes.Hero{referenceHero(start)},
			Map:         Assignment{0},
			Now:         start + 3600,
			Rate:        10,
			Precision:   1,
			BurnBps:     5000,
			ReferralBps: 250,
		}
		original := append([]heroes.Hero(nil), in.Roster...)

		plan, err := PlanClaim(in)
		if err != nil {
			t.Fatalf("PlanClaim() error = %v", err)
		}
		want := ClaimPlan{
			Elapsed:      3600,
			TotalPower:   31,
			ActiveHeroes: 1,
			Gross:        310,
			Burn:         155,
			Referral:     7,
			Net:          303,
		}
		got := plan
		got.Roster = nil
		if !reflect.DeepEqual(got, want) {
			t.Errorf("PlanClaim() = %+v, want %+v", got, want)
		}
		if plan.Roster[0].HP != 100 || plan.Roster[0].LastActionTime != start+3600 {
			t.Errorf("drained hero = %+v", plan.Roster[0])
		}
		if !reflect.DeepEqual(in.Roster, original) {
			t.Error("PlanClaim() mutated its input roster")
		}
	})

	t.Run("EarliestWindowAndSleepers", func(t *testing.T) {
		fresh := referenceHero(start + 1800)
		tired := referenceHero(start)
		tired.HP = 100 // drains to zero over the hour
		in := ClaimInput{
			Roster:    []heroes.Hero{fresh, tired},
			Map:       Assignment{0, 1},
			Now:       start + 3600,
			Rate:      10,
			Precision: 1,
		}
		plan, err := PlanClaim(in)
		if err != nil {
			t.Fatalf("PlanClaim() error = %v", err)
		}
		if plan.Elapsed != 3600 || plan.TotalPower != 31 || plan.ActiveHeroes != 1 {
			t.Errorf("plan = %+v", plan)
		}
		for i, h := range plan.Roster {
			if h.LastActionTime != start+3600 {
				t.Errorf("hero %d not restamped: %d", i, h.LastActionTime)
			}
		}
		if !plan.Roster[1].IsSleeping() {
			t.Error("tired hero should be asleep")
		}
	})

	errTests := []struct {
		name    string
		in      ClaimInput
		wantErr error
	}{
		{
			name:    "EmptyMap",
			in:      ClaimInput{Roster: []heroes.Hero{referenceHero(start)}, Now: start + 3600, Rate: 10, Precision: 1},
			wantErr: economy.ErrNoHeroesOnMap,
		},
		{
			name: "AllAsleep",
			in: ClaimInput{
				Roster: []heroes.Hero{{Power: 1, BombCount: 1, Speed: 1, HP: 1, LastActionTime: start}},
				Map:    Assignment{0}, Now: start + 3600, Rate: 10, Precision: 1,
			},
			wantErr: economy.ErrNoActiveHeroes,
		},
		{
			name:    "NothingAccrued",
			in:      ClaimInput{Roster: []heroes.Hero{referenceHero(start)}, Map: Assignment{0}, Now: start, Rate: 10, Precision: 1},
			wantErr: economy.ErrNoRewardsToClaim,
		},
		{
			name:    "RateExhausted",
			in:      ClaimInput{Roster: []heroes.Hero{referenceHero(start)}, Map: Assignment{0}, Now: start + 3600, Rate: 0, Precision: 1},
			wantErr: economy.ErrNoRewardsToClaim,
		},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PlanClaim(tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("PlanClaim() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
