package profile

import (
	"errors"
	"reflect"
	"testing"

	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
	"github.com/iceweasel13/solana-bomber/bomber/economy/heroes"
	"github.com/iceweasel13/solana-bomber/bomber/economy/house"
	"github.com/iceweasel13/solana-bomber/bomber/economy/ledger"
)

const t0 = 1_700_000_000

func testGlobal(t *testing.T) *global.State {
	t.Helper()
	params := global.DefaultParams()
	params.InitialRate = 10
	params.InitialHousePrice = 1_000
	g, err := global.New("authority", "treasury", "mint", params)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.StartGame(t0); err != nil {
		t.Fatal(err)
	}
	return g
}

func referenceHero(id uint16, last int64) heroes.Hero {
	return heroes.Hero{ID: id, Power: 10, BombCount: 1, BombRange: 3, Speed: 10, Stamina: 5, MaxStamina: 5, HP: 700, MaxHP: 700, LastActionTime: last}
}

func testProfile(t *testing.T, g *global.State, roster ...heroes.Hero) *Profile {
	t.Helper()
	p, _, err := PurchaseHouse(g, "alice", t0)
	if err != nil {
		t.Fatal(err)
	}
	p.Inventory = append(p.Inventory, roster...)
	return p
}

func TestPurchaseHouse(t *testing.T) {
	g := testGlobal(t)
	p, reqs, err := PurchaseHouse(g, "alice", t0)
	if err != nil {
		t.Fatalf("PurchaseHouse() error = %v", err)
	}
	if p.House.Level != house.MinLevel || len(p.Inventory) != 0 || g.HouseCount != 1 {
		t.Errorf("profile = %+v, houses = %d", p, g.HouseCount)
	}
	want := []ledger.Request{ledger.TransferNative("alice", "treasury", 1_000)}
	if !reflect.DeepEqual(reqs, want) {
		t.Errorf("requests = %+v, want %+v", reqs, want)
	}

	notStarted, _ := global.New("authority", "treasury", "mint", global.DefaultParams())
	if _, _, err := PurchaseHouse(notStarted, "bob", t0); !errors.Is(err, economy.ErrGameNotStarted) {
		t.Errorf("PurchaseHouse(not started) error = %v", err)
	}
	if notStarted.HouseCount != 0 {
		t.Error("rejected purchase counted a house")
	}
}

func TestProfile_ClaimScenario(t *testing.T) {
	g := testGlobal(t)
	p := testProfile(t, g, referenceHero(0, t0))

	if err := p.SetReferrer(g, "bob"); err != nil {
		t.Fatal(err)
	}
	if err := p.MoveToMining(g, 0, t0); err != nil {
		t.Fatalf("MoveToMining() error = %v", err)
	}
	if p.PlayerPower != 31 || g.TotalHashPower != 31 {
		t.Errorf("power = %d, global = %d", p.PlayerPower, g.TotalHashPower)
	}

	pending, err := p.PendingRewards(g, t0+3600)
	if err != nil {
		t.Fatal(err)
	}

	receipt, reqs, err := p.Claim(g, t0+3600)
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if receipt.Gross != 310 || receipt.Net != 303 || receipt.Referral != 7 || receipt.Burn != 155 {
		t.Errorf("receipt = %+v", receipt)
	}
	if pending.Gross != receipt.Gross || pending.Net != receipt.Net {
		t.Errorf("preview %+v disagrees with claim %+v", pending, receipt)
	}
	wantReqs := []ledger.Request{ledger.Mint("bob", 7), ledger.Mint("alice", 303)}
	if !reflect.DeepEqual(reqs, wantReqs) {
		t.Errorf("requests = %+v, want %+v", reqs, wantReqs)
	}
	if p.CoinBalance != 303 || p.ReferralBonusPaid != 7 {
		t.Errorf("balance = %d, referral paid = %d", p.CoinBalance, p.ReferralBonusPaid)
	}
	if g.TotalMined != 310 || g.TotalBurned != 155 {
		t.Errorf("mined = %d, burned = %d", g.TotalMined, g.TotalBurned)
	}
	if h := p.Inventory[0]; h.HP != 100 || h.LastActionTime != t0+3600 {
		t.Errorf("hero after claim = %+v", h)
	}

	if _, _, err := p.Claim(g, t0+3600); !errors.Is(err, economy.ErrNoRewardsToClaim) {
		t.Errorf("immediate second claim error = %v", err)
	}
}

func TestProfile_ClaimFailureLeavesStateUntouched(t *testing.T) {
	g := testGlobal(t)
	tired := referenceHero(0, t0)
	tired.HP = 10
	p := testProfile(t, g, tired)
	if err := p.MoveToMining(g, 0, t0); err != nil {
		t.Fatal(err)
	}

	beforeP, beforeG := p.Clone(), *g
	if _, _, err := p.Claim(g, t0+3600); !errors.Is(err, economy.ErrNoActiveHeroes) {
		t.Fatalf("Claim() error = %v", err)
	}
	if !reflect.DeepEqual(*p, beforeP) || !reflect.DeepEqual(*g, beforeG) {
		t.Error("failed claim mutated state")
	}

	empty := testProfile(t, g)
	if _, _, err := empty.Claim(g, t0+3600); !errors.Is(err, economy.ErrNoHeroesOnMap) {
		t.Errorf("Claim(empty map) error = %v", err)
	}
}

func TestProfile_BuyHeroes(t *testing.T) {
	tests := []struct {
		name     string
		balance  uint64
		quantity int
		minting  bool
		wantErr  error
	}{
		{name: "Success", balance: 350, quantity: 3, minting: true},
		{name: "Insufficient", balance: 99, quantity: 1, minting: true, wantErr: economy.ErrInsufficientCoins},
		{name: "ZeroQuantity", balance: 1000, quantity: 0, minting: true, wantErr: economy.ErrInvalidHeroQuantity},
		{name: "TooMany", balance: 5000, quantity: 11, minting: true, wantErr: economy.ErrInvalidHeroQuantity},
		{name: "MintingDisabled", balance: 1000, quantity: 1, minting: false, wantErr: economy.ErrMintingDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGlobal(t)
			g.SetMintingEnabled(tt.minting)
			p := testProfile(t, g)
			p.CoinBalance = tt.balance
			beforeP, beforeG := p.Clone(), *g

			bought, reqs, err := p.BuyHeroes(g, tt.quantity, t0+10)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("BuyHeroes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if !reflect.DeepEqual(*p, beforeP) || !reflect.DeepEqual(*g, beforeG) {
					t.Error("failed purchase mutated state")
				}
				return
			}

			if len(bought) != tt.quantity || len(p.Inventory) != tt.quantity {
				t.Fatalf("bought %d, inventory %d", len(bought), len(p.Inventory))
			}
			for i, h := range p.Inventory {
				if h.ID != uint16(i) || h.LastActionTime != t0+10 {
					t.Errorf("hero %d = %+v", i, h)
				}
			}
			if p.CoinBalance != 50 || g.TotalBurned != 150 || g.RewardPool != 150 || g.UniqueHeroesCount != 3 {
				t.Errorf("balance %d burned %d pool %d heroes %d", p.CoinBalance, g.TotalBurned, g.RewardPool, g.UniqueHeroesCount)
			}
			if !reflect.DeepEqual(reqs, []ledger.Request{ledger.Burn(150)}) {
				t.Errorf("requests = %+v", reqs)
			}
		})
	}
}

func TestProfile_PlacementSettlesVitality(t *testing.T) {
	g := testGlobal(t)
	p := testProfile(t, g, referenceHero(0, t0), referenceHero(1, t0))

	if err := p.MoveToMining(g, 0, t0); err != nil {
		t.Fatal(err)
	}
	// ten minutes of mining drains 100 hp
	if err := p.PlaceHero(g, house.Placement{HeroIndex: 0, X: 0, Y: 0, IsRestroom: true}, t0+600); err != nil {
		t.Fatalf("PlaceHero() error = %v", err)
	}
	if p.Map.Contains(0) || p.Inventory[0].HP != 600 || p.PlayerPower != 0 || g.TotalHashPower != 0 {
		t.Errorf("after place: map %v hp %d power %d", p.Map, p.Inventory[0].HP, p.PlayerPower)
	}

	d, err := p.HeroDetails(0, t0+600+240)
	if err != nil {
		t.Fatal(err)
	}
	if d.Location != LocationRestroom || d.EstimatedHP != 610 || d.Hero.HP != 600 {
		t.Errorf("details = %+v", d)
	}

	report, err := p.RecoverHP(g, t0+600+240)
	if err != nil {
		t.Fatal(err)
	}
	if report.HeroesResting != 1 || report.HPRecovered != 10 || p.Inventory[0].HP != 610 {
		t.Errorf("report = %+v, hp = %d", report, p.Inventory[0].HP)
	}

	if err := p.MoveToMining(g, 0, t0+1000); err != nil {
		t.Fatalf("MoveToMining(from grid) error = %v", err)
	}
	if _, ok := p.House.TileOf(0); ok {
		t.Error("hero still on grid after moving to mining")
	}

	if _, err := p.RemoveHero(g, 0, 0, t0+1000); !errors.Is(err, economy.ErrGridPositionEmpty) {
		t.Errorf("RemoveHero(empty) error = %v", err)
	}
}

func TestProfile_SleepingHeroWakesAfterRest(t *testing.T) {
	g := testGlobal(t)
	asleep := referenceHero(0, t0)
	asleep.HP = 0
	p := testProfile(t, g, asleep)

	if err := p.MoveToMining(g, 0, t0); !errors.Is(err, economy.ErrHeroIsSleeping) {
		t.Fatalf("MoveToMining(sleeping) error = %v", err)
	}
	if err := p.PlaceHero(g, house.Placement{HeroIndex: 0, X: 1, Y: 1}, t0); err != nil {
		t.Fatal(err)
	}
	if err := p.MoveToMining(g, 0, t0+120); err != nil {
		t.Errorf("MoveToMining(rested) error = %v", err)
	}
	if p.Inventory[0].HP != 5 {
		t.Errorf("hp = %d, want 5", p.Inventory[0].HP)
	}
}

func TestProfile_BulkMoveIsAtomic(t *testing.T) {
	g := testGlobal(t)
	sleeping := referenceHero(2, t0)
	sleeping.HP = 0
	p := testProfile(t, g, referenceHero(0, t0), referenceHero(1, t0), sleeping)

	tests := []struct {
		name    string
		batch   []uint16
		wantErr error
	}{
		{name: "Empty", wantErr: economy.ErrEmptyBatch},
		{name: "Duplicate", batch: []uint16{0, 0}, wantErr: economy.ErrDuplicatePlacement},
		{name: "SleeperLast", batch: []uint16{0, 1, 2}, wantErr: economy.ErrHeroIsSleeping},
		{name: "BadIndex", batch: []uint16{0, 7}, wantErr: economy.ErrInvalidHeroIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := p.Clone()
			if err := p.BulkMoveToMining(g, tt.batch, t0); !errors.Is(err, tt.wantErr) {
				t.Fatalf("BulkMoveToMining() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(*p, before) {
				t.Error("failed batch mutated profile")
			}
		})
	}

	if err := p.BulkMoveToMining(g, []uint16{0, 1}, t0); err != nil {
		t.Fatal(err)
	}
	if len(p.Map) != 2 || p.PlayerPower != 62 {
		t.Errorf("map = %v, power = %d", p.Map, p.PlayerPower)
	}
}

func TestProfile_BulkPlace(t *testing.T) {
	g := testGlobal(t)
	p := testProfile(t, g, referenceHero(0, t0), referenceHero(1, t0))
	if err := p.MoveToMining(g, 1, t0); err != nil {
		t.Fatal(err)
	}

	bad := []house.Placement{{HeroIndex: 0, X: 0, Y: 0}, {HeroIndex: 1, X: 0, Y: 0}}
	if err := p.BulkPlace(g, bad, t0+60); !errors.Is(err, economy.ErrDuplicatePlacement) {
		t.Fatalf("BulkPlace(dup) error = %v", err)
	}
	if !p.Map.Contains(1) || len(p.House.Tiles) != 0 {
		t.Error("failed bulk place changed the profile")
	}

	good := []house.Placement{{HeroIndex: 0, X: 0, Y: 0}, {HeroIndex: 1, X: 1, Y: 0}}
	if err := p.BulkPlace(g, good, t0+60); err != nil {
		t.Fatal(err)
	}
	if len(p.Map) != 0 || len(p.House.Tiles) != 2 || p.Inventory[1].HP != 690 {
		t.Errorf("map %v tiles %v hp %d", p.Map, p.House.Tiles, p.Inventory[1].HP)
	}
}

func TestProfile_PauseGatesMutations(t *testing.T) {
	g := testGlobal(t)
	p := testProfile(t, g, referenceHero(0, t0))
	p.CoinBalance = 10_000
	g.SetPaused(true)

	ops := map[string]func() error{
		"move":     func() error { return p.MoveToMining(g, 0, t0) },
		"place":    func() error { return p.PlaceHero(g, house.Placement{HeroIndex: 0}, t0) },
		"referrer": func() error { return p.SetReferrer(g, "bob") },
		"upgrade":  func() error { _, err := p.UpgradeHouse(g, t0); return err },
		"recover":  func() error { _, err := p.RecoverHP(g, t0); return err },
		"buy":      func() error { _, _, err := p.BuyHeroes(g, 1, t0); return err },
		"claim":    func() error { _, _, err := p.Claim(g, t0); return err },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, economy.ErrGamePaused) {
			t.Errorf("%s while paused error = %v", name, err)
		}
	}
}

func TestProfile_SetReferrer(t *testing.T) {
	g := testGlobal(t)
	p := testProfile(t, g)

	if err := p.SetReferrer(g, "alice"); !errors.Is(err, economy.ErrCannotReferSelf) {
		t.Errorf("self referral error = %v", err)
	}
	if err := p.SetReferrer(g, "bob"); err != nil {
		t.Fatal(err)
	}
	if err := p.SetReferrer(g, "carol"); !errors.Is(err, economy.ErrReferrerAlreadySet) {
		t.Errorf("second referral error = %v", err)
	}
}

func TestProfile_UpgradeHouse(t *testing.T) {
	g := testGlobal(t)
	p := testProfile(t, g)
	p.CoinBalance = 1_000

	g.SetUpgradesEnabled(false)
	if _, err := p.UpgradeHouse(g, t0); !errors.Is(err, economy.ErrUpgradesDisabled) {
		t.Errorf("UpgradeHouse(disabled) error = %v", err)
	}
	g.SetUpgradesEnabled(true)

	cost, err := p.UpgradeHouse(g, t0)
	if err != nil || cost != 720 || p.CoinBalance != 280 || p.House.Level != 2 {
		t.Errorf("UpgradeHouse() = %d, %v; balance %d level %d", cost, err, p.CoinBalance, p.House.Level)
	}

	stats, err := p.Stats(g, t0+60)
	if err != nil {
		t.Fatal(err)
	}
	if stats.GridWidth != 4 || stats.GridHeight != 6 || stats.CanUpgrade || stats.UpgradeCooldownRemaining != 6*3600-60 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestProfile_GridState(t *testing.T) {
	g := testGlobal(t)
	p := testProfile(t, g, referenceHero(0, t0))
	if err := p.PlaceHero(g, house.Placement{HeroIndex: 0, X: 2, Y: 1, IsRestroom: true}, t0); err != nil {
		t.Fatal(err)
	}

	gs, err := p.GridState()
	if err != nil {
		t.Fatal(err)
	}
	if len(gs.Cells) != 16 || gs.RestroomsUsed != 1 {
		t.Fatalf("grid = %+v", gs)
	}
	cell := gs.Cells[1*4+2]
	if cell.HeroIndex == nil || *cell.HeroIndex != 0 || !cell.IsRestroom {
		t.Errorf("cell = %+v", cell)
	}
}
