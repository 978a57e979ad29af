package heroes

import (
	"reflect"
	"testing"
)

func TestRarityFromRoll(t *testing.T) {
	tests := []struct {
		name string
		roll uint16
		want Rarity
	}{
		{name: "Lowest", roll: 0, want: Common},
		{name: "CommonUpper", roll: 499, want: Common},
		{name: "UncommonLower", roll: 500, want: Uncommon},
		{name: "UncommonUpper", roll: 799, want: Uncommon},
		{name: "RareLower", roll: 800, want: Rare},
		{name: "RareUpper", roll: 949, want: Rare},
		{name: "SuperRareLower", roll: 950, want: SuperRare},
		{name: "SuperRareUpper", roll: 989, want: SuperRare},
		{name: "EpicLower", roll: 990, want: Epic},
		{name: "EpicUpper", roll: 998, want: Epic},
		{name: "LegendaryLower", roll: 999, want: Legendary},
		{name: "Highest", roll: 1000, want: Legendary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RarityFromRoll(tt.roll); got != tt.want {
				t.Errorf("RarityFromRoll(%d) = %v, want %v", tt.roll, got, tt.want)
			}
		})
	}
}

func TestRarityDistribution(t *testing.T) {
	counts := map[Rarity]int{}
	for roll := uint16(0); roll < RarityRollDomain; roll++ {
		counts[RarityFromRoll(roll)]++
	}

	want := map[Rarity]int{
		Common:    500,
		Uncommon:  300,
		Rare:      150,
		SuperRare: 40,
		Epic:      9,
		Legendary: 2,
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("distribution = %v, want %v", counts, want)
	}
}

func TestRarityText(t *testing.T) {
	for r := Common; r <= Legendary; r++ {
		text, err := r.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d) error = %v", r, err)
		}
		var back Rarity
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s) error = %v", text, err)
		}
		if back != r {
			t.Errorf("round trip %v = %v", r, back)
		}
	}

	var r Rarity
	if err := r.UnmarshalText([]byte("Mythic")); err == nil {
		t.Error("UnmarshalText(Mythic) expected error")
	}
}

func TestHero_MiningPower(t *testing.T) {
	tests := []struct {
		name string
		hero Hero
		want uint64
	}{
		{
			name: "Reference",
			hero: Hero{Power: 10, BombCount: 1, BombRange: 3, Speed: 10},
			want: 31,
		},
		{
			name: "EvenRange",
			hero: Hero{Power: 3, BombCount: 2, BombRange: 4, Speed: 1},
			want: 6 + 2 + 2,
		},
		{
			name: "Zero",
			hero: Hero{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hero.MiningPower(); got != tt.want {
				t.Errorf("MiningPower() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(7, 1_700_000_000, 42, "player-one")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := Generate(7, 1_700_000_000, 42, "player-one")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Generate() not deterministic: %+v vs %+v", a, b)
	}

	if Seed(1_700_000_000, 42, "player-one", 7) == Seed(1_700_000_000, 43, "player-one", 7) {
		t.Error("Seed() ignores the sequence counter")
	}
}

func TestGenerate_StatsWithinTable(t *testing.T) {
	for seq := uint64(0); seq < 2000; seq++ {
		h, err := Generate(uint16(seq%50), 1_700_000_000+int64(seq), seq, "owner-with-a-long-identity-string-over-32-bytes")
		if err != nil {
			t.Fatalf("Generate(seq=%d) error = %v", seq, err)
		}

		table := h.Rarity.Stats()
		checks := []struct {
			stat string
			r    StatRange
			v    uint32
		}{
			{"power", table.Power, h.Power},
			{"speed", table.Speed, h.Speed},
			{"stamina", table.Stamina, h.Stamina},
			{"bomb_count", table.BombCount, uint32(h.BombCount)},
			{"bomb_range", table.BombRange, uint32(h.BombRange)},
		}
		for _, c := range checks {
			if !c.r.Contains(c.v) {
				t.Fatalf("seq %d %v %s = %d outside [%d,%d]", seq, h.Rarity, c.stat, c.v, c.r.Min, c.r.Max)
			}
		}

		if h.SkinID < 1 || h.SkinID > SkinCount {
			t.Fatalf("seq %d skin = %d", seq, h.SkinID)
		}
		wantHP := (h.Power + h.Speed + h.Stamina) * h.Rarity.HPMultiplier()
		if h.HP != wantHP || h.MaxHP != wantHP {
			t.Fatalf("seq %d hp = %d/%d, want %d", seq, h.HP, h.MaxHP, wantHP)
		}
		if h.MaxStamina != h.Stamina {
			t.Fatalf("seq %d max_stamina = %d, want %d", seq, h.MaxStamina, h.Stamina)
		}
		if h.LastActionTime != 1_700_000_000+int64(seq) {
			t.Fatalf("seq %d last_action_time = %d", seq, h.LastActionTime)
		}
	}
}
