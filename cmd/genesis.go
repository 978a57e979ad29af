package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
)

// Genesis is the initial game configuration read by init-game.
type Genesis struct {
	Authority    string        `yaml:"authority"`
	Treasury     string        `yaml:"treasury"`
	CurrencyMint string        `yaml:"currency_mint"`
	Params       global.Params `yaml:"params"`
}

// LoadGenesis reads a genesis file. Params left out keep their launch defaults.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis: %w", err)
	}

	g := Genesis{Params: global.DefaultParams()}
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to decode genesis: %w", err)
	}
	if g.Authority == "" || g.Treasury == "" {
		return nil, fmt.Errorf("genesis needs both authority and treasury")
	}
	if err := g.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis params: %w", err)
	}
	return &g, nil
}
