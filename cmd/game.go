package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var genesisPath string

var initGameCMD = &cobra.Command{
	Use:   "init-game",
	Short: "create the global game state from a genesis file",
	RunE: func(cmd *cobra.Command, args []string) error {
		genesis, err := LoadGenesis(genesisPath)
		if err != nil {
			return err
		}

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Game.InitializeGame(cmd.Context(), genesis.Authority, genesis.Treasury, genesis.CurrencyMint, genesis.Params)
		if err != nil {
			return err
		}

		slog.Info("Game initialized",
			slog.String("type", "sys"),
			slog.String("authority", state.Authority),
			slog.String("treasury", state.Treasury))
		return nil
	},
}

var startGameCMD = &cobra.Command{
	Use:   "start-game <authority>",
	Short: "open the game to players",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Game.StartGame(cmd.Context(), args[0]); err != nil {
			return err
		}
		slog.Info("Game started", slog.String("type", "sys"))
		return nil
	},
}

var pauseCMD = &cobra.Command{
	Use:   "pause <authority> <on|off>",
	Short: "pause or resume every player operation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var paused bool
		switch args[1] {
		case "on":
			paused = true
		case "off":
		default:
			return fmt.Errorf("expected on or off, got %q", args[1])
		}

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Game.SetPaused(cmd.Context(), args[0], paused)
	},
}

var gameInfoCMD = &cobra.Command{
	Use:   "info",
	Short: "print the global game state",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		info, err := app.Game.GameInfo(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "authority:      %s\n", info.Authority)
		fmt.Fprintf(out, "started:        %t (paused %t)\n", info.GameStarted, info.Paused)
		fmt.Fprintf(out, "houses:         %d\n", info.HouseCount)
		fmt.Fprintf(out, "heroes:         %d\n", info.UniqueHeroesCount)
		fmt.Fprintf(out, "hash power:     %d\n", info.TotalHashPower)
		fmt.Fprintf(out, "mined / burned: %d / %d\n", info.TotalMined, info.TotalBurned)
		fmt.Fprintf(out, "rate:           %d (epoch %d, %d until halving)\n", info.CurrentRate, info.HalvingEpoch, info.UntilNextHalving)
		return nil
	},
}

func init() {
	initGameCMD.Flags().StringVarP(&genesisPath, "genesis", "g", "genesis.yaml", "path to genesis file")
	rootCmd.AddCommand(initGameCMD, startGameCMD, pauseCMD, gameInfoCMD)
}
