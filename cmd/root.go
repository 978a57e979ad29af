// Package cmd holds the bomberctl operator commands.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iceweasel13/solana-bomber/bomber"
	"github.com/iceweasel13/solana-bomber/bomber/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "bomberctl",
	Short:         "operator tooling for the bomber game server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "path to config")
}

func Execute() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(1)
	}
}

// openApp loads the config, installs the logger and connects to the database.
func openApp(cmd *cobra.Command) (*bomber.App, error) {
	cfg, err := bomber.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(logger.NewHandlerWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, !cfg.Log.NoColor)))

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	app := bomber.New(*cfg, "cli", "")
	if err := app.Open(ctx); err != nil {
		return nil, err
	}
	return app, nil
}
