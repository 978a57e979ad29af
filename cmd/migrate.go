package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "create or upgrade the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		// opening the app applies any pending schema version
		app, err := openApp(cmd)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		defer app.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "schema of %s is current\n", app.Cfg.DB.Database)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCMD)
}
