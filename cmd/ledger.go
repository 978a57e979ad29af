package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/disgoorg/snowflake/v2"
	"github.com/spf13/cobra"
)

var dispatchOnce bool

var dispatchLedgerCMD = &cobra.Command{
	Use:   "dispatch-ledger",
	Short: "deliver queued ledger requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		dispatcher, err := app.Dispatcher()
		if err != nil {
			return err
		}

		if dispatchOnce {
			res, err := dispatcher.DispatchOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d, retried %d, failed %d\n", res.Sent, res.Retried, res.Failed)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		dispatcher.Start(ctx)
		slog.Info("Ledger dispatcher running. Press CTRL-C to exit.", slog.String("type", "ledger"))
		<-ctx.Done()
		return nil
	},
}

var requeueCMD = &cobra.Command{
	Use:   "requeue <request-id>...",
	Short: "move failed ledger requests back to pending",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]snowflake.ID, len(args))
		for i, arg := range args {
			id, err := snowflake.Parse(arg)
			if err != nil {
				return fmt.Errorf("invalid request id %q: %w", arg, err)
			}
			ids[i] = id
		}

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		for _, id := range ids {
			if err := app.LedgerRepository.Requeue(cmd.Context(), id); err != nil {
				return fmt.Errorf("requeue %s: %w", id, err)
			}
			slog.Info("Ledger request requeued", slog.String("type", "ledger"), slog.String("id", id.String()))
		}
		return nil
	},
}

var ledgerStatusCMD = &cobra.Command{
	Use:   "ledger-status",
	Short: "count ledger requests by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		counts, err := app.LedgerRepository.CountByStatus(cmd.Context())
		if err != nil {
			return err
		}
		for status, n := range counts {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %d\n", status, n)
		}
		return nil
	},
}

var snapshotCMD = &cobra.Command{
	Use:   "snapshot",
	Short: "record one economy statistics row now",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		monitor, err := app.Monitor()
		if err != nil {
			return err
		}
		stats, err := monitor.RunCycle(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded stats at %s\n", stats.Timestamp.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	dispatchLedgerCMD.Flags().BoolVar(&dispatchOnce, "once", false, "deliver a single batch and exit")
	rootCmd.AddCommand(dispatchLedgerCMD, requeueCMD, ledgerStatusCMD, snapshotCMD)
}
