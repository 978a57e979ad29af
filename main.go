package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iceweasel13/solana-bomber/backend"
	"github.com/iceweasel13/solana-bomber/backend/handlers"
	"github.com/iceweasel13/solana-bomber/bomber"
	"github.com/iceweasel13/solana-bomber/bomber/config"
	"github.com/iceweasel13/solana-bomber/bomber/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	runDispatcher := flag.Bool("dispatch-ledger", true, "Whether to run the ledger dispatcher in this process")
	flag.Parse()

	cfg, err := bomber.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	customHandler := logger.NewHandlerWithWriter(os.Stdout, cfg.Log.Level, !cfg.Log.NoColor)
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Bomber",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	app := bomber.New(*cfg, version, commit)
	if err := app.Open(openCtx); err != nil {
		cancel()
		slog.Error("Failed to open application", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}
	cancel()
	defer app.Close()

	app.Locks.StartCleanupRoutine(ctx, config.ProfileLockSweep)
	go app.Events.Run(ctx)

	if *runDispatcher {
		dispatcher, err := app.Dispatcher()
		switch {
		case errors.Is(err, bomber.ErrLedgerDisabled):
			slog.Warn("Ledger dispatcher disabled, requests stay queued", slog.String("type", "ledger"))
		case err != nil:
			slog.Error("Failed to create ledger dispatcher", slog.String("type", "ledger"), slog.Any("error", err))
			os.Exit(-1)
		default:
			dispatcher.Start(ctx)
		}
	}

	monitor, err := app.Monitor()
	if err != nil {
		slog.Error("Failed to create economy monitor", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}
	monitor.Start(ctx)

	// Live events
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", app.Events.ServeWs)
	eventServer := &http.Server{
		Addr:              cfg.Server.EventsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("Starting event server", slog.String("type", "sys"), slog.String("address", cfg.Server.EventsAddr))
		if err := eventServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Event server failed", slog.String("type", "sys"), slog.Any("error", err))
			stop()
		}
	}()

	webApp := &handlers.WebApp{
		Game:    app.Game,
		Ping:    app.DB.Ping,
		Version: version,
		Commit:  commit,
	}
	api := backend.New(ctx, cfg.Server, webApp)
	go func() {
		slog.Info("Starting API server", slog.String("type", "sys"), slog.String("address", cfg.Server.Addr))
		if err := api.Listen(cfg.Server.Addr); err != nil {
			slog.Error("API server failed", slog.String("type", "sys"), slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...", slog.String("type", "sys"))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer shutdownCancel()

	if err := api.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("API shutdown error", slog.String("type", "sys"), slog.Any("error", err))
	}
	if err := eventServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Event server shutdown error", slog.String("type", "sys"), slog.Any("error", err))
	}

	drained := make(chan struct{})
	go func() {
		app.Events.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		slog.Warn("Event subscribers did not disconnect in time", slog.String("type", "sys"))
	}

	slog.Info("Shutdown complete", slog.String("type", "sys"))
}
