package bomber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iceweasel13/solana-bomber/bomber/config"
	"github.com/iceweasel13/solana-bomber/bomber/database"
	"github.com/iceweasel13/solana-bomber/bomber/database/repositories"
	"github.com/iceweasel13/solana-bomber/bomber/economy/claim"
	"github.com/iceweasel13/solana-bomber/bomber/services"
	"github.com/iceweasel13/solana-bomber/bomber/utils"
)

// ErrLedgerDisabled is returned by Dispatcher when no ledger endpoint is configured.
var ErrLedgerDisabled = errors.New("ledger endpoint is not configured")

func New(cfg Config, version string, commit string) *App {
	return &App{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
	}
}

// App holds the long lived components shared by the server and the CLI.
type App struct {
	Cfg     Config
	Version string
	Commit  string

	DB     *database.DB
	Store  *database.GameStore
	Locks  *claim.Manager
	Events *services.EventHub
	Game   *services.GameService

	LedgerRepository       repositories.LedgerRepository
	EconomyStatsRepository repositories.EconomyStatsRepository
}

// Open connects to the database, brings the schema up to date and builds the
// game service.
func (a *App) Open(ctx context.Context) error {
	start := time.Now()
	slog.Info("Initializing database connection...", slog.String("type", "db"))

	db, err := database.New(ctx, a.Cfg.DB)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	if err := db.InitializeSchema(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}
	slog.Info("Database ready",
		slog.String("type", "db"),
		slog.String("database", a.Cfg.DB.Database),
		slog.Duration("took", time.Since(start)))

	a.DB = db
	a.Store = database.NewGameStore(db.BunDB(), utils.NewIDGenerator())
	a.LedgerRepository = repositories.NewLedgerRepository(db.BunDB())
	a.EconomyStatsRepository = repositories.NewEconomyStatsRepository(db.BunDB())
	a.Locks = claim.NewManager(config.ProfileLockIdle)
	a.Events = services.NewEventHub()

	game, err := services.NewGameService(a.Store, a.Locks, a.Cfg.Server.CacheSize, a.Events)
	if err != nil {
		db.Close()
		return err
	}
	a.Game = game
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Dispatcher builds the ledger outbox dispatcher from the [ledger] section.
func (a *App) Dispatcher() (*services.LedgerDispatcher, error) {
	if a.Cfg.Ledger.Endpoint == "" {
		return nil, ErrLedgerDisabled
	}
	client := services.NewHTTPLedgerClient(a.Cfg.Ledger.Endpoint, a.Cfg.Ledger.APIKey, a.Cfg.Ledger.RequestTimeout.Std())
	return services.NewLedgerDispatcher(a.LedgerRepository, client, services.DispatcherConfig{
		BatchSize:      a.Cfg.Ledger.BatchSize,
		MaxConcurrency: a.Cfg.Ledger.MaxConcurrency,
		MaxAttempts:    a.Cfg.Ledger.MaxAttempts,
		PollInterval:   a.Cfg.Ledger.PollInterval.Std(),
	}), nil
}

// Monitor builds the economy monitor. Snapshots are archived only when the
// [snapshots] section is enabled.
func (a *App) Monitor() (*services.EconomyMonitor, error) {
	var archiver services.SnapshotStore
	if s := a.Cfg.Snapshots; s.Enabled {
		sa, err := services.NewSnapshotArchiver(s.Key, s.Secret, s.Region, s.Endpoint, s.Bucket, s.Prefix)
		if err != nil {
			return nil, err
		}
		archiver = sa
	}
	return services.NewEconomyMonitor(a.Store, a.EconomyStatsRepository, a.LedgerRepository, archiver, a.Events, a.Cfg.Monitor.Interval.Std()), nil
}
