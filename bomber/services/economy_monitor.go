package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iceweasel13/solana-bomber/bomber/config"
	"github.com/iceweasel13/solana-bomber/bomber/database/models"
	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
)

type StatsRecorder interface {
	Create(ctx context.Context, stats *models.EconomyStats) error
	GetLatest(ctx context.Context) (*models.EconomyStats, error)
}

type LedgerCounter interface {
	CountByStatus(ctx context.Context) (map[models.LedgerStatus]int, error)
}

type SnapshotStore interface {
	Archive(ctx context.Context, at time.Time, v any) (string, error)
}

type GlobalLoader interface {
	LoadGlobal(ctx context.Context) (*global.State, error)
}

// EconomySnapshot is the archived document.
type EconomySnapshot struct {
	Stats *models.EconomyStats `json:"stats"`
	Info  global.Info          `json:"info"`
}

// EconomyMonitor periodically records issuance statistics.
type EconomyMonitor struct {
	state     GlobalLoader
	statsRepo StatsRecorder
	ledger    LedgerCounter
	archiver  SnapshotStore
	events    EventPublisher

	checkInterval time.Duration
	now           func() time.Time

	mutex     sync.Mutex
	lastEpoch *uint64
}

// NewEconomyMonitor builds a monitor. archiver may be nil to skip snapshots.
func NewEconomyMonitor(state GlobalLoader, statsRepo StatsRecorder, ledger LedgerCounter, archiver SnapshotStore, events EventPublisher, interval time.Duration) *EconomyMonitor {
	if interval <= 0 {
		interval = config.MonitorInterval
	}
	if events == nil {
		events = NopPublisher
	}
	return &EconomyMonitor{
		state:         state,
		statsRepo:     statsRepo,
		ledger:        ledger,
		archiver:      archiver,
		events:        events,
		checkInterval: interval,
		now:           time.Now,
	}
}

func (m *EconomyMonitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.RunCycle(ctx); err != nil {
					slog.Error("Failed to run monitoring cycle",
						slog.String("type", "error"),
						slog.Any("error", err))
				}
			}
		}
	}()
}

// RunCycle records one statistics row and returns it.
func (m *EconomyMonitor) RunCycle(ctx context.Context) (*models.EconomyStats, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	g, err := m.state.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load global state: %w", err)
	}
	info, err := g.Info()
	if err != nil {
		return nil, err
	}

	if m.lastEpoch == nil {
		// a halving that happened while the process was down is still announced
		if latest, err := m.statsRepo.GetLatest(ctx); err == nil {
			epoch := uint64(latest.HalvingEpoch)
			m.lastEpoch = &epoch
		}
	}

	now := m.now()
	stats := models.NewEconomyStats(info, now)
	if m.ledger != nil {
		counts, err := m.ledger.CountByStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count ledger requests: %w", err)
		}
		stats.PendingLedgerRequests = counts[models.LedgerStatusPending]
		stats.FailedLedgerRequests = counts[models.LedgerStatusFailed]
	}

	if err := m.statsRepo.Create(ctx, stats); err != nil {
		return nil, fmt.Errorf("failed to store economy stats: %w", err)
	}

	if m.lastEpoch != nil && info.HalvingEpoch != *m.lastEpoch {
		slog.Info("Halving epoch changed",
			slog.String("type", "sys"),
			slog.Uint64("from", *m.lastEpoch),
			slog.Uint64("to", info.HalvingEpoch),
			slog.Uint64("rate", info.CurrentRate))
		m.events.Publish(Event{
			Type:    EventHalving,
			Payload: map[string]uint64{"epoch": info.HalvingEpoch, "rate": info.CurrentRate},
			Time:    now.UTC(),
		})
	}
	epoch := info.HalvingEpoch
	m.lastEpoch = &epoch

	m.events.Publish(Event{Type: EventEconomyStats, Payload: stats, Time: now.UTC()})

	if stats.FailedLedgerRequests > 0 {
		slog.Warn("Ledger requests need attention",
			slog.String("type", "ledger"),
			slog.Int("failed", stats.FailedLedgerRequests))
	}

	if m.archiver != nil {
		key, err := m.archiver.Archive(ctx, now, EconomySnapshot{Stats: stats, Info: info})
		if err != nil {
			// stats are already stored; a missed snapshot is not fatal
			slog.Error("Failed to archive economy snapshot",
				slog.String("type", "error"),
				slog.Any("error", err))
		} else {
			slog.Debug("Economy snapshot archived", slog.String("key", key))
		}
	}

	return stats, nil
}
