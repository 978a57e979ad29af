package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/iceweasel13/solana-bomber/bomber/config"
	"github.com/iceweasel13/solana-bomber/bomber/database/models"
	"github.com/iceweasel13/solana-bomber/bomber/logger"
)

//go:generate mockgen -source=ledger_dispatcher.go -destination=mock/ledger_queue.go -package=mock

// LedgerQueue is the outbox side the dispatcher needs.
type LedgerQueue interface {
	ClaimBatch(ctx context.Context, limit int, lease time.Duration) ([]*models.LedgerRequest, error)
	MarkSent(ctx context.Context, id snowflake.ID) error
	MarkRetry(ctx context.Context, id snowflake.ID, cause string, next time.Time) error
	MarkFailed(ctx context.Context, id snowflake.ID, cause string) error
}

type DispatcherConfig struct {
	BatchSize      int
	MaxConcurrency int
	MaxAttempts    int
	PollInterval   time.Duration
	Lease          time.Duration
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = config.DefaultBatchSize
	}
	c.BatchSize = min(c.BatchSize, config.MaxBatchSize)
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = config.LedgerMaxConcurrency
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = config.LedgerMaxAttempts
	}
	if c.PollInterval <= 0 {
		c.PollInterval = config.LedgerPollInterval
	}
	if c.Lease <= 0 {
		c.Lease = config.LedgerLease
	}
	return c
}

// DispatchResult counts the outcomes of one dispatch pass.
type DispatchResult struct {
	Sent    int
	Retried int
	Failed  int
}

func (r DispatchResult) Total() int {
	return r.Sent + r.Retried + r.Failed
}

// LedgerDispatcher drains the ledger outbox. Delivery is at least once; the
// request id travels as the idempotency key so redelivery is harmless.
type LedgerDispatcher struct {
	queue  LedgerQueue
	client LedgerClient
	cfg    DispatcherConfig
	now    func() time.Time

	mu sync.Mutex
}

func NewLedgerDispatcher(queue LedgerQueue, client LedgerClient, cfg DispatcherConfig) *LedgerDispatcher {
	return &LedgerDispatcher{
		queue:  queue,
		client: client,
		cfg:    cfg.withDefaults(),
		now:    time.Now,
	}
}

func (d *LedgerDispatcher) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(d.cfg.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for {
					res, err := d.DispatchOnce(ctx)
					if err != nil {
						slog.Error("Ledger dispatch failed",
							slog.String("type", "ledger"),
							slog.Any("error", err))
						break
					}
					// a full batch means more is probably waiting
					if res.Total() < d.cfg.BatchSize {
						break
					}
				}
			}
		}
	}()
}

type outcome int

const (
	// left leased, picked up again once the lease runs out
	outcomeSkipped outcome = iota
	outcomeSent
	outcomeRetry
	outcomeFailed
)

// DispatchOnce claims one batch of due requests and delivers it.
func (d *LedgerDispatcher) DispatchOnce(ctx context.Context) (DispatchResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	batch, err := d.queue.ClaimBatch(ctx, d.cfg.BatchSize, d.cfg.Lease)
	if err != nil {
		return DispatchResult{}, err
	}
	if len(batch) == 0 {
		return DispatchResult{}, nil
	}

	outcomes := make([]outcome, len(batch))
	sem := semaphore.NewWeighted(int64(d.cfg.MaxConcurrency))
	g, gctx := errgroup.WithContext(ctx)

	for i, req := range batch {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		i, req := i, req
		g.Go(func() error {
			defer sem.Release(1)
			o, err := d.deliver(gctx, req)
			outcomes[i] = o
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return DispatchResult{}, err
	}

	var res DispatchResult
	for _, o := range outcomes {
		switch o {
		case outcomeSent:
			res.Sent++
		case outcomeRetry:
			res.Retried++
		case outcomeFailed:
			res.Failed++
		}
	}
	slog.Info("Ledger batch dispatched",
		slog.String("type", "ledger"),
		slog.Int("sent", res.Sent),
		slog.Int("retried", res.Retried),
		slog.Int("failed", res.Failed))
	return res, nil
}

// deliver submits one request and records the outcome. Only queue errors are
// returned; ledger errors become retries or failures.
func (d *LedgerDispatcher) deliver(ctx context.Context, req *models.LedgerRequest) (outcome, error) {
	err := d.client.Submit(ctx, req.ID, req.Request())
	if err == nil {
		return outcomeSent, d.queue.MarkSent(ctx, req.ID)
	}

	delivery := logger.LedgerDelivery{
		ID:      req.ID.String(),
		Kind:    string(req.Kind),
		Owner:   req.Owner,
		Attempt: req.Attempts,
		Err:     err,
	}

	if errors.Is(err, ErrPermanent) || req.Attempts >= d.cfg.MaxAttempts {
		delivery.Final = true
		logger.LogLedgerDelivery(delivery)
		return outcomeFailed, d.queue.MarkFailed(ctx, req.ID, err.Error())
	}

	next := d.now().Add(retryBackoff(req.Attempts))
	delivery.NextTry = next
	logger.LogLedgerDelivery(delivery)
	return outcomeRetry, d.queue.MarkRetry(ctx, req.ID, err.Error(), next)
}

// retryBackoff doubles from LedgerRetryBase per attempt, capped at LedgerRetryMax.
func retryBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := config.LedgerRetryBase
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= config.LedgerRetryMax {
			return config.LedgerRetryMax
		}
	}
	return delay
}
