package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/mock/gomock"

	"github.com/iceweasel13/solana-bomber/bomber/config"
	"github.com/iceweasel13/solana-bomber/bomber/database/models"
	"github.com/iceweasel13/solana-bomber/bomber/economy/ledger"
	"github.com/iceweasel13/solana-bomber/bomber/services/mock"
)

func outboxRow(id snowflake.ID, attempts int, r ledger.Request) *models.LedgerRequest {
	row, _ := models.NewLedgerRequest(id, "alice", "claim", r, time.Unix(t0, 0))
	row.Attempts = attempts
	return row
}

func TestLedgerDispatcher_DispatchOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	queue := mock.NewMockLedgerQueue(ctrl)
	client := mock.NewMockLedgerClient(ctrl)

	now := time.Unix(t0, 0)
	sent := outboxRow(1, 1, ledger.Mint("alice", 303))
	flaky := outboxRow(2, 2, ledger.Mint("bob", 7))
	rejected := outboxRow(3, 1, ledger.Burn(50))
	exhausted := outboxRow(4, 5, ledger.TransferNative("alice", "treasury", 1_000))

	queue.EXPECT().ClaimBatch(gomock.Any(), 10, config.LedgerLease).
		Return([]*models.LedgerRequest{sent, flaky, rejected, exhausted}, nil)

	client.EXPECT().Submit(gomock.Any(), sent.ID, ledger.Mint("alice", 303)).Return(nil)
	client.EXPECT().Submit(gomock.Any(), flaky.ID, gomock.Any()).Return(errors.New("connection reset"))
	client.EXPECT().Submit(gomock.Any(), rejected.ID, gomock.Any()).Return(fmt.Errorf("%w: status 400", ErrPermanent))
	client.EXPECT().Submit(gomock.Any(), exhausted.ID, gomock.Any()).Return(errors.New("timeout"))

	queue.EXPECT().MarkSent(gomock.Any(), sent.ID).Return(nil)
	queue.EXPECT().MarkRetry(gomock.Any(), flaky.ID, "connection reset", now.Add(2*config.LedgerRetryBase)).Return(nil)
	queue.EXPECT().MarkFailed(gomock.Any(), rejected.ID, gomock.Any()).Return(nil)
	queue.EXPECT().MarkFailed(gomock.Any(), exhausted.ID, "timeout").Return(nil)

	d := NewLedgerDispatcher(queue, client, DispatcherConfig{BatchSize: 10, MaxConcurrency: 2, MaxAttempts: 5})
	d.now = func() time.Time { return now }

	res, err := d.DispatchOnce(context.Background())
	if err != nil {
		t.Fatalf("DispatchOnce() error = %v", err)
	}
	want := DispatchResult{Sent: 1, Retried: 1, Failed: 2}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}
}

func TestLedgerDispatcher_EmptyBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	queue := mock.NewMockLedgerQueue(ctrl)
	client := mock.NewMockLedgerClient(ctrl)

	queue.EXPECT().ClaimBatch(gomock.Any(), config.DefaultBatchSize, config.LedgerLease).Return(nil, nil)

	res, err := NewLedgerDispatcher(queue, client, DispatcherConfig{}).DispatchOnce(context.Background())
	if err != nil || res.Total() != 0 {
		t.Errorf("DispatchOnce() = %+v, %v", res, err)
	}
}

func TestLedgerDispatcher_QueueErrorSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	queue := mock.NewMockLedgerQueue(ctrl)
	client := mock.NewMockLedgerClient(ctrl)

	row := outboxRow(1, 1, ledger.Mint("alice", 1))
	queue.EXPECT().ClaimBatch(gomock.Any(), gomock.Any(), gomock.Any()).Return([]*models.LedgerRequest{row}, nil)
	client.EXPECT().Submit(gomock.Any(), row.ID, gomock.Any()).Return(nil)
	queue.EXPECT().MarkSent(gomock.Any(), row.ID).Return(errors.New("db down"))

	if _, err := NewLedgerDispatcher(queue, client, DispatcherConfig{}).DispatchOnce(context.Background()); err == nil {
		t.Error("DispatchOnce() error = nil, want queue error")
	}
}

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, config.LedgerRetryBase},
		{1, config.LedgerRetryBase},
		{2, 2 * config.LedgerRetryBase},
		{4, 8 * config.LedgerRetryBase},
		{100, config.LedgerRetryMax},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.attempts), func(t *testing.T) {
			if got := retryBackoff(tt.attempts); got != tt.want {
				t.Errorf("retryBackoff(%d) = %v, want %v", tt.attempts, got, tt.want)
			}
		})
	}
}
