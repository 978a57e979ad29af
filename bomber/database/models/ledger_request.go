package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/iceweasel13/solana-bomber/bomber/economy/ledger"
	"github.com/iceweasel13/solana-bomber/bomber/economy/utils"
)

type LedgerStatus string

const (
	LedgerStatusPending LedgerStatus = "pending"
	LedgerStatusSent    LedgerStatus = "sent"
	LedgerStatusFailed  LedgerStatus = "failed"
)

// LedgerRequest is an outbox row. It is written in the same transaction as
// the state change that caused it and delivered afterwards, at least once.
// ID doubles as the idempotency key sent to the ledger.
type LedgerRequest struct {
	bun.BaseModel `bun:"table:ledger_requests,alias:lr"`

	ID            snowflake.ID `bun:"id,pk" json:"id"`
	Owner         string       `bun:"owner,notnull" json:"owner"`
	Operation     string       `bun:"operation,notnull" json:"operation"`
	Kind          ledger.Kind  `bun:"kind,notnull" json:"kind"`
	FromIdentity  string       `bun:"from_identity,nullzero" json:"from,omitempty"`
	ToIdentity    string       `bun:"to_identity,nullzero" json:"to,omitempty"`
	Amount        int64        `bun:"amount,notnull" json:"amount"`
	Status        LedgerStatus `bun:"status,notnull,default:'pending'" json:"status"`
	Attempts      int          `bun:"attempts,notnull,default:0" json:"attempts"`
	LastError     string       `bun:"last_error,nullzero" json:"last_error,omitempty"`
	NextAttemptAt time.Time    `bun:"next_attempt_at,notnull" json:"next_attempt_at"`
	CreatedAt     time.Time    `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time    `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
	SentAt        time.Time    `bun:"sent_at,nullzero" json:"sent_at,omitempty"`
}

func NewLedgerRequest(id snowflake.ID, owner, operation string, r ledger.Request, now time.Time) (*LedgerRequest, error) {
	amount, err := utils.ToInt64(r.Amount)
	if err != nil {
		return nil, err
	}
	return &LedgerRequest{
		ID:            id,
		Owner:         owner,
		Operation:     operation,
		Kind:          r.Kind,
		FromIdentity:  r.From,
		ToIdentity:    r.To,
		Amount:        amount,
		Status:        LedgerStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (m *LedgerRequest) Request() ledger.Request {
	return ledger.Request{
		Kind:   m.Kind,
		From:   m.FromIdentity,
		To:     m.ToIdentity,
		Amount: uint64(max(m.Amount, 0)),
	}
}
