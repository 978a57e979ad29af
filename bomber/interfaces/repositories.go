package interfaces

import (
	"context"

	"github.com/iceweasel13/solana-bomber/bomber/database/models"
	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
	"github.com/iceweasel13/solana-bomber/bomber/economy/ledger"
	"github.com/iceweasel13/solana-bomber/bomber/economy/profile"
)

// GameStore persists the global state and player profiles.
type GameStore interface {
	// InTx runs fn in one serializable transaction. Everything fn writes
	// through tx, ledger requests included, commits or rolls back together.
	InTx(ctx context.Context, fn func(ctx context.Context, tx GameTx) error) error

	LoadGlobal(ctx context.Context) (*global.State, error)
	LoadProfile(ctx context.Context, owner string) (*profile.Profile, error)
	ReferralCount(ctx context.Context, owner string) (int, error)
	ClaimHistory(ctx context.Context, owner string, limit int) ([]*models.ClaimRecord, error)
	Leaderboard(ctx context.Context, limit int) ([]*models.PlayerProfile, error)
}

// GameTx is the write side of one GameStore transaction.
type GameTx interface {
	LockGlobal(ctx context.Context) (*global.State, error)
	CreateGlobal(ctx context.Context, state *global.State) error
	SaveGlobal(ctx context.Context, state *global.State) error

	LockProfile(ctx context.Context, owner string) (*profile.Profile, error)
	ProfileExists(ctx context.Context, owner string) (bool, error)
	CreateProfile(ctx context.Context, p *profile.Profile) error
	SaveProfile(ctx context.Context, p *profile.Profile) error

	// Enqueue adds ledger requests to the outbox.
	Enqueue(ctx context.Context, owner, operation string, requests []ledger.Request) error
	RecordClaim(ctx context.Context, receipt profile.ClaimReceipt) error
}
