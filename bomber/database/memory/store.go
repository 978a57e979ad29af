// Package memory is an in-process GameStore. Transactions run one at a time
// and publish their writes only when the callback succeeds. It backs the
// service and API tests and local tooling that has no database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/iceweasel13/solana-bomber/bomber/database/models"
	"github.com/iceweasel13/solana-bomber/bomber/economy"
	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
	"github.com/iceweasel13/solana-bomber/bomber/economy/ledger"
	"github.com/iceweasel13/solana-bomber/bomber/economy/profile"
	"github.com/iceweasel13/solana-bomber/bomber/interfaces"
)

// OutboxEntry is one enqueued ledger request.
type OutboxEntry struct {
	Owner     string
	Operation string
	Request   ledger.Request
}

type Store struct {
	mu       sync.Mutex
	global   *global.State
	profiles map[string]profile.Profile
	outbox   []OutboxEntry
	claims   []*models.ClaimRecord
	commits  int
}

func New() *Store {
	return &Store{profiles: make(map[string]profile.Profile)}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.GameTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{store: s, profiles: make(map[string]profile.Profile)}
	if err := fn(ctx, t); err != nil {
		return err
	}

	s.commits++
	if t.global != nil {
		g := *t.global
		s.global = &g
	}
	for owner, p := range t.profiles {
		s.profiles[owner] = p
	}
	s.outbox = append(s.outbox, t.outbox...)
	s.claims = append(s.claims, t.claims...)
	return nil
}

func (s *Store) LoadGlobal(context.Context) (*global.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.global == nil {
		return nil, economy.ErrNotInitialized
	}
	g := *s.global
	return &g, nil
}

func (s *Store) LoadProfile(_ context.Context, owner string) (*profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[owner]
	if !ok {
		return nil, economy.ErrProfileNotFound
	}
	c := p.Clone()
	return &c, nil
}

func (s *Store) ReferralCount(_ context.Context, owner string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.profiles {
		if p.Referrer == owner {
			n++
		}
	}
	return n, nil
}

func (s *Store) ClaimHistory(_ context.Context, owner string, limit int) ([]*models.ClaimRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ClaimRecord
	for i := len(s.claims) - 1; i >= 0 && len(out) < limit; i-- {
		if s.claims[i].Owner == owner {
			out = append(out, s.claims[i])
		}
	}
	return out, nil
}

func (s *Store) Leaderboard(_ context.Context, limit int) ([]*models.PlayerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.PlayerProfile
	for _, p := range s.profiles {
		out = append(out, &models.PlayerProfile{Owner: p.Owner, PlayerPower: int64(p.PlayerPower)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerPower > out[j].PlayerPower })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Seed stores p directly, bypassing the game rules.
func (s *Store) Seed(p profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.Owner] = p
}

// Requests returns every committed ledger request in commit order.
func (s *Store) Requests() []OutboxEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]OutboxEntry(nil), s.outbox...)
}

type tx struct {
	store    *Store
	global   *global.State
	profiles map[string]profile.Profile
	outbox   []OutboxEntry
	claims   []*models.ClaimRecord
}

func (t *tx) LockGlobal(context.Context) (*global.State, error) {
	if t.store.global == nil {
		return nil, economy.ErrNotInitialized
	}
	g := *t.store.global
	return &g, nil
}

func (t *tx) CreateGlobal(_ context.Context, state *global.State) error {
	if t.store.global != nil {
		return economy.ErrAlreadyInitialized
	}
	g := *state
	t.global = &g
	return nil
}

func (t *tx) SaveGlobal(_ context.Context, state *global.State) error {
	g := *state
	t.global = &g
	return nil
}

func (t *tx) LockProfile(_ context.Context, owner string) (*profile.Profile, error) {
	p, ok := t.store.profiles[owner]
	if !ok {
		return nil, economy.ErrProfileNotFound
	}
	c := p.Clone()
	return &c, nil
}

func (t *tx) ProfileExists(_ context.Context, owner string) (bool, error) {
	_, ok := t.store.profiles[owner]
	return ok, nil
}

func (t *tx) CreateProfile(_ context.Context, p *profile.Profile) error {
	if _, ok := t.store.profiles[p.Owner]; ok {
		return economy.ErrProfileAlreadyExists
	}
	t.profiles[p.Owner] = p.Clone()
	return nil
}

func (t *tx) SaveProfile(_ context.Context, p *profile.Profile) error {
	t.profiles[p.Owner] = p.Clone()
	return nil
}

func (t *tx) Enqueue(_ context.Context, owner, operation string, requests []ledger.Request) error {
	for _, r := range requests {
		if r.Amount == 0 {
			continue
		}
		t.outbox = append(t.outbox, OutboxEntry{Owner: owner, Operation: operation, Request: r})
	}
	return nil
}

func (t *tx) RecordClaim(_ context.Context, receipt profile.ClaimReceipt) error {
	id := snowflake.ID(len(t.store.claims) + len(t.claims) + 1)
	rec, err := models.NewClaimRecord(id, receipt)
	if err != nil {
		return err
	}
	t.claims = append(t.claims, rec)
	return nil
}

// Commits counts successful transactions.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// SetGlobal replaces the global state, bypassing the game rules.
func (s *Store) SetGlobal(g global.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = &g
}

var _ interfaces.GameStore = (*Store)(nil)
