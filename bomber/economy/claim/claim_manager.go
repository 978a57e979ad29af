// Package claim serializes operations against the same player profile inside
// one process. The database transaction is still the source of truth; the
// lock only keeps concurrent requests for one owner from fighting over a row.
package claim

import (
	"context"
	"log/slog"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type lockEntry struct {
	sem      chan struct{}
	refs     int
	lastUsed time.Time
}

type Manager struct {
	locks       *xsync.MapOf[string, *lockEntry]
	idleTimeout time.Duration
	now         func() time.Time
}

func NewManager(idleTimeout time.Duration) *Manager {
	return &Manager{
		locks:       xsync.NewMapOf[string, *lockEntry](),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Lock blocks until owner's lock is held or ctx is done. The returned func
// releases it and must be called exactly once.
func (m *Manager) Lock(ctx context.Context, owner string) (func(), error) {
	e := m.ref(owner)
	select {
	case e.sem <- struct{}{}:
		return func() {
			<-e.sem
			m.unref(owner)
		}, nil
	case <-ctx.Done():
		m.unref(owner)
		return nil, ctx.Err()
	}
}

// TryLock takes owner's lock only if nobody holds it.
func (m *Manager) TryLock(owner string) (func(), bool) {
	e := m.ref(owner)
	select {
	case e.sem <- struct{}{}:
		return func() {
			<-e.sem
			m.unref(owner)
		}, true
	default:
		m.unref(owner)
		return nil, false
	}
}

func (m *Manager) ref(owner string) *lockEntry {
	e, _ := m.locks.Compute(owner, func(e *lockEntry, loaded bool) (*lockEntry, bool) {
		if !loaded {
			e = &lockEntry{sem: make(chan struct{}, 1)}
		}
		e.refs++
		e.lastUsed = m.now()
		return e, false
	})
	return e
}

func (m *Manager) unref(owner string) {
	m.locks.Compute(owner, func(e *lockEntry, loaded bool) (*lockEntry, bool) {
		if !loaded {
			return e, true
		}
		e.refs--
		e.lastUsed = m.now()
		return e, false
	})
}

// ActiveLocks is the number of owners with a lock entry, held or idle.
func (m *Manager) ActiveLocks() int {
	return m.locks.Size()
}

func (m *Manager) cleanupExpiredLocks() int {
	now := m.now()
	var owners []string
	m.locks.Range(func(owner string, _ *lockEntry) bool {
		owners = append(owners, owner)
		return true
	})

	removed := 0
	for _, owner := range owners {
		m.locks.Compute(owner, func(e *lockEntry, loaded bool) (*lockEntry, bool) {
			if !loaded {
				return e, true
			}
			if e.refs == 0 && now.Sub(e.lastUsed) >= m.idleTimeout {
				removed++
				return e, true
			}
			return e, false
		})
	}
	return removed
}

func (m *Manager) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.cleanupExpiredLocks(); n > 0 {
					slog.Debug("Released idle profile locks",
						slog.String("type", "sys"),
						slog.Int("count", n))
				}
			}
		}
	}()
}
