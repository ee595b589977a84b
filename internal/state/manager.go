// Package state owns the per-user state objects. The manager is built once
// at startup and handed to the presentation layer by reference; there are no
// module-level singletons to reach for.
package state

import (
	"context"
	"sync"

	"github.com/MukamaJ-2/crypto-vault/internal/cache"
	"github.com/MukamaJ-2/crypto-vault/internal/ledger"
	"github.com/MukamaJ-2/crypto-vault/internal/session"
	"github.com/MukamaJ-2/crypto-vault/internal/store"

	"go.uber.org/zap"
)

// Manager builds and retains one session store and one ledger store per
// user. Stores live for the process lifetime once created; their durable
// snapshots bridge restarts.
type Manager struct {
	accounts store.AccountService
	rows     store.LedgerStore
	cache    *cache.Cache
	log      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session.Store
	ledgers  map[string]*ledger.Store
}

func NewManager(accounts store.AccountService, rows store.LedgerStore, c *cache.Cache, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		accounts: accounts,
		rows:     rows,
		cache:    c,
		log:      log,
		sessions: make(map[string]*session.Store),
		ledgers:  make(map[string]*ledger.Store),
	}
}

// NewSession builds an unattached session store for a login or registration
// attempt. Adopt it once the principal is known.
func (m *Manager) NewSession() *session.Store {
	return session.New(m.accounts, m.rows, m.cache, m.log)
}

// Adopt registers an authenticated session store under its user id.
func (m *Manager) Adopt(userID string, s *session.Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
}

// SessionFor returns the session store of an already-verified principal,
// resuming it from the durable snapshot or the row store on first use.
func (m *Manager) SessionFor(ctx context.Context, userID, token string) *session.Store {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if ok {
		return s
	}

	s = session.New(m.accounts, m.rows, m.cache, m.log)
	s.Resume(ctx, userID, token)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[userID]; ok {
		return existing
	}
	m.sessions[userID] = s
	return s
}

// LedgerFor returns the ledger store of a user, building it on first use.
func (m *Manager) LedgerFor(userID string) *ledger.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.ledgers[userID]; ok {
		return l
	}
	l := ledger.New(m.rows, m.cache, m.log, userID)
	m.ledgers[userID] = l
	return l
}

// Drop forgets a user's state objects, e.g. after logout.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	delete(m.ledgers, userID)
}
