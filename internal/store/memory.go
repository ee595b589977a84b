package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MukamaJ-2/crypto-vault/internal/models"

	"github.com/google/uuid"
)

// Memory is an in-memory implementation of AccountService and LedgerStore.
// It backs the state-layer tests so the lifecycle logic runs without a
// database, and mirrors the real store's observable behavior: authoritative
// rows, newest-created-first plan ordering, conditional status updates.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]memoryAccount // keyed by lowercased email
	sessions map[string]Session       // keyed by token
	users    map[string]models.User
	plans    map[string]memoryPlan
	txs      map[string][]models.Transaction // keyed by plan id
	seq      int64
	tokenTTL time.Duration
}

type memoryAccount struct {
	id       string
	email    string
	password string
}

type memoryPlan struct {
	plan models.SavingsPlan
	seq  int64 // insertion order, tiebreak for equal creation times
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]memoryAccount),
		sessions: make(map[string]Session),
		users:    make(map[string]models.User),
		plans:    make(map[string]memoryPlan),
		txs:      make(map[string][]models.Transaction),
		tokenTTL: 24 * time.Hour,
	}
}

// ---------- seeding ----------

// SeedAccount registers credentials directly, bypassing SignUp.
func (m *Memory) SeedAccount(id, email, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[strings.ToLower(email)] = memoryAccount{id: id, email: email, password: password}
}

// SeedUser inserts a profile row directly.
func (m *Memory) SeedUser(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// SeedPlan inserts a plan row directly; embedded transactions are detached
// into the transaction table the way the real store keeps them.
func (m *Memory) SeedPlan(plan models.SavingsPlan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range plan.Transactions {
		tx.PlanID = plan.ID
		m.txs[plan.ID] = append(m.txs[plan.ID], tx)
	}
	plan.Transactions = nil
	m.seq++
	m.plans[plan.ID] = memoryPlan{plan: plan, seq: m.seq}
}

// ---------- AccountService ----------

func (m *Memory) SignUp(_ context.Context, email, password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := m.accounts[key]; ok {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	account := memoryAccount{id: uuid.NewString(), email: email, password: password}
	m.accounts[key] = account
	return m.issueSessionLocked(account.id), nil
}

func (m *Memory) SignIn(_ context.Context, email, password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[strings.ToLower(email)]
	if !ok || account.password != password {
		return nil, errors.New("invalid email or password")
	}
	return m.issueSessionLocked(account.id), nil
}

func (m *Memory) SignOut(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[token]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, token)
	return nil
}

func (m *Memory) CurrentSession(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[token]
	if !ok || time.Now().After(sess.ExpiresAt) {
		return nil, ErrNotFound
	}
	out := sess
	return &out, nil
}

func (m *Memory) issueSessionLocked(userID string) *Session {
	sess := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(m.tokenTTL),
	}
	m.sessions[sess.Token] = sess
	out := sess
	return &out
}

// ---------- LedgerStore ----------

func (m *Memory) UserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := user
	return &out, nil
}

func (m *Memory) InsertUser(_ context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
	}

	row := *user
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	m.users[row.ID] = row
	out := row
	return &out, nil
}

func (m *Memory) UpdateUser(_ context.Context, id string, updates map[string]any) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	for column, value := range updates {
		s, _ := value.(string)
		switch column {
		case "name":
			user.Name = s
		case "email":
			user.Email = s
		case "btc_wallet_address":
			user.BTCWalletAddress = s
		case "solana_wallet_address":
			user.SolanaWalletAddress = s
		}
	}
	m.users[id] = user
	out := user
	return &out, nil
}

func (m *Memory) PlansByUser(_ context.Context, userID string) ([]models.SavingsPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []memoryPlan
	for _, p := range m.plans {
		if p.plan.UserID == userID {
			rows = append(rows, p)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].plan.CreatedAt.Equal(rows[j].plan.CreatedAt) {
			return rows[i].plan.CreatedAt.After(rows[j].plan.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	plans := make([]models.SavingsPlan, 0, len(rows))
	for _, p := range rows {
		plan := p.plan
		plan.Transactions = append([]models.Transaction(nil), m.txs[plan.ID]...)
		sort.SliceStable(plan.Transactions, func(i, j int) bool {
			return plan.Transactions[i].CreatedAt.Before(plan.Transactions[j].CreatedAt)
		})
		plans = append(plans, plan)
	}
	return plans, nil
}

func (m *Memory) InsertPlan(_ context.Context, plan *models.SavingsPlan) (*models.SavingsPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	row := *plan
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	row.Transactions = nil
	m.seq++
	m.plans[row.ID] = memoryPlan{plan: row, seq: m.seq}
	out := row
	return &out, nil
}

func (m *Memory) InsertTransaction(_ context.Context, tx *models.Transaction) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.plans[tx.PlanID]; !ok {
		return nil, ErrNotFound
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	row := *tx
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	m.txs[row.PlanID] = append(m.txs[row.PlanID], row)
	out := row
	return &out, nil
}

func (m *Memory) UpdatePlanStatus(_ context.Context, planID string, from, to models.PlanStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plans[planID]
	if !ok {
		return ErrNotFound
	}
	if p.plan.Status != from {
		return ErrConflict
	}
	p.plan.Status = to
	m.plans[planID] = p
	return nil
}
