// Package ledger holds the savings-plan state for one user: the plan
// collection with embedded transactions, plus the aggregates derived from it.
// Every mutation goes through the row store and ends in a full resync, so the
// local collection always mirrors the system of record; no client-side merge
// of optimistic and authoritative state ever happens.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MukamaJ-2/crypto-vault/internal/cache"
	"github.com/MukamaJ-2/crypto-vault/internal/models"
	"github.com/MukamaJ-2/crypto-vault/internal/rates"
	"github.com/MukamaJ-2/crypto-vault/internal/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const cacheNamespace = "savings-storage"

// Store is an explicit ledger-state object for one user. Operations record
// failures in Error() instead of returning them; WithdrawFunds additionally
// reports success as a bool.
type Store struct {
	rows     store.LedgerStore
	cache    *cache.Cache
	log      *zap.Logger
	validate *validator.Validate
	userID   string

	mu      sync.Mutex
	plans   []models.SavingsPlan
	loading bool
	err     string
}

type snapshot struct {
	Plans []models.SavingsPlan `json:"plans"`
}

// CreatePlanInput carries the user-supplied fields of a new savings plan.
type CreatePlanInput struct {
	Name               string            `validate:"required,max=64"`
	TargetAmount       float64           `validate:"gt=0"`
	WeeklyContribution float64           `validate:"gt=0"`
	PreferredCrypto    models.CryptoType `validate:"required,oneof=btc solana"`
}

// New builds the ledger state for userID, rehydrated from the durable
// snapshot when one exists. The snapshot only bridges the gap until the
// first resync.
func New(rows store.LedgerStore, c *cache.Cache, log *zap.Logger, userID string) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		rows:     rows,
		cache:    c,
		log:      log,
		validate: validator.New(),
		userID:   userID,
	}

	var snap snapshot
	if err := c.Load(cacheNamespace, userID, &snap); err == nil {
		s.plans = snap.Plans
	}
	return s
}

// FetchPlans replaces the plan collection wholesale with the store's current
// state, newest-created-first. This is the single resync primitive every
// mutation finishes with.
func (s *Store) FetchPlans(ctx context.Context) {
	s.begin()

	plans, err := s.rows.PlansByUser(ctx, s.userID)
	if err != nil {
		s.fail("failed to fetch plans", err)
		return
	}

	s.mu.Lock()
	s.plans = plans
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	s.saveSnapshot(plans)
}

// ValidatePlan checks a plan request without touching the store: positive
// amounts, a supported asset, and the affordability rule that 26 weekly
// contributions must reach the target.
func (s *Store) ValidatePlan(input CreatePlanInput) error {
	if err := s.validate.Struct(input); err != nil {
		return err
	}
	if input.WeeklyContribution*models.LockWeeks < input.TargetAmount {
		return fmt.Errorf("weekly contributions over the %d-week lock period do not reach the target", models.LockWeeks)
	}
	return nil
}

// CreatePlan validates the input, inserts an active plan maturing 26 weeks
// from now, and prepends the authoritative row to the local collection.
// Invalid input is rejected before any store call.
func (s *Store) CreatePlan(ctx context.Context, input CreatePlanInput) {
	if err := s.ValidatePlan(input); err != nil {
		s.fail("invalid plan", err)
		return
	}

	s.begin()

	now := time.Now()
	plan, err := s.rows.InsertPlan(ctx, &models.SavingsPlan{
		UserID:             s.userID,
		Name:               input.Name,
		TargetAmount:       input.TargetAmount,
		WeeklyContribution: input.WeeklyContribution,
		PreferredCrypto:    input.PreferredCrypto,
		MaturityDate:       now.Add(models.LockWeeks * 7 * 24 * time.Hour),
		Status:             models.PlanActive,
		CreatedAt:          now,
	})
	if err != nil {
		s.fail("failed to create plan", err)
		return
	}

	s.mu.Lock()
	s.plans = append([]models.SavingsPlan{*plan}, s.plans...)
	plans := clonePlans(s.plans)
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	s.saveSnapshot(plans)
	s.log.Info("plan created",
		zap.String("plan_id", plan.ID),
		zap.String("user_id", s.userID),
		zap.Float64("target", plan.TargetAmount))
}

// AddTransaction records a settled ledger entry for a plan, then resyncs.
// Deposits are written as immediately completed; no pending path exists yet.
func (s *Store) AddTransaction(ctx context.Context, planID string, amount, cryptoAmount float64, cryptoType models.CryptoType, txType models.TxType) {
	s.begin()

	if _, err := s.rows.InsertTransaction(ctx, &models.Transaction{
		PlanID:       planID,
		Amount:       amount,
		CryptoAmount: cryptoAmount,
		CryptoType:   cryptoType,
		Status:       models.TxCompleted,
		Type:         txType,
	}); err != nil {
		s.fail("failed to add transaction", err)
		return
	}

	s.FetchPlans(ctx)
}

// WithdrawFunds drains a matured plan: it flips the plan to withdrawn (a
// conditional update, so a racing second withdrawal loses), records one
// withdrawal transaction for the full completed-deposit balance converted at
// the plan's asset rate, and resyncs. It returns false without mutation when
// the plan is missing, not yet matured, or no longer active. Partial
// withdrawal is not supported.
func (s *Store) WithdrawFunds(ctx context.Context, planID string) bool {
	if !s.CanWithdraw(planID) {
		return false
	}

	plan := s.PlanByID(planID)
	if plan == nil {
		return false
	}
	total := SavedAmount(plan)

	// Claim the plan before writing the withdrawal row; the conditional
	// update is what makes a concurrent duplicate lose.
	if err := s.rows.UpdatePlanStatus(ctx, planID, models.PlanActive, models.PlanWithdrawn); err != nil {
		s.fail("failed to withdraw funds", err)
		return false
	}

	if _, err := s.rows.InsertTransaction(ctx, &models.Transaction{
		PlanID:       planID,
		Amount:       total,
		CryptoAmount: rates.Convert(total, plan.PreferredCrypto),
		CryptoType:   plan.PreferredCrypto,
		Status:       models.TxCompleted,
		Type:         models.TxWithdrawal,
	}); err != nil {
		s.fail("failed to withdraw funds", err)
		return false
	}

	s.FetchPlans(ctx)
	s.log.Info("funds withdrawn",
		zap.String("plan_id", planID),
		zap.String("user_id", s.userID),
		zap.Float64("amount", total))
	return true
}

// ---------- reads ----------

// Plans returns a copy of the current plan collection.
func (s *Store) Plans() []models.SavingsPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlans(s.plans)
}

// PlanByID returns a copy of the plan, or nil when it is not in the current
// collection.
func (s *Store) PlanByID(planID string) *models.SavingsPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.plans {
		if s.plans[i].ID == planID {
			p := s.plans[i]
			p.Transactions = append([]models.Transaction(nil), p.Transactions...)
			return &p
		}
	}
	return nil
}

// CurrentPlan returns the first active plan in the current ordering, or nil.
func (s *Store) CurrentPlan() *models.SavingsPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.plans {
		if s.plans[i].Status == models.PlanActive {
			p := s.plans[i]
			p.Transactions = append([]models.Transaction(nil), p.Transactions...)
			return &p
		}
	}
	return nil
}

// TotalSaved sums the completed-deposit balance across all plans.
func (s *Store) TotalSaved() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for i := range s.plans {
		total += SavedAmount(&s.plans[i])
	}
	return total
}

// CanWithdraw reports whether the plan exists, is still active, and has
// reached its maturity date. Any other status fails regardless of the date.
func (s *Store) CanWithdraw(planID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.plans {
		if s.plans[i].ID == planID {
			return s.plans[i].Status == models.PlanActive && IsMature(&s.plans[i])
		}
	}
	return false
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Error returns the message of the last failed operation, or "".
func (s *Store) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ---------- derived aggregates ----------
//
// These are recomputed from the embedded transactions on every call and must
// never be cached apart from them; a cached copy would go stale on the next
// resync.

// SavedAmount is the sum of completed deposits in the plan's ledger.
// Withdrawals and non-completed transactions do not contribute.
func SavedAmount(plan *models.SavingsPlan) float64 {
	var total float64
	for _, tx := range plan.Transactions {
		if tx.Type == models.TxDeposit && tx.Status == models.TxCompleted {
			total += tx.Amount
		}
	}
	return total
}

// Progress is the saved share of the target in percent, clamped to 0–100 for
// display.
func Progress(plan *models.SavingsPlan) float64 {
	if plan.TargetAmount <= 0 {
		return 0
	}
	p := SavedAmount(plan) / plan.TargetAmount * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// IsMature reports whether the plan's lock period has elapsed.
func IsMature(plan *models.SavingsPlan) bool {
	return !time.Now().Before(plan.MaturityDate)
}

// ---------- state transitions ----------

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) fail(op string, err error) {
	s.mu.Lock()
	s.loading = false
	s.err = fmt.Sprintf("%s: %v", op, err)
	s.mu.Unlock()
	s.log.Warn(op, zap.Error(err), zap.String("user_id", s.userID))
}

func (s *Store) saveSnapshot(plans []models.SavingsPlan) {
	if err := s.cache.Save(cacheNamespace, s.userID, snapshot{Plans: plans}); err != nil {
		s.log.Warn("save ledger snapshot", zap.Error(err))
	}
}

func clonePlans(plans []models.SavingsPlan) []models.SavingsPlan {
	out := make([]models.SavingsPlan, len(plans))
	copy(out, plans)
	for i := range out {
		out[i].Transactions = append([]models.Transaction(nil), out[i].Transactions...)
	}
	return out
}
