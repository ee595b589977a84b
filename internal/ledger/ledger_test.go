package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/MukamaJ-2/crypto-vault/internal/models"
	"github.com/MukamaJ-2/crypto-vault/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

func newTestStore(t *testing.T) (*Store, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	mem.SeedUser(models.User{ID: testUser, Email: "sam@example.com", Name: "Sam"})
	return New(mem, nil, nil, testUser), mem
}

func maturedPlan(id string, asset models.CryptoType, deposits ...float64) models.SavingsPlan {
	plan := models.SavingsPlan{
		ID:                 id,
		UserID:             testUser,
		Name:               "Laptop",
		TargetAmount:       1000,
		WeeklyContribution: 50,
		PreferredCrypto:    asset,
		MaturityDate:       time.Now().Add(-time.Hour),
		Status:             models.PlanActive,
		CreatedAt:          time.Now().Add(-26 * 7 * 24 * time.Hour),
	}
	for i, amount := range deposits {
		plan.Transactions = append(plan.Transactions, models.Transaction{
			ID:           id + "-dep-" + string(rune('a'+i)),
			Amount:       amount,
			CryptoAmount: amount / 50000,
			CryptoType:   asset,
			Status:       models.TxCompleted,
			Type:         models.TxDeposit,
			CreatedAt:    time.Now().Add(time.Duration(i-100) * time.Hour),
		})
	}
	return plan
}

func TestSavedAmountCountsOnlyCompletedDeposits(t *testing.T) {
	plan := models.SavingsPlan{
		Transactions: []models.Transaction{
			{Type: models.TxDeposit, Status: models.TxCompleted, Amount: 100},
			{Type: models.TxDeposit, Status: models.TxCompleted, Amount: 50},
			{Type: models.TxDeposit, Status: models.TxPending, Amount: 25},
			{Type: models.TxDeposit, Status: models.TxFailed, Amount: 75},
			{Type: models.TxWithdrawal, Status: models.TxCompleted, Amount: 150},
		},
	}

	assert.Equal(t, 150.0, SavedAmount(&plan))
}

func TestProgressClamped(t *testing.T) {
	plan := models.SavingsPlan{
		TargetAmount: 200,
		Transactions: []models.Transaction{
			{Type: models.TxDeposit, Status: models.TxCompleted, Amount: 500},
		},
	}
	assert.Equal(t, 100.0, Progress(&plan))

	plan.Transactions = nil
	assert.Equal(t, 0.0, Progress(&plan))

	plan.Transactions = []models.Transaction{
		{Type: models.TxDeposit, Status: models.TxCompleted, Amount: 50},
	}
	assert.Equal(t, 25.0, Progress(&plan))
}

func TestValidatePlan(t *testing.T) {
	s, _ := newTestStore(t)

	// 50 * 26 = 1300 >= 1000
	assert.NoError(t, s.ValidatePlan(CreatePlanInput{
		Name: "Laptop", TargetAmount: 1000, WeeklyContribution: 50,
		PreferredCrypto: models.CryptoBTC,
	}))

	// 30 * 26 = 780 < 1000
	assert.Error(t, s.ValidatePlan(CreatePlanInput{
		Name: "Laptop", TargetAmount: 1000, WeeklyContribution: 30,
		PreferredCrypto: models.CryptoBTC,
	}))

	assert.Error(t, s.ValidatePlan(CreatePlanInput{
		Name: "Laptop", TargetAmount: 0, WeeklyContribution: 50,
		PreferredCrypto: models.CryptoBTC,
	}))
	assert.Error(t, s.ValidatePlan(CreatePlanInput{
		Name: "Laptop", TargetAmount: 1000, WeeklyContribution: -5,
		PreferredCrypto: models.CryptoBTC,
	}))
	assert.Error(t, s.ValidatePlan(CreatePlanInput{
		Name: "Laptop", TargetAmount: 1000, WeeklyContribution: 50,
		PreferredCrypto: models.CryptoType("doge"),
	}))
}

func TestCreatePlanRejectedBeforeStoreCall(t *testing.T) {
	s, mem := newTestStore(t)

	s.CreatePlan(context.Background(), CreatePlanInput{
		Name: "Laptop", TargetAmount: 1000, WeeklyContribution: 30,
		PreferredCrypto: models.CryptoBTC,
	})

	assert.NotEmpty(t, s.Error())

	// nothing reached the store
	plans, err := mem.PlansByUser(context.Background(), testUser)
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestCreatePlanMaturity(t *testing.T) {
	s, _ := newTestStore(t)

	before := time.Now()
	s.CreatePlan(context.Background(), CreatePlanInput{
		Name: "Laptop", TargetAmount: 1000, WeeklyContribution: 50,
		PreferredCrypto: models.CryptoBTC,
	})
	require.Empty(t, s.Error())

	s.FetchPlans(context.Background())
	plans := s.Plans()
	require.Len(t, plans, 1)

	plan := plans[0]
	assert.Equal(t, models.PlanActive, plan.Status)
	assert.Equal(t, testUser, plan.UserID)

	lock := models.LockWeeks * 7 * 24 * time.Hour
	gap := plan.MaturityDate.Sub(plan.CreatedAt)
	assert.Equal(t, lock, gap)
	assert.WithinDuration(t, before.Add(lock), plan.MaturityDate, 5*time.Second)
}

func TestCreatePlanPrependsNewest(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	s.CreatePlan(ctx, CreatePlanInput{Name: "First", TargetAmount: 500, WeeklyContribution: 50, PreferredCrypto: models.CryptoBTC})
	s.CreatePlan(ctx, CreatePlanInput{Name: "Second", TargetAmount: 500, WeeklyContribution: 50, PreferredCrypto: models.CryptoSolana})
	require.Empty(t, s.Error())

	plans := s.Plans()
	require.Len(t, plans, 2)
	assert.Equal(t, "Second", plans[0].Name)
	assert.Equal(t, "First", plans[1].Name)

	// the resync keeps the same newest-first order
	s.FetchPlans(ctx)
	plans = s.Plans()
	require.Len(t, plans, 2)
	assert.Equal(t, "Second", plans[0].Name)
}

func TestAddTransactionResyncs(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	mem.SeedPlan(maturedPlan("plan-1", models.CryptoBTC))
	s.FetchPlans(ctx)

	s.AddTransaction(ctx, "plan-1", 50, 0.001, models.CryptoBTC, models.TxDeposit)
	require.Empty(t, s.Error())

	plan := s.PlanByID("plan-1")
	require.NotNil(t, plan)
	require.Len(t, plan.Transactions, 1)
	assert.Equal(t, models.TxCompleted, plan.Transactions[0].Status)
	assert.Equal(t, 50.0, SavedAmount(plan))
}

func TestCanWithdraw(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	matured := maturedPlan("matured", models.CryptoBTC, 100)
	mem.SeedPlan(matured)

	locked := maturedPlan("locked", models.CryptoBTC, 100)
	locked.MaturityDate = time.Now().Add(time.Hour)
	mem.SeedPlan(locked)

	withdrawn := maturedPlan("withdrawn", models.CryptoBTC, 100)
	withdrawn.Status = models.PlanWithdrawn
	mem.SeedPlan(withdrawn)

	s.FetchPlans(ctx)

	assert.True(t, s.CanWithdraw("matured"))
	assert.False(t, s.CanWithdraw("locked"), "future maturity must block withdrawal")
	assert.False(t, s.CanWithdraw("withdrawn"), "non-active status must block withdrawal regardless of date")
	assert.False(t, s.CanWithdraw("no-such-plan"))
}

func TestWithdrawFundsBTC(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedUser(models.User{ID: testUser})
	mem.SeedPlan(maturedPlan("plan-1", models.CryptoBTC, 200, 300))
	s := New(mem, nil, nil, testUser)
	ctx := context.Background()
	s.FetchPlans(ctx)

	ok := s.WithdrawFunds(ctx, "plan-1")
	require.True(t, ok)
	require.Empty(t, s.Error())

	plan := s.PlanByID("plan-1")
	require.NotNil(t, plan)
	assert.Equal(t, models.PlanWithdrawn, plan.Status)

	var withdrawals []models.Transaction
	for _, tx := range plan.Transactions {
		if tx.Type == models.TxWithdrawal {
			withdrawals = append(withdrawals, tx)
		}
	}
	require.Len(t, withdrawals, 1, "exactly one withdrawal transaction")
	assert.Equal(t, 500.0, withdrawals[0].Amount)
	assert.Equal(t, 500.0/50000, withdrawals[0].CryptoAmount)
	assert.Equal(t, models.CryptoBTC, withdrawals[0].CryptoType)
	assert.Equal(t, models.TxCompleted, withdrawals[0].Status)
}

func TestWithdrawFundsSolana(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedUser(models.User{ID: testUser})
	mem.SeedPlan(maturedPlan("plan-1", models.CryptoSolana, 500))
	s := New(mem, nil, nil, testUser)
	ctx := context.Background()
	s.FetchPlans(ctx)

	require.True(t, s.WithdrawFunds(ctx, "plan-1"))

	plan := s.PlanByID("plan-1")
	require.NotNil(t, plan)
	last := plan.Transactions[len(plan.Transactions)-1]
	assert.Equal(t, models.TxWithdrawal, last.Type)
	assert.Equal(t, 5.0, last.CryptoAmount)
	assert.Equal(t, models.CryptoSolana, last.CryptoType)
}

func TestWithdrawFundsRejectsImmature(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedUser(models.User{ID: testUser})
	plan := maturedPlan("plan-1", models.CryptoBTC, 100)
	plan.MaturityDate = time.Now().Add(24 * time.Hour)
	mem.SeedPlan(plan)

	s := New(mem, nil, nil, testUser)
	ctx := context.Background()
	s.FetchPlans(ctx)

	assert.False(t, s.WithdrawFunds(ctx, "plan-1"))

	got := s.PlanByID("plan-1")
	require.NotNil(t, got)
	assert.Equal(t, models.PlanActive, got.Status)
	assert.Len(t, got.Transactions, 1, "no withdrawal row written")
}

func TestWithdrawFundsRejectsAlreadyWithdrawn(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedUser(models.User{ID: testUser})
	plan := maturedPlan("plan-1", models.CryptoBTC, 100)
	plan.Status = models.PlanWithdrawn
	mem.SeedPlan(plan)

	s := New(mem, nil, nil, testUser)
	ctx := context.Background()
	s.FetchPlans(ctx)

	assert.False(t, s.WithdrawFunds(ctx, "plan-1"))

	got := s.PlanByID("plan-1")
	require.NotNil(t, got)
	assert.Len(t, got.Transactions, 1)
}

func TestWithdrawFundsUnknownPlan(t *testing.T) {
	s, _ := newTestStore(t)
	assert.False(t, s.WithdrawFunds(context.Background(), "ghost"))
}

func TestTotalSavedAcrossPlans(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedUser(models.User{ID: testUser})
	mem.SeedPlan(maturedPlan("plan-1", models.CryptoBTC, 200, 100))
	mem.SeedPlan(maturedPlan("plan-2", models.CryptoSolana, 50))
	mem.SeedPlan(maturedPlan("plan-3", models.CryptoBTC))

	s := New(mem, nil, nil, testUser)
	s.FetchPlans(context.Background())

	assert.Equal(t, 350.0, s.TotalSaved())

	// total equals the per-plan sum, zero-deposit plans contributing 0
	var sum float64
	for _, p := range s.Plans() {
		sum += SavedAmount(&p)
	}
	assert.Equal(t, sum, s.TotalSaved())
}

func TestCurrentPlanFirstActive(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedUser(models.User{ID: testUser})

	older := maturedPlan("older", models.CryptoBTC)
	older.CreatedAt = time.Now().Add(-48 * time.Hour)
	mem.SeedPlan(older)

	withdrawn := maturedPlan("newest-withdrawn", models.CryptoBTC)
	withdrawn.CreatedAt = time.Now()
	withdrawn.Status = models.PlanWithdrawn
	mem.SeedPlan(withdrawn)

	s := New(mem, nil, nil, testUser)
	ctx := context.Background()
	s.FetchPlans(ctx)

	// newest plan is withdrawn, so the older active one is current
	current := s.CurrentPlan()
	require.NotNil(t, current)
	assert.Equal(t, "older", current.ID)
}

func TestCurrentPlanNoneActive(t *testing.T) {
	s, _ := newTestStore(t)
	s.FetchPlans(context.Background())
	assert.Nil(t, s.CurrentPlan())
}

func TestFetchPlansScopedToUser(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedUser(models.User{ID: testUser})
	mem.SeedPlan(maturedPlan("mine", models.CryptoBTC, 10))

	other := maturedPlan("theirs", models.CryptoBTC, 10)
	other.UserID = "user-2"
	mem.SeedPlan(other)

	s := New(mem, nil, nil, testUser)
	s.FetchPlans(context.Background())

	plans := s.Plans()
	require.Len(t, plans, 1)
	assert.Equal(t, "mine", plans[0].ID)
}
