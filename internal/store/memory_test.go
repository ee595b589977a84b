package store

import (
	"context"
	"testing"
	"time"

	"github.com/MukamaJ-2/crypto-vault/internal/models"

	"github.com/stretchr/testify/require"
)

func TestUpdatePlanStatusConditional(t *testing.T) {
	mem := NewMemory()
	mem.SeedPlan(models.SavingsPlan{
		ID:     "plan-1",
		UserID: "user-1",
		Status: models.PlanActive,
	})

	ctx := context.Background()

	// first flip wins
	require.NoError(t, mem.UpdatePlanStatus(ctx, "plan-1", models.PlanActive, models.PlanWithdrawn))

	// the losing racer sees a conflict, not a silent no-op
	err := mem.UpdatePlanStatus(ctx, "plan-1", models.PlanActive, models.PlanWithdrawn)
	require.ErrorIs(t, err, ErrConflict)

	err = mem.UpdatePlanStatus(ctx, "plan-999", models.PlanActive, models.PlanWithdrawn)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPlansByUserOrdering(t *testing.T) {
	mem := NewMemory()
	base := time.Now().Add(-time.Hour)

	mem.SeedPlan(models.SavingsPlan{ID: "old", UserID: "u", Status: models.PlanActive, CreatedAt: base})
	mem.SeedPlan(models.SavingsPlan{ID: "new", UserID: "u", Status: models.PlanActive, CreatedAt: base.Add(time.Minute)})
	mem.SeedPlan(models.SavingsPlan{ID: "other", UserID: "someone-else", Status: models.PlanActive, CreatedAt: base})

	plans, err := mem.PlansByUser(context.Background(), "u")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	require.Equal(t, "new", plans[0].ID)
	require.Equal(t, "old", plans[1].ID)
}

func TestSignOutRevokesSession(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	sess, err := mem.SignUp(ctx, "carol@example.com", "password123")
	require.NoError(t, err)

	current, err := mem.CurrentSession(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, sess.UserID, current.UserID)

	require.NoError(t, mem.SignOut(ctx, sess.Token))

	_, err = mem.CurrentSession(ctx, sess.Token)
	require.ErrorIs(t, err, ErrNotFound)
}
