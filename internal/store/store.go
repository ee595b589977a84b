// Package store defines the narrow contracts the state layer needs from the
// system of record, so the lifecycle logic can run against an in-memory fake
// in tests and against the real database in production.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/MukamaJ-2/crypto-vault/internal/models"
)

var (
	// ErrNotFound signals a missing row (account, profile, plan).
	ErrNotFound = errors.New("store: not found")
	// ErrConflict signals a uniqueness violation or a lost conditional update.
	ErrConflict = errors.New("store: conflict")
)

// Session is an authenticated principal as issued by the account service.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// AccountService covers credential exchange and session lifecycle.
type AccountService interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*Session, error)
}

// LedgerStore covers the row operations over users, savings plans and
// transactions. Plans come back newest-created-first with their transactions
// embedded; inserts and updates return the authoritative row.
type LedgerStore interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	InsertUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id string, updates map[string]any) (*models.User, error)

	PlansByUser(ctx context.Context, userID string) ([]models.SavingsPlan, error)
	InsertPlan(ctx context.Context, plan *models.SavingsPlan) (*models.SavingsPlan, error)
	InsertTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)

	// UpdatePlanStatus flips a plan from one status to another only while the
	// plan is still in the from status. A lost race returns ErrConflict, which
	// is what keeps concurrent withdrawals from doubling up.
	UpdatePlanStatus(ctx context.Context, planID string, from, to models.PlanStatus) error
}
