package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MukamaJ-2/crypto-vault/internal/models"
	"github.com/MukamaJ-2/crypto-vault/internal/util"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

// Gorm implements AccountService and LedgerStore over the application
// database. It is the production stand-in for the hosted account/row store.
type Gorm struct {
	db        *gorm.DB
	jwtSecret string
	tokenTTL  time.Duration
}

func NewGorm(db *gorm.DB, jwtSecret string, ttlHours int) *Gorm {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &Gorm{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  time.Duration(ttlHours) * time.Hour,
	}
}

// ---------- AccountService ----------

func (g *Gorm) SignUp(ctx context.Context, email, password string) (*Session, error) {
	db := g.db.WithContext(ctx)

	// case-insensitive uniqueness on email
	var count int64
	if err := db.Model(&models.Account{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := db.Create(&account).Error; err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	return g.issueSession(ctx, account.ID)
}

func (g *Gorm) SignIn(ctx context.Context, email, password string) (*Session, error) {
	db := g.db.WithContext(ctx)

	var account models.Account
	if err := db.Where("LOWER(email) = LOWER(?)", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid email or password")
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	return g.issueSession(ctx, account.ID)
}

func (g *Gorm) SignOut(ctx context.Context, token string) error {
	claims, err := util.ParseToken(g.jwtSecret, token)
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}

	res := g.db.WithContext(ctx).
		Model(&models.AuthSession{}).
		Where("id = ? AND revoked = ?", claims.ID, false).
		Update("revoked", true)
	if res.Error != nil {
		return fmt.Errorf("revoke session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) CurrentSession(ctx context.Context, token string) (*Session, error) {
	claims, err := util.ParseToken(g.jwtSecret, token)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	var sess models.AuthSession
	if err := g.db.WithContext(ctx).First(&sess, "id = ?", claims.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	if sess.Revoked || time.Now().After(sess.ExpiresAt) {
		return nil, ErrNotFound
	}

	return &Session{Token: token, UserID: sess.UserID, ExpiresAt: sess.ExpiresAt}, nil
}

func (g *Gorm) issueSession(ctx context.Context, userID string) (*Session, error) {
	sess := models.AuthSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(g.tokenTTL),
	}

	token, err := util.GenerateToken(g.jwtSecret, userID, sess.ID, g.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := g.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &Session{Token: token, UserID: userID, ExpiresAt: sess.ExpiresAt}, nil
}

// ---------- LedgerStore ----------

func (g *Gorm) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := g.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (g *Gorm) InsertUser(ctx context.Context, user *models.User) (*models.User, error) {
	db := g.db.WithContext(ctx)
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("LOWER(email) = LOWER(?)", user.Email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return g.UserByID(ctx, user.ID)
}

func (g *Gorm) UpdateUser(ctx context.Context, id string, updates map[string]any) (*models.User, error) {
	res := g.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return g.UserByID(ctx, id)
}

func (g *Gorm) PlansByUser(ctx context.Context, userID string) ([]models.SavingsPlan, error) {
	var plans []models.SavingsPlan
	err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

func (g *Gorm) InsertPlan(ctx context.Context, plan *models.SavingsPlan) (*models.SavingsPlan, error) {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if err := g.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return plan, nil
}

func (g *Gorm) InsertTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := g.db.WithContext(ctx).Create(tx).Error; err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

func (g *Gorm) UpdatePlanStatus(ctx context.Context, planID string, from, to models.PlanStatus) error {
	db := g.db.WithContext(ctx)

	res := db.Model(&models.SavingsPlan{}).
		Where("id = ? AND status = ?", planID, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("update plan status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.SavingsPlan{}).
			Where("id = ?", planID).
			Count(&count).Error; err == nil && count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}
