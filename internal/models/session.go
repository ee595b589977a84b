package models

import "time"

// AuthSession stores issued login sessions (for sign-out, invalidation).
type AuthSession struct {
	ID        string    `gorm:"primaryKey;size:64"` // JWT id claim
	UserID    string    `gorm:"index;size:36;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	CreatedAt time.Time
}
