package models

import "time"

// User is the profile row of an account holder. Its ID always equals the
// owning Account ID; the profile row is inserted right after sign-up.
type User struct {
	ID                  string    `gorm:"primaryKey;size:36" json:"id"`
	Email               string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name                string    `gorm:"size:64;not null" json:"name"`
	BTCWalletAddress    string    `gorm:"size:128" json:"btc_wallet_address,omitempty"`
	SolanaWalletAddress string    `gorm:"size:128" json:"solana_wallet_address,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}
