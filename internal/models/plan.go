package models

import "time"

// CryptoType selects the asset a plan saves into.
type CryptoType string

const (
	CryptoBTC    CryptoType = "btc"
	CryptoSolana CryptoType = "solana"
)

// Valid reports whether t is one of the supported assets.
func (t CryptoType) Valid() bool {
	return t == CryptoBTC || t == CryptoSolana
}

// PlanStatus is the lifecycle state of a savings plan.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanWithdrawn PlanStatus = "withdrawn"
)

// LockWeeks is the fixed maturity period: funds unlock 26 weeks after
// plan creation.
const LockWeeks = 26

// SavingsPlan is a savings goal with its embedded transaction ledger.
// Saved amount and progress are derived from Transactions, never stored.
type SavingsPlan struct {
	ID                 string     `gorm:"primaryKey;size:36" json:"id"`
	UserID             string     `gorm:"index;size:36;not null" json:"user_id"`
	Name               string     `gorm:"size:64;not null" json:"name"`
	TargetAmount       float64    `gorm:"not null" json:"target_amount"`
	WeeklyContribution float64    `gorm:"not null" json:"weekly_contribution"`
	PreferredCrypto    CryptoType `gorm:"size:16;not null" json:"preferred_crypto"`
	MaturityDate       time.Time  `gorm:"index;not null" json:"maturity_date"`
	Status             PlanStatus `gorm:"size:16;index;not null" json:"status"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`

	Transactions []Transaction `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"transactions"`
}
