package models

import "time"

// TxStatus is the settlement state of a transaction. Every code path today
// writes "completed"; pending/failed stay representable for a future
// settlement callback.
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxCompleted TxStatus = "completed"
	TxFailed    TxStatus = "failed"
)

// TxType distinguishes deposits from the single full-balance withdrawal.
type TxType string

const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
)

// Transaction is one ledger entry of a savings plan. Rows are immutable
// once created.
type Transaction struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	PlanID       string     `gorm:"index;size:36;not null" json:"plan_id"`
	Amount       float64    `gorm:"not null" json:"amount"`
	CryptoAmount float64    `gorm:"not null" json:"crypto_amount"`
	CryptoType   CryptoType `gorm:"size:16;not null" json:"crypto_type"`
	Status       TxStatus   `gorm:"size:16;index;not null" json:"status"`
	Type         TxType     `gorm:"size:16;index;not null" json:"type"`
	TxHash       string     `gorm:"size:128" json:"tx_hash,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
}
