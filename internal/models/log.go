package models

import "time"

// AuditLog records mutating operations for auditing.
type AuditLog struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    *string `gorm:"index;size:36"`
	Method    string  `gorm:"size:16"`
	Path      string  `gorm:"size:255"`
	Action    string  `gorm:"size:2048"` // method + path + request body digest
	IP        string  `gorm:"size:64"`
	UserAgent string  `gorm:"size:255"`
	CreatedAt time.Time
}
