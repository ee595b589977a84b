package models

import "time"

// Account holds the login credentials behind a User profile. Credentials
// live apart from the profile row, matching the account-service split of
// the system of record.
type Account struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time
}
