package models

import (
	"time"
)

type Account struct {
	ID           int64
	Email        string
	PasswordHash string // NULL for Google-only accounts
	FullName     string
	Phone        *string
	Birthday     *time.Time
	IsActive     bool
	IsAdmin      bool
	IsGoogleUser bool
	GoogleID     *string
	LastLogin    *time.Time
	DateJoined   time.Time
}

// HasUsablePassword reports whether the account can authenticate with a password.
// Google-only accounts carry no password hash.
func (a *Account) HasUsablePassword() bool {
	return a.PasswordHash != ""
}
