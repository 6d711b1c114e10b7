package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Passwords are stored as argon2id encoded hashes in PasswordHash.
//
// An account starts unverified; IsVerified flips to true exactly once,
// driven by a valid email-verification token whose subject matches Email.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string
	IsVerified   bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
