package domain

import (
	"errors"
	"time"
)

// User is a registered member. Its balance is owned by the ledger.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	ProfileImage string
	PasswordHash string
	Balance      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Account returns the ledger view of the user.
func (u *User) Account() *Account {
	return &Account{
		ID:        u.ID,
		Balance:   u.Balance,
		UpdatedAt: u.UpdatedAt,
	}
}

// Authentication errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
