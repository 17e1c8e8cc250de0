package model

import (
	"context"
	"time"
)

// AccountStore defines persistence operations for accounts.
type AccountStore interface {
	Create(ctx context.Context, account Account) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	GetByUsername(ctx context.Context, username string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	Count(ctx context.Context) (int64, error)
}

// Account represents a registered user. PasswordHash is the argon2id
// encoded hash; the plaintext password is never persisted.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// TokenManager issues and validates session tokens carrying an account id.
type TokenManager interface {
	GenerateSessionToken(accountID string) (string, error)
	ParseSessionToken(token string) (string, error)
}
