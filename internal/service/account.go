package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meshvault/meshvault-server/internal/logger"
	"github.com/meshvault/meshvault-server/internal/model"
)

// PasswordHasher hashes and verifies password credentials.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encodedHash string) (bool, error)
}

type Account struct {
	accounts model.AccountStore
	hasher   PasswordHasher
	logger   *logger.Logger
}

func NewAccount(accounts model.AccountStore, hasher PasswordHasher, logger *logger.Logger) *Account {
	return &Account{
		accounts: accounts,
		hasher:   hasher,
		logger:   logger,
	}
}

// Register creates a new account. Username and email are pre-checked so the
// caller gets a specific reason; the unique index backs the check against
// concurrent registrations. Only the salted hash of the password is stored.
func (s *Account) Register(ctx context.Context, username, email, plainPassword string) (model.Account, error) {
	if username == "" || email == "" || plainPassword == "" {
		return model.Account{}, model.NewValidationError("all fields are required")
	}

	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return model.Account{}, model.ErrDuplicateUsername
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.Account{}, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return model.Account{}, model.ErrDuplicateEmail
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.Account{}, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := model.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateUsername) || errors.Is(err, model.ErrDuplicateEmail) {
			return model.Account{}, err
		}
		return model.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account registered",
		"account_id", created.ID,
		"username", created.Username)

	return created, nil
}

// Authenticate verifies credentials for a login identifier that may be a
// username or an email. All failures are reported uniformly as ErrAuthFailed
// so account existence is not leaked.
func (s *Account) Authenticate(ctx context.Context, login, plainPassword string) (model.Account, error) {
	if login == "" || plainPassword == "" {
		return model.Account{}, model.ErrAuthFailed
	}

	account, err := s.accounts.GetByUsername(ctx, login)
	if errors.Is(err, model.ErrNotFound) {
		account, err = s.accounts.GetByEmail(ctx, login)
	}
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Account{}, model.ErrAuthFailed
		}
		return model.Account{}, fmt.Errorf("failed to look up account: %w", err)
	}

	ok, err := s.hasher.Verify(plainPassword, account.PasswordHash)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return model.Account{}, model.ErrAuthFailed
	}

	s.logger.Debug("account authenticated", "account_id", account.ID)

	return account, nil
}

// ResolvePrincipal rehydrates the signed-in identity for a request. An id
// that no longer resolves yields (nil, nil) so a stale session degrades to
// anonymous; infrastructure errors still surface.
func (s *Account) ResolvePrincipal(ctx context.Context, accountID string) (*model.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve principal: %w", err)
	}

	return &account, nil
}
