// Package gorm implements the store contracts against PostgreSQL via GORM.
package gorm

import (
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	"github.com/mwhitlock-dev/credstore/pkg/model"
	"github.com/mwhitlock-dev/credstore/pkg/server/store"
)

// Ensure AccountsStore implements store.AccountsStore
var _ store.AccountsStore = (*AccountsStore)(nil)

// AccountsStore implements store.AccountsStore using GORM
type AccountsStore struct {
	db *gorm.DB
}

// NewAccountsStore creates a new AccountsStore
func NewAccountsStore(db *gorm.DB) *AccountsStore {
	return &AccountsStore{db: db}
}

// CreateAccount persists a new account. The email uniqueness constraint is
// enforced by the database; a unique violation maps to ErrEmailTaken so that
// two racing registrations still yield exactly one account.
func (s *AccountsStore) CreateAccount(email, passwordHash string) (*store.Account, error) {
	account := model.Account{
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.db.Create(&account).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrEmailTaken
		}
		return nil, err
	}

	return &store.Account{
		ID:           account.ID,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
	}, nil
}

// FetchAccountByEmail looks up an account by exact email match.
func (s *AccountsStore) FetchAccountByEmail(email string) (*store.Account, error) {
	var account model.Account
	tx := s.db.Where("email = ?", email).First(&account)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, store.ErrAccountNotFound
		}
		return nil, tx.Error
	}

	return &store.Account{
		ID:           account.ID,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
	}, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// Fallback for drivers that only surface the message text.
	return strings.Contains(err.Error(), "duplicate key value")
}
