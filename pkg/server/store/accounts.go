// Package store defines the typed storage contracts the server depends on.
// Implementations live in the gorm subpackage; tests substitute mocks.
package store

import "errors"

// ErrEmailTaken is returned when registering an email that already has an account.
var ErrEmailTaken = errors.New("email is already registered")

// ErrAccountNotFound is returned when no account matches the given email.
var ErrAccountNotFound = errors.New("account not found")

// Account is the typed record for a registered identity. Rows are validated
// into this shape at the storage boundary; the core never handles raw maps.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
}

// AccountsStore abstracts account storage operations.
type AccountsStore interface {
	// CreateAccount persists a new account.
	// Returns ErrEmailTaken if the email already has an account.
	CreateAccount(email, passwordHash string) (*Account, error)

	// FetchAccountByEmail looks up an account by exact email match.
	// Returns ErrAccountNotFound if no account exists.
	FetchAccountByEmail(email string) (*Account, error)
}
