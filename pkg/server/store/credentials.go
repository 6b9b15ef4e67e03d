package store

import "errors"

// ErrCredentialNotFound is returned when a credential is absent or owned by
// another account. The two cases are deliberately indistinguishable.
var ErrCredentialNotFound = errors.New("credential not found")

// Credential is the typed record for a vault entry.
type Credential struct {
	ID       int64  `json:"id"`
	OwnerID  int64  `json:"-"`
	Service  string `json:"service"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

// CredentialsStore abstracts vault entry storage. Every operation is scoped
// by ownerID; the ownership predicate is part of each statement, never a
// separate pre-check.
type CredentialsStore interface {
	// ListCredentials returns the owner's credentials in storage order.
	// A non-empty search filters by case-insensitive substring match on
	// service or username.
	ListCredentials(ownerID int64, search string) ([]Credential, error)

	// CreateCredential inserts a new credential owned by ownerID.
	CreateCredential(ownerID int64, service, username, secret string) (*Credential, error)

	// UpdateCredential replaces the fields of an owned credential.
	// Returns ErrCredentialNotFound if the row is absent or foreign.
	UpdateCredential(ownerID, credentialID int64, service, username, secret string) error

	// DeleteCredential removes an owned credential. The ownership predicate
	// is on the delete statement itself. Returns ErrCredentialNotFound if
	// the row is absent or foreign.
	DeleteCredential(ownerID, credentialID int64) error
}
