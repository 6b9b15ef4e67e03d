package gorm

import (
	"gorm.io/gorm"

	"github.com/mwhitlock-dev/credstore/pkg/model"
	"github.com/mwhitlock-dev/credstore/pkg/server/store"
)

// Ensure CredentialsStore implements store.CredentialsStore
var _ store.CredentialsStore = (*CredentialsStore)(nil)

// CredentialsStore implements store.CredentialsStore using GORM
type CredentialsStore struct {
	db *gorm.DB
}

// NewCredentialsStore creates a new CredentialsStore
func NewCredentialsStore(db *gorm.DB) *CredentialsStore {
	return &CredentialsStore{db: db}
}

// ListCredentials returns the owner's credentials in storage order. Isolation
// holds by construction of the filter, not by post-hoc redaction.
func (s *CredentialsStore) ListCredentials(ownerID int64, search string) ([]store.Credential, error) {
	query := s.db.Where("owner_id = ?", ownerID)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("(service ILIKE ? OR username ILIKE ?)", pattern, pattern)
	}

	var rows []model.Credential
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	credentials := make([]store.Credential, 0, len(rows))
	for _, row := range rows {
		credentials = append(credentials, store.Credential{
			ID:       row.ID,
			OwnerID:  row.OwnerID,
			Service:  row.Service,
			Username: row.Username,
			Secret:   row.Secret,
		})
	}
	return credentials, nil
}

// CreateCredential inserts a new credential owned by ownerID.
func (s *CredentialsStore) CreateCredential(ownerID int64, service, username, secret string) (*store.Credential, error) {
	row := model.Credential{
		OwnerID:  ownerID,
		Service:  service,
		Username: username,
		Secret:   secret,
	}

	if err := s.db.Create(&row).Error; err != nil {
		return nil, err
	}

	return &store.Credential{
		ID:       row.ID,
		OwnerID:  row.OwnerID,
		Service:  row.Service,
		Username: row.Username,
		Secret:   row.Secret,
	}, nil
}

// UpdateCredential replaces the fields of an owned credential. The ownership
// predicate is on the update statement itself.
func (s *CredentialsStore) UpdateCredential(ownerID, credentialID int64, service, username, secret string) error {
	tx := s.db.Model(&model.Credential{}).
		Where("id = ? AND owner_id = ?", credentialID, ownerID).
		Updates(map[string]interface{}{
			"service":  service,
			"username": username,
			"secret":   secret,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrCredentialNotFound
	}
	return nil
}

// DeleteCredential removes an owned credential. Keeping the ownership
// predicate on the delete statement closes the check-then-act gap under
// concurrent requests; a row deleted by a racing request surfaces as
// ErrCredentialNotFound.
func (s *CredentialsStore) DeleteCredential(ownerID, credentialID int64) error {
	tx := s.db.Where("id = ? AND owner_id = ?", credentialID, ownerID).
		Delete(&model.Credential{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrCredentialNotFound
	}
	return nil
}
