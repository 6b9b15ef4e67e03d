package model

// Credential is a stored service/username/secret tuple owned by exactly one
// account. The secret is persisted verbatim; see the README for the accepted
// weakness around field-level encryption.
type Credential struct {
	ID       int64 `gorm:"primaryKey"`
	OwnerID  int64 `gorm:"column:owner_id"`
	Service  string
	Username string
	Secret   string
}

func (c Credential) TableName() string {
	return "credentials"
}
