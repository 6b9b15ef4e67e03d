package model

// Account is a registered identity. The password is never stored; only its
// one-way hash.
type Account struct {
	ID           int64 `gorm:"primaryKey"`
	Email        string
	PasswordHash string `gorm:"column:password_hash"`
}

func (a Account) TableName() string {
	return "accounts"
}
