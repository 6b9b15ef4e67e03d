package endpoints

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mwhitlock-dev/credstore/pkg/config"
	"github.com/mwhitlock-dev/credstore/pkg/hasher"
	"github.com/mwhitlock-dev/credstore/pkg/server"
	"github.com/mwhitlock-dev/credstore/pkg/session"
)

// NewTestServer creates a server instance for testing
// It requires a running PostgreSQL database
func NewTestServer(dbURL string, sessionKey []byte) (*server.Server, error) {
	cfg := config.Get()

	codec, err := session.NewCodec(sessionKey, cfg.CookieName, cfg.SessionTTL(), false)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	if err != nil {
		return nil, err
	}

	s := server.NewServer(db, codec, hasher.NewWithCost(4), cfg, "127.0.0.1", "0")

	return s, nil
}

// CleanupTestData removes accounts (and, via cascade, their credentials)
// whose email matches the given pattern.
func CleanupTestData(db *gorm.DB, emailPattern string) error {
	return db.Exec(`DELETE FROM accounts WHERE email LIKE ?`, emailPattern).Error
}
