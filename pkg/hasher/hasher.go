// Package hasher provides one-way hashing for account passwords.
package hasher

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DummyDigest is a valid bcrypt digest of a throwaway value. Login runs a
// compare against it when the email is unknown, so that unknown-email and
// wrong-password attempts take comparable time.
const DummyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Hasher hashes and verifies account passwords with bcrypt.
type Hasher struct {
	cost int
}

// New returns a Hasher with the default work factor (bcrypt cost 10).
func New() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// NewWithCost returns a Hasher with an explicit work factor. Costs outside
// bcrypt's supported range fall back to the default.
func NewWithCost(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a salted one-way digest of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is a business
// outcome, not an error; malformed digests also report false.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
