package hasher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewWithCost(bcrypt.MinCost)

	digest, err := h.Hash("Secr3t!pass")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotContains(t, digest, "Secr3t!pass")

	assert.True(t, h.Verify("Secr3t!pass", digest))
	assert.False(t, h.Verify("wrong-password", digest))
	assert.False(t, h.Verify("", digest))
}

func TestHashIsSalted(t *testing.T) {
	h := NewWithCost(bcrypt.MinCost)

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of the same password must differ by salt")
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := New()

	assert.False(t, h.Verify("anything", "not-a-bcrypt-digest"))
	assert.False(t, h.Verify("anything", ""))
}

func TestNewWithCostOutOfRange(t *testing.T) {
	h := NewWithCost(99)

	digest, err := h.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestDummyDigestIsValidBcrypt(t *testing.T) {
	require.True(t, strings.HasPrefix(DummyDigest, "$2a$"))
	_, err := bcrypt.Cost([]byte(DummyDigest))
	require.NoError(t, err)
}
