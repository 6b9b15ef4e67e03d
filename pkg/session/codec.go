// Package session issues and resolves the sealed capsules that prove a
// resolved identity for the lifetime of a cookie. A capsule is an HS256 JWT
// carrying {userId, email} plus iat/exp/jti, sealed with AES-256-GCM so the
// claims are confidential as well as authenticated, then base64url-encoded
// for cookie transport.
package session

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mwhitlock-dev/credstore/pkg/sealbox"
)

// ErrInvalidSession is returned for any token that is absent, malformed,
// tampered with, or expired. Callers never see partial claims.
var ErrInvalidSession = errors.New("invalid or expired session")

const signingContext = "credstore/session-signing/v1"

// Claims is the resolved payload of a valid session token.
type Claims struct {
	UserID    int64
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Codec issues and resolves session tokens. One Codec is shared across all
// requests; it holds no per-request state.
type Codec struct {
	cipher     sealbox.SymmetricCipher
	signingKey []byte
	ttl        time.Duration
	cookieName string
	secure     bool
}

// NewCodec builds a Codec from a 32-byte session key. The same key material
// drives both layers, but the HMAC signing key is derived through a fixed
// context so the two uses never share raw bytes.
func NewCodec(key []byte, cookieName string, ttl time.Duration, secure bool) (*Codec, error) {
	cipher, err := sealbox.NewSymmetric(key)
	if err != nil {
		return nil, fmt.Errorf("session codec: %w", err)
	}

	mac := sha256.New()
	mac.Write(key)
	mac.Write([]byte(signingContext))

	return &Codec{
		cipher:     cipher,
		signingKey: mac.Sum(nil),
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
	}, nil
}

// CookieName returns the name of the cookie this codec is bound to.
func (c *Codec) CookieName() string {
	return c.cookieName
}

// TTL returns the token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a sealed session token for the given identity.
func (c *Codec) Issue(userID int64, email string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	sealed, err := c.cipher.Encrypt([]byte(c.cookieName), []byte(signed))
	if err != nil {
		return "", fmt.Errorf("failed to seal session token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Resolve decrypts and verifies a token. Any failure yields ErrInvalidSession;
// the codec never returns partial or unverified claims.
func (c *Codec) Resolve(token string) (*Claims, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	signed, err := c.cipher.Decrypt([]byte(c.cookieName), sealed)
	if err != nil {
		return nil, ErrInvalidSession
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(
		string(signed),
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return c.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 || claims.Email == "" {
		return nil, ErrInvalidSession
	}

	return &Claims{
		UserID:    userID,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
