// Package identity carries the authenticated caller through a request's
// context. Handlers act only on this resolved identity, never on
// client-supplied user identifiers.
package identity

import (
	"context"
	"net"
	"time"

	"github.com/mwhitlock-dev/credstore/pkg/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Key is the context key for Identity.
const Key ContextKey = "identity"

// Identity represents the authenticated identity for a request.
type Identity struct {
	// Session claims
	UserID    int64
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Request context
	RemoteIP net.IP
}

// FromClaims creates an Identity from resolved session claims.
func FromClaims(claims *session.Claims) *Identity {
	return &Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
