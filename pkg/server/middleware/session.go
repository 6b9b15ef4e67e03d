// Package middleware contains HTTP middleware for the credstore server.
package middleware

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/mwhitlock-dev/credstore/pkg/config"
	"github.com/mwhitlock-dev/credstore/pkg/identity"
	"github.com/mwhitlock-dev/credstore/pkg/session"
)

// SessionAuthenticator is middleware that resolves the session cookie into a
// request identity. Requests without a valid session are rejected before any
// storage access happens.
type SessionAuthenticator struct {
	Codec *session.Codec
}

// NewSessionAuthenticator creates a new session authenticator middleware
func NewSessionAuthenticator(codec *session.Codec) *SessionAuthenticator {
	return &SessionAuthenticator{Codec: codec}
}

// Middleware returns an HTTP middleware that validates session cookies
func (a *SessionAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := a.Codec.ReadCookie(r)
		if err != nil {
			unauthorized(w, "authentication required")
			return
		}

		claims, err := a.Codec.Resolve(token)
		if err != nil {
			unauthorized(w, "invalid or expired session")
			return
		}

		id := identity.FromClaims(claims).WithRemoteIP(ClientIP(r))

		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

// ClientIP resolves the caller's address, honouring X-Forwarded-For only
// when the direct peer is a trusted proxy.
func ClientIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if config.Get().IsTrustedProxy(host) {
			if ip := net.ParseIP(forwarded); ip != nil {
				return ip
			}
		}
	}

	return net.ParseIP(host)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
