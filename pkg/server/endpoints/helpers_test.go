package endpoints

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/mwhitlock-dev/credstore/pkg/config"
	"github.com/mwhitlock-dev/credstore/pkg/hasher"
	"github.com/mwhitlock-dev/credstore/pkg/server"
	"github.com/mwhitlock-dev/credstore/pkg/server/middleware"
	"github.com/mwhitlock-dev/credstore/pkg/session"
)

// testEnv wires the full routing surface against mock stores so handler
// behavior can be exercised without a database.
type testEnv struct {
	server      *server.Server
	accounts    *MockAccountsStore
	credentials *MockCredentialsStore
	health      *MockHealthStore
	codec       *session.Codec
	hasher      *hasher.Hasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	codec, err := session.NewCodec(key, "credstore_session", 30*time.Minute, false)
	if err != nil {
		t.Fatalf("failed to create session codec: %v", err)
	}

	accounts := NewMockAccountsStore()
	credentials := NewMockCredentialsStore()
	health := NewMockHealthStore()

	s := &server.Server{
		Router:           mux.NewRouter().UseEncodedPath(),
		Codec:            codec,
		Hasher:           hasher.NewWithCost(4),
		Config:           config.Get(),
		AccountsStore:    accounts,
		CredentialsStore: credentials,
		HealthStore:      health,
		SessionAuth:      middleware.NewSessionAuthenticator(codec),
	}
	RegisterAll(s)

	return &testEnv{
		server:      s,
		accounts:    accounts,
		credentials: credentials,
		health:      health,
		codec:       codec,
		hasher:      s.Hasher,
	}
}

// sessionCookie issues a valid session cookie for the given identity.
func (e *testEnv) sessionCookie(t *testing.T, userID int64, email string) *http.Cookie {
	t.Helper()

	token, err := e.codec.Issue(userID, email)
	if err != nil {
		t.Fatalf("failed to issue session token: %v", err)
	}
	return &http.Cookie{Name: e.codec.CookieName(), Value: token}
}
