package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitlock-dev/credstore/pkg/server/store"
)

func TestListCredentialsEndpoint(t *testing.T) {
	t.Run("returns only the caller's credentials", func(t *testing.T) {
		env := newTestEnv(t)
		env.credentials.On("ListCredentials", int64(7), "").
			Return([]store.Credential{
				{ID: 1, OwnerID: 7, Service: "github", Username: "alice", Secret: "tok-1"},
				{ID: 2, OwnerID: 7, Service: "gitlab", Username: "alice", Secret: "tok-2"},
			}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/credentials", nil)
		req.AddCookie(env.sessionCookie(t, 7, "alice@example.com"))
		env.server.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var list []store.Credential
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 2)
		assert.Equal(t, "github", list[0].Service)
		assert.Equal(t, "tok-1", list[0].Secret)

		// OwnerID stays server-side.
		assert.NotContains(t, w.Body.String(), "owner")
	})

	t.Run("passes the search filter through", func(t *testing.T) {
		env := newTestEnv(t)
		env.credentials.On("ListCredentials", int64(7), "git").
			Return([]store.Credential{
				{ID: 1, OwnerID: 7, Service: "github", Username: "alice", Secret: "tok-1"},
			}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/credentials?search=git", nil)
		req.AddCookie(env.sessionCookie(t, 7, "alice@example.com"))
		env.server.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		env.credentials.AssertExpectations(t)
	})

	t.Run("empty vault lists as empty array", func(t *testing.T) {
		env := newTestEnv(t)
		env.credentials.On("ListCredentials", int64(7), "").
			Return([]store.Credential{}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/credentials", nil)
		req.AddCookie(env.sessionCookie(t, 7, "alice@example.com"))
		env.server.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
	})

	t.Run("requires a session", func(t *testing.T) {
		env := newTestEnv(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/credentials", nil)
		env.server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env.credentials.AssertNotCalled(t, "ListCredentials")
	})

	t.Run("rejects a tampered session cookie", func(t *testing.T) {
		env := newTestEnv(t)
		cookie := env.sessionCookie(t, 7, "alice@example.com")

		// Flip one character of the token.
		raw := []byte(cookie.Value)
		mid := len(raw) / 2
		if raw[mid] == 'A' {
			raw[mid] = 'B'
		} else {
			raw[mid] = 'A'
		}
		cookie.Value = string(raw)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/credentials", nil)
		req.AddCookie(cookie)
		env.server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env.credentials.AssertNotCalled(t, "ListCredentials")
	})
}

func TestCreateCredentialEndpoint(t *testing.T) {
	t.Run("stores a credential for the session owner", func(t *testing.T) {
		env := newTestEnv(t)
		env.credentials.On("CreateCredential", int64(7), "github", "alice", "tok-1").
			Return(&store.Credential{ID: 3, OwnerID: 7, Service: "github", Username: "alice", Secret: "tok-1"}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/credentials",
			strings.NewReader(`{"service":"github","username":"alice","secret":"tok-1"}`))
		req.AddCookie(env.sessionCookie(t, 7, "alice@example.com"))
		env.server.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var body map[string]int64
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, int64(3), body["id"])
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		env := newTestEnv(t)

		for _, body := range []string{
			`{"service":"","username":"alice","secret":"tok-1"}`,
			`{"service":"github","username":"","secret":"tok-1"}`,
			`{"service":"github","username":"alice","secret":""}`,
		} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/credentials", strings.NewReader(body))
			req.AddCookie(env.sessionCookie(t, 7, "alice@example.com"))
			env.server.Router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
		}
		env.credentials.AssertNotCalled(t, "CreateCredential")
	})

	t.Run("requires a session", func(t *testing.T) {
		env := newTestEnv(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/credentials",
			strings.NewReader(`{"service":"github","username":"alice","secret":"tok-1"}`))
		env.server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env.credentials.AssertNotCalled(t, "CreateCredential")
	})
}

func TestUpdateCredentialEndpoint(t *testing.T) {
	t.Run("updates an owned credential", func(t *testing.T) {
		env := newTestEnv(t)
		env.credentials.On("UpdateCredential", int64(7), int64(3), "github", "alice", "tok-2").
			Return(nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/credentials/3",
			strings.NewReader(`{"service":"github","username":"alice","secret":"tok-2"}`))
		req.AddCookie(env.sessionCookie(t, 7, "alice@example.com"))
		env.server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env.credentials.AssertExpectations(t)
	})

	t.Run("foreign or absent credential is not found", func(t *testing.T) {
		env := newTestEnv(t)
		env.credentials.On("UpdateCredential", int64(7), int64(99), "github", "alice", "tok-2").
			Return(store.ErrCredentialNotFound)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/credentials/99",
			strings.NewReader(`{"service":"github","username":"alice","secret":"tok-2"}`))
		req.AddCookie(env.sessionCookie(t, 7, "alice@example.com"))
		env.server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id does not route", func(t *testing.T) {
		env := newTestEnv(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/credentials/abc",
			strings.NewReader(`{"service":"github","username":"alice","secret":"tok-2"}`))
		req.AddCookie(env.sessionCookie(t, 7, "alice@example.com"))
		env.server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env.credentials.AssertNotCalled(t, "UpdateCredential")
	})
}

func TestDeleteCredentialEndpoint(t *testing.T) {
	t.Run("deletes an owned credential", func(t *testing.T) {
		env := newTestEnv(t)
		env.credentials.On("DeleteCredential", int64(7), int64(3)).Return(nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/credentials/3", nil)
		req.AddCookie(env.sessionCookie(t, 7, "alice@example.com"))
		env.server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("second delete of the same id is not found", func(t *testing.T) {
		env := newTestEnv(t)
		env.credentials.On("DeleteCredential", int64(7), int64(3)).Return(nil).Once()
		env.credentials.On("DeleteCredential", int64(7), int64(3)).
			Return(store.ErrCredentialNotFound).Once()

		for i, wantCode := range []int{http.StatusOK, http.StatusNotFound} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("DELETE", "/credentials/3", nil)
			req.AddCookie(env.sessionCookie(t, 7, "alice@example.com"))
			env.server.Router.ServeHTTP(w, req)

			assert.Equal(t, wantCode, w.Code, "delete #%d", i+1)
		}
	})

	t.Run("another user's credential answers like a missing one", func(t *testing.T) {
		env := newTestEnv(t)
		env.credentials.On("DeleteCredential", int64(8), int64(3)).
			Return(store.ErrCredentialNotFound)
		env.credentials.On("DeleteCredential", int64(8), int64(424242)).
			Return(store.ErrCredentialNotFound)

		var bodies []string
		for _, id := range []string{"3", "424242"} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("DELETE", "/credentials/"+id, nil)
			req.AddCookie(env.sessionCookie(t, 8, "bob@example.com"))
			env.server.Router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNotFound, w.Code)
			bodies = append(bodies, w.Body.String())
		}

		assert.Equal(t, bodies[0], bodies[1],
			"foreign and absent rows must be indistinguishable")
	})

	t.Run("requires a session", func(t *testing.T) {
		env := newTestEnv(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/credentials/3", nil)
		env.server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env.credentials.AssertNotCalled(t, "DeleteCredential")
	})
}
