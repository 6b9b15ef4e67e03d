package endpoints

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mwhitlock-dev/credstore/pkg/server/store"
)

func TestRegisterEndpoint(t *testing.T) {
	t.Run("creates account and returns id", func(t *testing.T) {
		env := newTestEnv(t)
		env.accounts.On("CreateAccount", "alice@example.com", mock.AnythingOfType("string")).
			Return(&store.Account{ID: 7, Email: "alice@example.com"}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/auth/register",
			strings.NewReader(`{"email":"alice@example.com","password":"hunter22"}`))
		env.server.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var body map[string]int64
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, int64(7), body["id"])

		// The stored digest must never be the raw password.
		digest := env.accounts.Calls[0].Arguments.String(1)
		assert.NotEqual(t, "hunter22", digest)
		assert.True(t, env.hasher.Verify("hunter22", digest))
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		env := newTestEnv(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(`{not json`))
		env.server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env.accounts.AssertNotCalled(t, "CreateAccount")
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		env := newTestEnv(t)

		for _, body := range []string{
			`{"email":"","password":"hunter22"}`,
			`{"email":"alice@example.com","password":""}`,
			`{}`,
		} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
			env.server.Router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
		}
		env.accounts.AssertNotCalled(t, "CreateAccount")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		env.accounts.On("CreateAccount", "alice@example.com", mock.AnythingOfType("string")).
			Return(nil, store.ErrEmailTaken)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/auth/register",
			strings.NewReader(`{"email":"alice@example.com","password":"hunter22"}`))
		env.server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	const password = "hunter22"

	t.Run("valid credentials set a session cookie", func(t *testing.T) {
		env := newTestEnv(t)
		digest, err := env.hasher.Hash(password)
		require.NoError(t, err)
		env.accounts.On("FetchAccountByEmail", "alice@example.com").
			Return(&store.Account{ID: 7, Email: "alice@example.com", PasswordHash: digest}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/auth/login",
			strings.NewReader(`{"email":"alice@example.com","password":"hunter22"}`))
		env.server.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		cookie := findCookie(t, w.Result(), env.codec.CookieName())
		require.NotNil(t, cookie, "expected a session cookie")
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

		claims, err := env.codec.Resolve(cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)
		assert.Equal(t, "alice@example.com", claims.Email)
	})

	t.Run("unknown email and wrong password answer identically", func(t *testing.T) {
		env := newTestEnv(t)
		digest, err := env.hasher.Hash(password)
		require.NoError(t, err)
		env.accounts.On("FetchAccountByEmail", "nobody@example.com").
			Return(nil, store.ErrAccountNotFound)
		env.accounts.On("FetchAccountByEmail", "alice@example.com").
			Return(&store.Account{ID: 7, Email: "alice@example.com", PasswordHash: digest}, nil)

		responses := make([]string, 0, 2)
		for _, body := range []string{
			`{"email":"nobody@example.com","password":"hunter22"}`,
			`{"email":"alice@example.com","password":"wrong-password"}`,
		} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
			env.server.Router.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code, "body: %s", body)
			assert.Nil(t, findCookie(t, w.Result(), env.codec.CookieName()))
			responses = append(responses, w.Body.String())
		}

		assert.Equal(t, responses[0], responses[1],
			"failure responses must not reveal whether the email exists")
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		env := newTestEnv(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"alice@example.com"}`))
		env.server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env.accounts.AssertNotCalled(t, "FetchAccountByEmail")
	})
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/logout", nil)
	req.AddCookie(env.sessionCookie(t, 7, "alice@example.com"))
	env.server.Router.ServeHTTP(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	cookie := findCookie(t, resp, env.codec.CookieName())
	require.NotNil(t, cookie, "expected an expired session cookie")
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.MaxAge < 0 || !cookie.Expires.IsZero())
}

// findCookie returns the named cookie from a response, or nil.
func findCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	defer func() { _, _ = io.Copy(io.Discard, resp.Body) }()

	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
