package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhoamiEndpoint(t *testing.T) {
	t.Run("echoes the session identity", func(t *testing.T) {
		env := newTestEnv(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.AddCookie(env.sessionCookie(t, 7, "alice@example.com"))
		env.server.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp WhoamiResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(7), resp.UserID)
		assert.Equal(t, "alice@example.com", resp.Email)
		assert.NotZero(t, resp.IssuedAt)
		assert.Greater(t, resp.ExpiresAt, resp.IssuedAt)
	})

	t.Run("requires a session", func(t *testing.T) {
		env := newTestEnv(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/whoami", nil)
		env.server.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
