package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusEndpoint(t *testing.T) {
	t.Run("serves HTML by default", func(t *testing.T) {
		env := newTestEnv(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		env.server.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "credstore server is running")
	})

	t.Run("serves JSON when requested", func(t *testing.T) {
		env := newTestEnv(t)

		for _, setup := range []func(*http.Request){
			func(r *http.Request) { r.Header.Set("Accept", "application/json") },
			func(r *http.Request) { r.URL.RawQuery = "format=json" },
		} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/", nil)
			setup(req)
			env.server.Router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["version"])
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("healthy database", func(t *testing.T) {
		env := newTestEnv(t)
		env.health.On("CheckConnectivity").Return(nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/health", nil)
		env.server.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"ok"`)
	})

	t.Run("unreachable database", func(t *testing.T) {
		env := newTestEnv(t)
		env.health.On("CheckConnectivity").Return(errors.New("connection refused"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/health", nil)
		env.server.Router.ServeHTTP(w, req)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		// The underlying error is not leaked to the client.
		assert.False(t, strings.Contains(w.Body.String(), "connection refused"))
	})
}
