package endpoints

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/mwhitlock-dev/credstore/pkg/server"
	"github.com/mwhitlock-dev/credstore/pkg/server/store"
)

// HealthResponse represents the response from the /health endpoint
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status and health endpoints
func RegisterStatusEndpoints(s *server.Server) {
	healthStore := s.HealthStore

	// GET / - Status page (no auth required)
	s.Router.HandleFunc("/", handleStatus()).Methods("GET")

	// GET /health - Database connectivity check (no auth required)
	s.Router.HandleFunc("/health", handleHealth(healthStore)).Methods("GET")
}

func handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("CREDSTORE_VERSION_DISPLAY")
		if version == "" {
			version = "0.1.0"
		}

		accept := r.Header.Get("Accept")
		format := r.URL.Query().Get("format")
		if format == "json" || strings.Contains(accept, "application/json") {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"version": version})
			return
		}

		html := `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width">
    <title>credstore</title>
  </head>
  <body>
    <main>
      <h1>Status</h1>
      <p>Your credstore server is running!</p>
      <p>Version ` + version + `</p>
      <p>
        Are you connecting over plain HTTP? Put credstore behind a TLS
        terminator before storing anything real: the session cookie and every
        secret travel in the request body.
      </p>
    </main>
  </body>
</html>
`

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}
}

func handleHealth(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.CheckConnectivity(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(HealthResponse{
				Status: "error",
				Error:  "database connectivity check failed",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
	}
}
