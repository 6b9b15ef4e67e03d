package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/mwhitlock-dev/credstore/pkg/identity"
	"github.com/mwhitlock-dev/credstore/pkg/server"
)

// WhoamiResponse represents the response from the /whoami endpoint
type WhoamiResponse struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	ClientIP  string `json:"client_ip,omitempty"`
	IssuedAt  int64  `json:"token_iat,omitempty"`
	ExpiresAt int64  `json:"token_exp,omitempty"`
}

// RegisterWhoamiEndpoint registers the /whoami endpoint
func RegisterWhoamiEndpoint(s *server.Server) {
	whoamiRouter := s.Router.PathPrefix("/whoami").Subrouter()
	whoamiRouter.Use(s.SessionAuth.Middleware)

	whoamiRouter.HandleFunc("", handleWhoami()).Methods("GET")
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			http.Error(w, "Unable to determine identity", http.StatusUnauthorized)
			return
		}

		response := WhoamiResponse{
			UserID:    id.UserID,
			Email:     id.Email,
			IssuedAt:  id.IssuedAt.Unix(),
			ExpiresAt: id.ExpiresAt.Unix(),
		}
		if id.RemoteIP != nil {
			response.ClientIP = id.RemoteIP.String()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}
