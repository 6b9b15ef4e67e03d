package endpoints

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mwhitlock-dev/credstore/pkg/audit"
	"github.com/mwhitlock-dev/credstore/pkg/identity"
	"github.com/mwhitlock-dev/credstore/pkg/server"
	"github.com/mwhitlock-dev/credstore/pkg/server/store"
)

type credentialRequest struct {
	Service  string `json:"service"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

// RegisterCredentialsEndpoints registers the vault CRUD surface. Every route
// sits behind the session middleware; the caller's identity comes from the
// resolved session only, never from the request body or path.
func RegisterCredentialsEndpoints(s *server.Server) {
	router := s.Router
	credentials := s.CredentialsStore

	credentialsRouter := router.PathPrefix("/credentials").Subrouter()
	credentialsRouter.Use(s.SessionAuth.Middleware)

	// GET /credentials[?search=...] - list owned credentials
	credentialsRouter.HandleFunc("", handleListCredentials(credentials)).Methods("GET")

	// POST /credentials - store a new credential
	credentialsRouter.HandleFunc("", handleCreateCredential(credentials)).Methods("POST")

	// PUT /credentials/{id} - replace an owned credential
	credentialsRouter.HandleFunc("/{id:[0-9]+}", handleUpdateCredential(credentials)).Methods("PUT")

	// DELETE /credentials/{id} - delete an owned credential
	credentialsRouter.HandleFunc("/{id:[0-9]+}", handleDeleteCredential(credentials)).Methods("DELETE")
}

func handleListCredentials(credentials store.CredentialsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		search := r.URL.Query().Get("search")

		list, err := credentials.ListCredentials(id.UserID, search)
		if err != nil {
			log.Printf("failed to list credentials for user %d: %v", id.UserID, err)
			respondWithInternalError(w)
			return
		}
		if list == nil {
			list = []store.Credential{}
		}

		audit.Log(audit.FetchEvent{
			UserID:   id.UserID,
			ClientIP: id.RemoteIP.String(),
			Count:    len(list),
		})
		respondWithJSON(w, http.StatusOK, list)
	}
}

func handleCreateCredential(credentials store.CredentialsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())

		var req credentialRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		defer func() { _ = r.Body.Close() }()

		if req.Service == "" || req.Username == "" || req.Secret == "" {
			respondWithError(w, http.StatusBadRequest, "service, username, and secret are required")
			return
		}

		created, err := credentials.CreateCredential(id.UserID, req.Service, req.Username, req.Secret)
		if err != nil {
			log.Printf("failed to create credential for user %d: %v", id.UserID, err)
			audit.Log(audit.UpdateEvent{
				UserID:       id.UserID,
				ClientIP:     id.RemoteIP.String(),
				Service:      req.Service,
				Success:      false,
				ErrorMessage: "storage failure",
			})
			respondWithInternalError(w)
			return
		}

		audit.Log(audit.UpdateEvent{
			UserID:       id.UserID,
			ClientIP:     id.RemoteIP.String(),
			CredentialID: created.ID,
			Service:      created.Service,
			Success:      true,
		})
		respondWithJSON(w, http.StatusCreated, map[string]int64{"id": created.ID})
	}
}

func handleUpdateCredential(credentials store.CredentialsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		credentialID := pathID(r)

		var req credentialRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		defer func() { _ = r.Body.Close() }()

		if req.Service == "" || req.Username == "" || req.Secret == "" {
			respondWithError(w, http.StatusBadRequest, "service, username, and secret are required")
			return
		}

		err := credentials.UpdateCredential(id.UserID, credentialID, req.Service, req.Username, req.Secret)
		if err != nil {
			if errors.Is(err, store.ErrCredentialNotFound) {
				respondWithError(w, http.StatusNotFound, "credential not found")
				return
			}
			log.Printf("failed to update credential %d for user %d: %v", credentialID, id.UserID, err)
			respondWithInternalError(w)
			return
		}

		audit.Log(audit.UpdateEvent{
			UserID:       id.UserID,
			ClientIP:     id.RemoteIP.String(),
			CredentialID: credentialID,
			Service:      req.Service,
			Success:      true,
		})
		respondWithJSON(w, http.StatusOK, map[string]int64{"id": credentialID})
	}
}

func handleDeleteCredential(credentials store.CredentialsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		credentialID := pathID(r)

		err := credentials.DeleteCredential(id.UserID, credentialID)
		if err != nil {
			if errors.Is(err, store.ErrCredentialNotFound) {
				// Absent and foreign rows answer the same, so existence of
				// another user's record is never confirmed.
				audit.Log(audit.DeleteEvent{
					UserID:       id.UserID,
					ClientIP:     id.RemoteIP.String(),
					CredentialID: credentialID,
					Success:      false,
					ErrorMessage: "not found",
				})
				respondWithError(w, http.StatusNotFound, "credential not found")
				return
			}
			log.Printf("failed to delete credential %d for user %d: %v", credentialID, id.UserID, err)
			respondWithInternalError(w)
			return
		}

		audit.Log(audit.DeleteEvent{
			UserID:       id.UserID,
			ClientIP:     id.RemoteIP.String(),
			CredentialID: credentialID,
			Success:      true,
		})
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// pathID parses the {id} path variable. The route pattern restricts it to
// digits, so parse failures cannot happen for routed requests.
func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}
