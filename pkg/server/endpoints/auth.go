package endpoints

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mwhitlock-dev/credstore/pkg/audit"
	"github.com/mwhitlock-dev/credstore/pkg/hasher"
	"github.com/mwhitlock-dev/credstore/pkg/server"
	"github.com/mwhitlock-dev/credstore/pkg/server/middleware"
	"github.com/mwhitlock-dev/credstore/pkg/server/store"
	"github.com/mwhitlock-dev/credstore/pkg/session"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterAuthEndpoints registers registration, login, and logout.
func RegisterAuthEndpoints(s *server.Server) {
	router := s.Router

	// POST /auth/register - create an account
	router.HandleFunc("/auth/register", handleRegister(s.AccountsStore, s.Hasher)).Methods("POST")

	// POST /auth/login - verify credentials, issue a session cookie
	router.HandleFunc("/auth/login", handleLogin(s.AccountsStore, s.Hasher, s.Codec)).Methods("POST")

	// GET /auth/logout - clear the session cookie. Destruction is purely
	// client-side; there is no server-side session registry to revoke.
	router.HandleFunc("/auth/logout", handleLogout(s.Codec)).Methods("GET")
}

func handleRegister(accounts store.AccountsStore, h *hasher.Hasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		defer func() { _ = r.Body.Close() }()

		if req.Email == "" || req.Password == "" {
			respondWithError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		clientIP := middleware.ClientIP(r).String()

		digest, err := h.Hash(req.Password)
		if err != nil {
			log.Printf("registration failed for %s: %v", req.Email, err)
			respondWithInternalError(w)
			return
		}

		account, err := accounts.CreateAccount(req.Email, digest)
		if err != nil {
			if errors.Is(err, store.ErrEmailTaken) {
				audit.Log(audit.SignupEvent{
					Email:        req.Email,
					ClientIP:     clientIP,
					Success:      false,
					ErrorMessage: "email already registered",
				})
				respondWithError(w, http.StatusConflict, "email is already registered")
				return
			}
			log.Printf("registration failed for %s: %v", req.Email, err)
			respondWithInternalError(w)
			return
		}

		audit.Log(audit.SignupEvent{
			Email:    req.Email,
			ClientIP: clientIP,
			Success:  true,
		})
		respondWithJSON(w, http.StatusCreated, map[string]int64{"id": account.ID})
	}
}

func handleLogin(accounts store.AccountsStore, h *hasher.Hasher, codec *session.Codec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		defer func() { _ = r.Body.Close() }()

		if req.Email == "" || req.Password == "" {
			respondWithError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		clientIP := middleware.ClientIP(r).String()

		account, err := accounts.FetchAccountByEmail(req.Email)
		if err != nil {
			if errors.Is(err, store.ErrAccountNotFound) {
				// Burn a compare anyway so unknown emails cost the same as
				// wrong passwords, and answer identically.
				h.Verify(req.Password, hasher.DummyDigest)
				audit.Log(audit.LoginEvent{
					Email:        req.Email,
					ClientIP:     clientIP,
					Success:      false,
					ErrorMessage: "unknown email",
				})
				respondWithError(w, http.StatusUnauthorized, "invalid email or password")
				return
			}
			log.Printf("login failed for %s: %v", req.Email, err)
			respondWithInternalError(w)
			return
		}

		if !h.Verify(req.Password, account.PasswordHash) {
			audit.Log(audit.LoginEvent{
				Email:        req.Email,
				ClientIP:     clientIP,
				Success:      false,
				ErrorMessage: "password mismatch",
			})
			respondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		token, err := codec.Issue(account.ID, account.Email)
		if err != nil {
			log.Printf("session issuance failed for %s: %v", req.Email, err)
			respondWithInternalError(w)
			return
		}

		audit.Log(audit.LoginEvent{
			Email:    req.Email,
			ClientIP: clientIP,
			Success:  true,
		})

		codec.SetCookie(w, token)
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"id":    account.ID,
			"email": account.Email,
		})
	}
}

func handleLogout(codec *session.Codec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codec.ClearCookie(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
