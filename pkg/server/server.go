// Package server wires the router, stores, and session machinery into a
// single HTTP server.
package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/mwhitlock-dev/credstore/pkg/config"
	"github.com/mwhitlock-dev/credstore/pkg/hasher"
	"github.com/mwhitlock-dev/credstore/pkg/server/middleware"
	"github.com/mwhitlock-dev/credstore/pkg/server/store"
	gormstore "github.com/mwhitlock-dev/credstore/pkg/server/store/gorm"
	"github.com/mwhitlock-dev/credstore/pkg/session"
)

type Server struct {
	Router *mux.Router
	DB     *gorm.DB

	Codec  *session.Codec
	Hasher *hasher.Hasher
	Config *config.Config

	AccountsStore    store.AccountsStore
	CredentialsStore store.CredentialsStore
	HealthStore      store.HealthStore

	SessionAuth *middleware.SessionAuthenticator

	srv *http.Server
}

func NewServer(
	db *gorm.DB,
	codec *session.Codec,
	passwordHasher *hasher.Hasher,
	cfg *config.Config,
	host string,
	port string,
) *Server {

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router:           router,
		DB:               db,
		Codec:            codec,
		Hasher:           passwordHasher,
		Config:           cfg,
		AccountsStore:    gormstore.NewAccountsStore(db),
		CredentialsStore: gormstore.NewCredentialsStore(db),
		HealthStore:      gormstore.NewHealthStore(db),
		SessionAuth:      middleware.NewSessionAuthenticator(codec),
		srv:              srv,
	}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}
