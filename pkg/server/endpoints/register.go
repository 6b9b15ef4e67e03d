// Package endpoints registers the HTTP surface of the credstore server.
package endpoints

import (
	"github.com/mwhitlock-dev/credstore/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterAuthEndpoints(srv)
	RegisterCredentialsEndpoints(srv)
	RegisterStatusEndpoints(srv)
	RegisterWhoamiEndpoint(srv)
}
