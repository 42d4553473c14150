package endpoints

import (
	"github.com/cratevault/cratevault/pkg/server"
)

// RegisterAll registers all endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterSessionEndpoints(srv)
	RegisterAccountEndpoints(srv)
	RegisterUsersEndpoints(srv)
	RegisterOwnersEndpoints(srv)
	RegisterWhoamiEndpoint(srv)
}
