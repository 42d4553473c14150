package endpoints

import (
	"net/http"

	"github.com/cratevault/cratevault/pkg/identity"
	"github.com/cratevault/cratevault/pkg/server"
)

// RegisterWhoamiEndpoint registers the token introspection endpoint.
// It lives under /api so it answers for bearer tokens, which lets a
// client check a key without side effects.
func RegisterWhoamiEndpoint(s *server.Server) {
	s.Router.HandleFunc("/api/v1/whoami", handleWhoami()).Methods("GET")
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.Require(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, id.User)
	}
}
