package endpoints

import (
	"net/http"

	"github.com/cratevault/cratevault/pkg/identity"
	"github.com/cratevault/cratevault/pkg/model"
	"github.com/cratevault/cratevault/pkg/server"
)

// AccountResponse is the account page payload: the user plus their key
// metadata. Key hashes never leave the store.
type AccountResponse struct {
	User    *model.User    `json:"user"`
	APIKeys []model.APIKey `json:"api_keys"`
}

// NewKeyRequest names a key to generate.
type NewKeyRequest struct {
	Name string `json:"name"`
}

// NewKeyResponse carries the bearer token. This is the only time the
// token is ever visible.
type NewKeyResponse struct {
	Key string `json:"key"`
}

// OldKeyRequest identifies a key to revoke.
type OldKeyRequest struct {
	ID int `json:"id"`
}

// RegisterAccountEndpoints registers the session-authenticated account
// pages: identity echo and API key management.
func RegisterAccountEndpoints(s *server.Server) {
	s.Router.HandleFunc("/me", handleMeRedirect()).Methods("GET")
	s.Router.HandleFunc("/user", handleAccount(s)).Methods("GET")
	s.Router.HandleFunc("/user/api-key", handleGenerateKey(s)).Methods("POST")
	s.Router.HandleFunc("/user/api-key", handleRevokeKey(s)).Methods("DELETE")
}

func handleMeRedirect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := identity.Require(r); err != nil {
			respondError(w, r, err)
			return
		}
		http.Redirect(w, r, "/user", http.StatusTemporaryRedirect)
	}
}

func handleAccount(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.Require(r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		keys, err := s.Store.APIKeys(r.Context(), id.User.ID)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, AccountResponse{User: id.User, APIKeys: keys})
	}
}

func handleGenerateKey(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.Require(r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		var req NewKeyRequest
		if err := decodeJSON(r, &req); err != nil || req.Name == "" {
			respondErrorJSON(w, http.StatusBadRequest, "A key name is required")
			return
		}

		token, err := s.Store.GenerateAPIKey(r.Context(), req.Name, id.User)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, NewKeyResponse{Key: token})
	}
}

func handleRevokeKey(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.Require(r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		var req OldKeyRequest
		if err := decodeJSON(r, &req); err != nil {
			respondErrorJSON(w, http.StatusBadRequest, "A key id is required")
			return
		}

		// Scoped to the caller's uid: revoking someone else's key id is
		// a no-op, not an error.
		if err := s.Store.RevokeAPIKey(r.Context(), req.ID, id.User.ID); err != nil {
			respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
