package endpoints

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cratevault/cratevault/pkg/identity"
	"github.com/cratevault/cratevault/pkg/model"
	"github.com/cratevault/cratevault/pkg/server"
)

// ownerUser is the cargo owner representation.
type ownerUser struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
}

// OwnersRequest names the users to add or remove as owners.
type OwnersRequest struct {
	Users []string `json:"users"`
}

// OwnersResponse acknowledges an ownership change, cargo style.
type OwnersResponse struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg"`
}

// RegisterOwnersEndpoints registers the cargo owners API. These paths
// live under /api, so they authenticate with bearer tokens.
func RegisterOwnersEndpoints(s *server.Server) {
	r := s.Router.PathPrefix("/api/v1/crates").Subrouter()
	r.HandleFunc("/{crate}/owners", handleListOwners(s)).Methods("GET")
	r.HandleFunc("/{crate}/owners", handleAddOwners(s)).Methods("PUT")
	r.HandleFunc("/{crate}/owners", handleRemoveOwners(s)).Methods("DELETE")
}

func handleListOwners(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := identity.Require(r); err != nil {
			respondError(w, r, err)
			return
		}

		owners, err := s.Store.CrateOwners(r.Context(), mux.Vars(r)["crate"])
		if err != nil {
			respondError(w, r, err)
			return
		}
		users := make([]ownerUser, 0, len(owners))
		for _, u := range owners {
			users = append(users, ownerUser{ID: u.ID, Login: u.Name, Name: u.Name})
		}
		respondJSON(w, http.StatusOK, map[string][]ownerUser{"users": users})
	}
}

func handleAddOwners(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.Require(r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		var req OwnersRequest
		if err := decodeJSON(r, &req); err != nil || len(req.Users) == 0 {
			respondErrorJSON(w, http.StatusBadRequest, "A users list is required")
			return
		}

		crateName := mux.Vars(r)["crate"]
		owners, err := s.Store.CrateOwners(r.Context(), crateName)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if !canManageOwners(id.User, owners) {
			respondErrorJSON(w, http.StatusForbidden, "You are not an owner of this crate")
			return
		}

		// First ownership record for a name creates the crate row.
		crate, err := s.Store.CreateCrate(r.Context(), crateName)
		if err != nil {
			respondError(w, r, err)
			return
		}

		for _, name := range req.Users {
			user, err := s.Store.GetUser(r.Context(), name)
			if err != nil {
				respondError(w, r, err)
				return
			}
			if user == nil {
				respondErrorJSON(w, http.StatusBadRequest, fmt.Sprintf("could not find user `%s`", name))
				return
			}
			if err := s.Store.AddCrateOwner(r.Context(), crate.ID, user.ID); err != nil {
				respondError(w, r, err)
				return
			}
		}
		respondJSON(w, http.StatusOK, OwnersResponse{
			OK:  true,
			Msg: fmt.Sprintf("added %d owner(s) to crate %s", len(req.Users), crateName),
		})
	}
}

func handleRemoveOwners(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.Require(r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		var req OwnersRequest
		if err := decodeJSON(r, &req); err != nil || len(req.Users) == 0 {
			respondErrorJSON(w, http.StatusBadRequest, "A users list is required")
			return
		}

		crateName := mux.Vars(r)["crate"]
		crate, err := s.Store.GetCrate(r.Context(), crateName)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if crate == nil {
			respondErrorJSON(w, http.StatusNotFound, fmt.Sprintf("crate `%s` does not exist", crateName))
			return
		}

		owners, err := s.Store.CrateOwners(r.Context(), crateName)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if !canManageOwners(id.User, owners) {
			respondErrorJSON(w, http.StatusForbidden, "You are not an owner of this crate")
			return
		}

		for _, name := range req.Users {
			user, err := s.Store.GetUser(r.Context(), name)
			if err != nil {
				respondError(w, r, err)
				return
			}
			if user == nil {
				respondErrorJSON(w, http.StatusBadRequest, fmt.Sprintf("could not find user `%s`", name))
				return
			}
			if err := s.Store.RemoveCrateOwner(r.Context(), crate.ID, user.ID); err != nil {
				respondError(w, r, err)
				return
			}
		}
		respondJSON(w, http.StatusOK, OwnersResponse{
			OK:  true,
			Msg: fmt.Sprintf("removed %d owner(s) from crate %s", len(req.Users), crateName),
		})
	}
}

// canManageOwners: administrators always may; publishers may claim an
// unowned crate or manage one they already own.
func canManageOwners(user *model.User, owners []model.User) bool {
	if user.Role.IsAdmin() {
		return true
	}
	if !user.Role.CanPublish() {
		return false
	}
	if len(owners) == 0 {
		return true
	}
	for _, o := range owners {
		if o.ID == user.ID {
			return true
		}
	}
	return false
}
