package endpoints

import (
	"net/http"

	"github.com/cratevault/cratevault/pkg/identity"
	"github.com/cratevault/cratevault/pkg/model"
	"github.com/cratevault/cratevault/pkg/server"
)

// NewUserRequest is an administrative user creation request. Role
// defaults to viewer when omitted.
type NewUserRequest struct {
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     *model.Role `json:"role"`
}

// RegisterUsersEndpoints registers administrative user management.
func RegisterUsersEndpoints(s *server.Server) {
	s.Router.HandleFunc("/users", handleCreateUser(s)).Methods("POST")
}

func handleCreateUser(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.Require(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if !id.User.Role.IsAdmin() {
			respondErrorJSON(w, http.StatusForbidden, "Administrator role required")
			return
		}

		var req NewUserRequest
		if err := decodeJSON(r, &req); err != nil || req.Name == "" || req.Password == "" {
			respondErrorJSON(w, http.StatusBadRequest, "A name and password are required")
			return
		}
		role := model.RoleViewer
		if req.Role != nil {
			role = *req.Role
		}

		user, err := s.Store.CreateUser(r.Context(), req.Name, req.Password, role)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, user)
	}
}
