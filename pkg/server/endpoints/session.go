package endpoints

import (
	"net/http"

	"github.com/cratevault/cratevault/pkg/server"
)

// loginPage is deliberately minimal; template rendering lives in the
// registry frontend, not in this subsystem.
const loginPage = `<!DOCTYPE html>
<html>
<head><title>Login</title></head>
<body>
<form method="post" action="/login">
<label>Username <input type="text" name="username"></label>
<label>Password <input type="password" name="password"></label>
<button type="submit">Log in</button>
</form>
</body>
</html>
`

// RegisterSessionEndpoints registers browser login and logout.
func RegisterSessionEndpoints(s *server.Server) {
	s.Router.HandleFunc("/login", handleLoginForm()).Methods("GET")
	s.Router.HandleFunc("/login", handleLogin(s)).Methods("POST")
	s.Router.HandleFunc("/logout", handleLogout(s)).Methods("POST")
}

func handleLoginForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(loginPage))
	}
}

func handleLogin(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form", http.StatusBadRequest)
			return
		}
		username := r.PostFormValue("username")
		password := r.PostFormValue("password")

		user, err := s.Store.GetUser(r.Context(), username)
		if err != nil {
			respondError(w, r, err)
			return
		}
		// An unknown name and a wrong password must be told apart by
		// nobody, including timing-insensitive clients.
		if user == nil || s.Store.VerifyPassword(r.Context(), user, password) != nil {
			http.Error(w, "invalid username or password", http.StatusUnauthorized)
			return
		}

		if err := s.Auth.SetSessionUser(w, r, user.ID); err != nil {
			respondError(w, r, err)
			return
		}
		http.Redirect(w, r, "/user", http.StatusSeeOther)
	}
}

func handleLogout(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Auth.ClearSessionUser(w, r); err != nil {
			respondError(w, r, err)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
