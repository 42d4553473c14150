package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/cratevault/cratevault/pkg/server/middleware"
	"github.com/cratevault/cratevault/pkg/store"
)

// Server bundles the router, the credential store, and the session
// transport behind one HTTP listener.
type Server struct {
	Router   *mux.Router
	Store    store.Store
	Sessions sessions.Store
	Auth     *middleware.Authenticator
	srv      *http.Server
}

// NewServer builds the HTTP server and installs the auth dispatch
// middleware on the router. Endpoints are registered separately via the
// endpoints package.
func NewServer(
	st store.Store,
	sess sessions.Store,
	host string,
	port string,
) *Server {
	router := mux.NewRouter().UseEncodedPath()
	auth := middleware.NewAuthenticator(st, sess)
	router.Use(auth.Middleware)

	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router:   router,
		Store:    st,
		Sessions: sess,
		Auth:     auth,
		srv:      srv,
	}
}

func (s Server) Start() error {
	return s.srv.ListenAndServe()
}
