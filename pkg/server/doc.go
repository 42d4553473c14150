// Package server provides the HTTP server for the registry's identity
// and credential endpoints.
//
// The server wires a gorilla/mux router behind an access-logging
// handler and installs the authentication dispatch middleware. Every
// inbound request is classified by path into a credential channel
// (session cookie or Authorization header), resolved against the
// credential store at most once, and carries its identity in the
// request context from then on.
//
// # Server Setup
//
//	srv := server.NewServer(st, sessionStore, "0.0.0.0", "8000")
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
package server
