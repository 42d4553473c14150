package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/cratevault/cratevault/pkg/identity"
	"github.com/cratevault/cratevault/pkg/store"
)

// errorBody is the cargo-compatible error shape; clients surface the
// "detail" values to the user.
type errorBody struct {
	Errors []errorDetail `json:"errors"`
}

type errorDetail struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondErrorJSON(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorBody{Errors: []errorDetail{{Detail: detail}}})
}

// respondError maps core failures to channel-appropriate HTTP
// responses. A missing identity redirects browser traffic to the login
// page and answers API traffic with a JSON unauthorized body; the two
// are never crossed.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrLoginRequired):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, identity.ErrUnauthorized):
		respondErrorJSON(w, http.StatusUnauthorized, "Unauthorized user")
	case errors.Is(err, store.ErrConflict):
		respondErrorJSON(w, http.StatusBadRequest, "Unique value already exists")
	default:
		log.Printf("request failed: %v", err)
		respondErrorJSON(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
