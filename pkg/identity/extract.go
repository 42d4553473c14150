package identity

import (
	"errors"
	"net/http"
)

// ErrLoginRequired signals a missing identity on a session-classified
// path. The HTTP layer maps it to a redirect to the login page.
var ErrLoginRequired = errors.New("identity: login required")

// ErrUnauthorized signals a missing identity on a header-classified
// path. There is no browser to redirect; the HTTP layer maps it to a
// JSON unauthorized response.
var ErrUnauthorized = errors.New("identity: unauthorized")

// Require returns the request identity, or a channel-appropriate
// failure when none was attached.
func Require(r *http.Request) (*Identity, error) {
	if id, ok := Get(r.Context()); ok {
		return id, nil
	}
	if ClassifyPath(r.URL.Path) == ChannelHeader {
		return nil, ErrUnauthorized
	}
	return nil, ErrLoginRequired
}

// From returns the request identity if one was attached. It never
// fails; anonymous requests simply report ok == false.
func From(r *http.Request) (*Identity, bool) {
	return Get(r.Context())
}
