package identity

import (
	"context"
	"strings"

	"github.com/cratevault/cratevault/pkg/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Channel is the credential channel a request authenticates over,
// selected by path classification.
type Channel int

const (
	// ChannelSession authenticates with a uid stored in the browser
	// session cookie.
	ChannelSession Channel = iota
	// ChannelHeader authenticates with a bearer token in the
	// Authorization header.
	ChannelHeader
)

// Identity is the resolved user attached to a request after successful
// authentication. It is written once by the auth middleware and
// read-only afterwards.
type Identity struct {
	User    *model.User
	Channel Channel
}

// ClassifyPath selects a credential channel from the first path
// segment. The git index and the cargo-facing API authenticate with
// bearer tokens; everything else is browser traffic carrying a session
// cookie. The auth middleware and the extractors both use this, so the
// failure a handler signals always matches how the request would have
// been authenticated.
func ClassifyPath(path string) Channel {
	seg := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	switch seg {
	case "git", "api":
		return ChannelHeader
	}
	return ChannelSession
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
