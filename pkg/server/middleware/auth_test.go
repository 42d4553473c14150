package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cratevault/cratevault/pkg/identity"
	"github.com/cratevault/cratevault/pkg/model"
	"github.com/cratevault/cratevault/pkg/store"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	sess := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	return NewAuthenticator(mem, sess), mem
}

// capture runs req through the middleware and returns whatever identity
// the inner handler observed.
func capture(a *Authenticator, req *http.Request) *identity.Identity {
	var got *identity.Identity
	handler := a.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = identity.From(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestHeaderChannel(t *testing.T) {
	auth, mem := newTestAuthenticator(t)
	alice, err := mem.CreateUser(context.Background(), "alice", "pw1", model.RolePublisher)
	require.NoError(t, err)
	token, err := mem.GenerateAPIKey(context.Background(), "ci", alice)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/whoami", nil)
	req.Header.Set("Authorization", token)

	id := capture(auth, req)
	require.NotNil(t, id)
	assert.Equal(t, alice.ID, id.User.ID)
	assert.Equal(t, identity.ChannelHeader, id.Channel)
}

func TestHeaderChannel_Anonymous(t *testing.T) {
	auth, mem := newTestAuthenticator(t)
	alice, err := mem.CreateUser(context.Background(), "alice", "pw1", model.RoleViewer)
	require.NoError(t, err)
	token, err := mem.GenerateAPIKey(context.Background(), "ci", alice)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing header":   "",
		"malformed token":  "!!not-a-token!!",
		"unknown user":    "QWxhZGRpbjpvcGVuIHNlc2FtZQ==",
	} {
		req := httptest.NewRequest("GET", "/api/v1/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Nil(t, capture(auth, req), name)
	}

	// A valid token on a session-classified path is ignored.
	req := httptest.NewRequest("GET", "/user", nil)
	req.Header.Set("Authorization", token)
	assert.Nil(t, capture(auth, req))
}

func TestSessionChannel(t *testing.T) {
	auth, mem := newTestAuthenticator(t)
	alice, err := mem.CreateUser(context.Background(), "alice", "pw1", model.RoleViewer)
	require.NoError(t, err)

	// Log in: establish the session credential and capture the cookie.
	w := httptest.NewRecorder()
	login := httptest.NewRequest("POST", "/login", nil)
	require.NoError(t, auth.SetSessionUser(w, login, alice.ID))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest("GET", "/user", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	id := capture(auth, req)
	require.NotNil(t, id)
	assert.Equal(t, alice.ID, id.User.ID)
	assert.Equal(t, identity.ChannelSession, id.Channel)
}

func TestSessionChannel_Anonymous(t *testing.T) {
	auth, _ := newTestAuthenticator(t)

	// No cookie at all.
	assert.Nil(t, capture(auth, httptest.NewRequest("GET", "/user", nil)))

	// A cookie signed with a different key is the same as no session.
	other := sessions.NewCookieStore([]byte("another-key-entirely-0123456789ab"))
	w := httptest.NewRecorder()
	forged := NewAuthenticator(nil, other)
	require.NoError(t, forged.SetSessionUser(w, httptest.NewRequest("POST", "/login", nil), 1))

	req := httptest.NewRequest("GET", "/user", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	assert.Nil(t, capture(auth, req))
}

func TestSessionChannel_StaleUser(t *testing.T) {
	auth, _ := newTestAuthenticator(t)

	// Session references a uid that no longer exists.
	w := httptest.NewRecorder()
	require.NoError(t, auth.SetSessionUser(w, httptest.NewRequest("POST", "/login", nil), 999))

	req := httptest.NewRequest("GET", "/user", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	assert.Nil(t, capture(auth, req))
}

func TestClearSessionUser(t *testing.T) {
	auth, mem := newTestAuthenticator(t)
	alice, err := mem.CreateUser(context.Background(), "alice", "pw1", model.RoleViewer)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, auth.SetSessionUser(w, httptest.NewRequest("POST", "/login", nil), alice.ID))
	loginCookies := w.Result().Cookies()

	// Logout invalidates the cookie.
	logout := httptest.NewRequest("POST", "/logout", nil)
	for _, c := range loginCookies {
		logout.AddCookie(c)
	}
	w2 := httptest.NewRecorder()
	require.NoError(t, auth.ClearSessionUser(w2, logout))
	cleared := w2.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Negative(t, cleared[0].MaxAge)
}
