package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cratevault/cratevault/pkg/model"
	"github.com/cratevault/cratevault/pkg/server/endpoints"
	"github.com/cratevault/cratevault/pkg/store"
)

func TestIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration tests. Set INTEGRATION_TEST=1 to run.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tc, err := NewTestContext(ctx)
	require.NoError(t, err)
	defer tc.Close(ctx)

	t.Run("MigrationsIdempotent", func(t *testing.T) {
		// A second run must be a no-op and must not mint a second admin.
		require.NoError(t, tc.Store.Migrate(ctx))

		admin, err := tc.Store.GetUser(ctx, store.BootstrapAdminName)
		require.NoError(t, err)
		require.NotNil(t, admin)
		assert.Equal(t, model.RoleAdministrator, admin.Role)
		assert.NoError(t, tc.Store.VerifyPassword(ctx, admin, store.BootstrapAdminPassword))
	})

	t.Run("APIKeyLifecycle", func(t *testing.T) {
		alice, err := tc.Store.CreateUser(ctx, "alice", "pw1", model.RoleViewer)
		require.NoError(t, err)

		token, err := tc.Store.GenerateAPIKey(ctx, "ci", alice)
		require.NoError(t, err)

		resolved, err := tc.Store.VerifyAPIKey(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, resolved)
		assert.Equal(t, alice.ID, resolved.ID)

		// Duplicate key names hit the database constraint.
		_, err = tc.Store.GenerateAPIKey(ctx, "ci", alice)
		assert.ErrorIs(t, err, store.ErrConflict)

		keys, err := tc.Store.APIKeys(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, keys, 1)
		require.NoError(t, tc.Store.RevokeAPIKey(ctx, keys[0].ID, alice.ID))

		resolved, err = tc.Store.VerifyAPIKey(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, resolved)
	})

	t.Run("UniqueUserName", func(t *testing.T) {
		_, err := tc.Store.CreateUser(ctx, "alice", "other", model.RolePublisher)
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("BrowserLogin", func(t *testing.T) {
		form := url.Values{
			"username": {store.BootstrapAdminName},
			"password": {store.BootstrapAdminPassword},
		}
		resp, err := tc.HTTPClient.PostForm(tc.Server.URL+"/login", form)
		require.NoError(t, err)
		defer resp.Body.Close()

		// The client follows the redirect to the account page.
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, strings.HasSuffix(resp.Request.URL.Path, "/user"))

		var account endpoints.AccountResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&account))
		assert.Equal(t, store.BootstrapAdminName, account.User.Name)
	})

	t.Run("AdminCreatesPublisher", func(t *testing.T) {
		// Rides the admin session established by BrowserLogin.
		body := bytes.NewReader([]byte(`{"name":"bob","password":"pw2","role":"publisher"}`))
		req, err := http.NewRequest("POST", tc.Server.URL+"/users", body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := tc.HTTPClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created model.User
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.Equal(t, model.RolePublisher, created.Role)
	})

	t.Run("OwnersOverBearerToken", func(t *testing.T) {
		bob, err := tc.Store.GetUser(ctx, "bob")
		require.NoError(t, err)
		require.NotNil(t, bob)
		token, err := tc.Store.GenerateAPIKey(ctx, "bob-key", bob)
		require.NoError(t, err)

		req, err := http.NewRequest("PUT",
			tc.Server.URL+"/api/v1/crates/serde/owners",
			bytes.NewReader([]byte(`{"users":["bob"]}`)))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", token)

		resp, err := tc.HTTPClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		owners, err := tc.Store.CrateOwners(ctx, "serde")
		require.NoError(t, err)
		require.Len(t, owners, 1)
		assert.Equal(t, "bob", owners[0].Name)
	})
}
