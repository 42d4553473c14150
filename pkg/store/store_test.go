package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cratevault/cratevault/pkg/model"
)

func newTestStore(t *testing.T) (*Memory, context.Context) {
	t.Helper()
	return NewMemory(), context.Background()
}

func createTestUser(t *testing.T, st Store, name, password string, role model.Role) *model.User {
	t.Helper()
	user, err := st.CreateUser(context.Background(), name, password, role)
	require.NoError(t, err)
	return user
}

func TestCreateUser(t *testing.T) {
	st, ctx := newTestStore(t)

	user := createTestUser(t, st, "alice", "pw1", model.RoleViewer)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, model.RoleViewer, user.Role)
	assert.NotEqual(t, "pw1", user.PasswordHash, "password must never be stored raw")

	found, err := st.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	byID, err := st.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice", byID.Name)
}

func TestCreateUser_NameTaken(t *testing.T) {
	st, ctx := newTestStore(t)

	createTestUser(t, st, "x", "pw", model.RoleViewer)
	_, err := st.CreateUser(ctx, "x", "other", model.RolePublisher)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetUser_Absent(t *testing.T) {
	st, ctx := newTestStore(t)

	user, err := st.GetUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = st.GetUserByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestVerifyPassword(t *testing.T) {
	st, ctx := newTestStore(t)

	user := createTestUser(t, st, "alice", "pw1", model.RoleViewer)
	assert.NoError(t, st.VerifyPassword(ctx, user, "pw1"))
	assert.Error(t, st.VerifyPassword(ctx, user, "pw2"))
	assert.Error(t, st.VerifyPassword(ctx, user, ""))
}

func TestAPIKeyRoundTrip(t *testing.T) {
	st, ctx := newTestStore(t)

	user := createTestUser(t, st, "alice", "pw1", model.RoleViewer)
	token, err := st.GenerateAPIKey(ctx, "ci", user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := st.VerifyAPIKey(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestAPIKeyNameTaken(t *testing.T) {
	st, ctx := newTestStore(t)

	alice := createTestUser(t, st, "alice", "pw1", model.RoleViewer)
	bob := createTestUser(t, st, "bob", "pw2", model.RoleViewer)

	_, err := st.GenerateAPIKey(ctx, "ci", alice)
	require.NoError(t, err)

	// Key names are unique across all users, not per owner.
	_, err = st.GenerateAPIKey(ctx, "ci", alice)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = st.GenerateAPIKey(ctx, "ci", bob)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestVerifyAPIKey_NoIdentity(t *testing.T) {
	st, ctx := newTestStore(t)

	user := createTestUser(t, st, "alice", "pw1", model.RoleViewer)
	_, err := st.GenerateAPIKey(ctx, "ci", user)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"not base64":     "!!not-base64!!",
		"no colon":       encodeToken("aliceonly", "")[:8],
		"unknown user":   encodeToken("mallory", "c2VjcmV0"),
		"wrong secret":   encodeToken("alice", "d3Jvbmc="),
		"empty token":    "",
		"too many parts": encodeToken("alice", "a:b"),
	} {
		resolved, err := st.VerifyAPIKey(ctx, token)
		assert.NoError(t, err, name)
		assert.Nil(t, resolved, name)
	}
}

func TestRevokeAPIKey(t *testing.T) {
	st, ctx := newTestStore(t)

	user := createTestUser(t, st, "alice", "pw1", model.RoleViewer)
	token, err := st.GenerateAPIKey(ctx, "ci", user)
	require.NoError(t, err)

	keys, err := st.APIKeys(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	require.NoError(t, st.RevokeAPIKey(ctx, keys[0].ID, user.ID))

	resolved, err := st.VerifyAPIKey(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, resolved, "revoked token must no longer resolve")

	// Idempotent: revoking again is a silent no-op.
	assert.NoError(t, st.RevokeAPIKey(ctx, keys[0].ID, user.ID))
}

func TestRevokeAPIKey_OwnershipIsolation(t *testing.T) {
	st, ctx := newTestStore(t)

	alice := createTestUser(t, st, "alice", "pw1", model.RoleViewer)
	bob := createTestUser(t, st, "bob", "pw2", model.RoleViewer)

	token, err := st.GenerateAPIKey(ctx, "ci", alice)
	require.NoError(t, err)
	keys, err := st.APIKeys(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	// Bob cannot revoke Alice's key; the token stays usable.
	require.NoError(t, st.RevokeAPIKey(ctx, keys[0].ID, bob.ID))
	resolved, err := st.VerifyAPIKey(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, alice.ID, resolved.ID)
}

func TestMultipleKeysPerUser(t *testing.T) {
	st, ctx := newTestStore(t)

	user := createTestUser(t, st, "alice", "pw1", model.RoleViewer)
	t1, err := st.GenerateAPIKey(ctx, "laptop", user)
	require.NoError(t, err)
	t2, err := st.GenerateAPIKey(ctx, "ci", user)
	require.NoError(t, err)

	for _, token := range []string{t1, t2} {
		resolved, err := st.VerifyAPIKey(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, resolved)
		assert.Equal(t, user.ID, resolved.ID)
	}
}

func TestCrateOwnership(t *testing.T) {
	st, ctx := newTestStore(t)

	alice := createTestUser(t, st, "alice", "pw1", model.RolePublisher)
	bob := createTestUser(t, st, "bob", "pw2", model.RolePublisher)

	owners, err := st.CrateOwners(ctx, "serde")
	require.NoError(t, err)
	assert.Empty(t, owners, "unknown crate has no owners")

	crate, err := st.CreateCrate(ctx, "serde")
	require.NoError(t, err)

	// Creating the same name again returns the existing row.
	again, err := st.CreateCrate(ctx, "serde")
	require.NoError(t, err)
	assert.Equal(t, crate.ID, again.ID)

	require.NoError(t, st.AddCrateOwner(ctx, crate.ID, alice.ID))
	require.NoError(t, st.AddCrateOwner(ctx, crate.ID, bob.ID))

	owners, err = st.CrateOwners(ctx, "serde")
	require.NoError(t, err)
	assert.Len(t, owners, 2)

	require.NoError(t, st.RemoveCrateOwner(ctx, crate.ID, bob.ID))
	owners, err = st.CrateOwners(ctx, "serde")
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, alice.ID, owners[0].ID)
}

func TestMigrateIdempotent(t *testing.T) {
	st, ctx := newTestStore(t)

	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.Migrate(ctx), "second migrate must be a no-op")

	admin, err := st.GetUser(ctx, BootstrapAdminName)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, model.RoleAdministrator, admin.Role)
	assert.NoError(t, st.VerifyPassword(ctx, admin, BootstrapAdminPassword))
}

func TestEndToEndScenario(t *testing.T) {
	st, ctx := newTestStore(t)

	alice := createTestUser(t, st, "alice", "pw1", model.RoleViewer)

	token, err := st.GenerateAPIKey(ctx, "ci", alice)
	require.NoError(t, err)

	resolved, err := st.VerifyAPIKey(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "alice", resolved.Name)

	keys, err := st.APIKeys(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.NoError(t, st.RevokeAPIKey(ctx, keys[0].ID, alice.ID))

	resolved, err = st.VerifyAPIKey(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}
