package store

import (
	"context"
	"errors"

	"github.com/cratevault/cratevault/pkg/model"
)

// ErrConflict is returned when a create operation collides with an
// existing unique value: a taken user name, a taken API key name, or a
// duplicate key hash for the same owner.
var ErrConflict = errors.New("store: unique value already exists")

// Default administrator bootstrapped by Migrate. The password is
// expected to be rotated immediately on a fresh deployment.
const (
	BootstrapAdminName     = "admin"
	BootstrapAdminPassword = "admin"
)

// Store abstracts the storage operations for the identity and
// credential subsystem. Lookups report absence as (nil, nil) rather
// than an error.
type Store interface {
	// GetUser fetches a user by name.
	GetUser(ctx context.Context, name string) (*model.User, error)

	// GetUserByID fetches a user by primary key.
	GetUserByID(ctx context.Context, id int) (*model.User, error)

	// CreateUser hashes the password and inserts a new user, returning
	// the freshly read row. Returns ErrConflict if the name is taken.
	CreateUser(ctx context.Context, name, password string, role model.Role) (*model.User, error)

	// VerifyPassword checks a login password against the user's stored
	// hash. Any mismatch or malformed hash yields the same failure.
	VerifyPassword(ctx context.Context, user *model.User, password string) error

	// APIKeys lists all keys owned by a user.
	APIKeys(ctx context.Context, uid int) ([]model.APIKey, error)

	// GenerateAPIKey mints a new bearer token for the user and persists
	// its hash under the given key name. The returned token is shown to
	// the caller exactly once; it cannot be reconstructed afterwards.
	// Returns ErrConflict if the name is already in use.
	GenerateAPIKey(ctx context.Context, name string, user *model.User) (string, error)

	// RevokeAPIKey deletes the key matching both id and owning uid.
	// Revoking a missing or non-owned key is a silent no-op.
	RevokeAPIKey(ctx context.Context, id, uid int) error

	// VerifyAPIKey resolves a presented bearer token to its owning
	// user. Malformed tokens, unknown users, and non-matching secrets
	// all yield (nil, nil).
	VerifyAPIKey(ctx context.Context, token string) (*model.User, error)

	// GetCrate fetches a crate by name.
	GetCrate(ctx context.Context, name string) (*model.Crate, error)

	// CreateCrate records a crate name in the ownership graph. A crate
	// is created once per distinct name; creating it again returns the
	// existing row.
	CreateCrate(ctx context.Context, name string) (*model.Crate, error)

	// AddCrateOwner grants uid management rights over cid.
	AddCrateOwner(ctx context.Context, cid, uid int) error

	// RemoveCrateOwner revokes uid's rights over cid.
	RemoveCrateOwner(ctx context.Context, cid, uid int) error

	// CrateOwners lists the owners of a crate by name. An unknown crate
	// has no owners; that is an empty list, not an error.
	CrateOwners(ctx context.Context, name string) ([]model.User, error)

	// Migrate initializes the schema and bootstraps the default
	// administrator. Safe to invoke on every process start.
	Migrate(ctx context.Context) error
}
