package store

import (
	"context"
	"sync"

	"github.com/cratevault/cratevault/pkg/model"
	"github.com/cratevault/cratevault/pkg/passhash"
)

// Ensure Memory implements Store
var _ Store = (*Memory)(nil)

// Memory is an in-memory Store with the same semantics as GormStore.
// It backs unit tests that don't want a database; it is safe for
// concurrent use.
type Memory struct {
	mu          sync.Mutex
	users       map[int]model.User
	keys        map[int]model.APIKey
	crates      map[int]model.Crate
	owners      map[[2]int]struct{}
	nextUserID  int
	nextKeyID   int
	nextCrateID int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:       map[int]model.User{},
		keys:        map[int]model.APIKey{},
		crates:      map[int]model.Crate{},
		owners:      map[[2]int]struct{}{},
		nextUserID:  1,
		nextKeyID:   1,
		nextCrateID: 1,
	}
}

func (m *Memory) userByName(name string) (model.User, bool) {
	for _, u := range m.users {
		if u.Name == name {
			return u, true
		}
	}
	return model.User{}, false
}

func (m *Memory) GetUser(_ context.Context, name string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.userByName(name); ok {
		return &u, nil
	}
	return nil, nil
}

func (m *Memory) GetUserByID(_ context.Context, id int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *Memory) CreateUser(_ context.Context, name, password string, role model.Role) (*model.User, error) {
	hash, err := passhash.Hash(password)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.userByName(name); ok {
		return nil, ErrConflict
	}
	user := model.User{ID: m.nextUserID, Name: name, PasswordHash: hash, Role: role}
	m.nextUserID++
	m.users[user.ID] = user
	return &user, nil
}

func (m *Memory) VerifyPassword(_ context.Context, user *model.User, password string) error {
	return passhash.Verify(password, user.PasswordHash)
}

func (m *Memory) APIKeys(_ context.Context, uid int) ([]model.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := []model.APIKey{}
	for _, k := range m.keys {
		if k.UserID == uid {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *Memory) GenerateAPIKey(_ context.Context, name string, user *model.User) (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", err
	}
	keyHash, err := passhash.Hash(secret)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range m.keys {
		if k.Name == name {
			return "", ErrConflict
		}
		if k.KeyHash == keyHash && k.UserID == user.ID {
			return "", ErrConflict
		}
	}

	key := model.APIKey{ID: m.nextKeyID, Name: name, UserID: user.ID, KeyHash: keyHash}
	m.nextKeyID++
	m.keys[key.ID] = key
	return encodeToken(user.Name, secret), nil
}

func (m *Memory) RevokeAPIKey(_ context.Context, id, uid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if k, ok := m.keys[id]; ok && k.UserID == uid {
		delete(m.keys, id)
	}
	return nil
}

func (m *Memory) VerifyAPIKey(ctx context.Context, token string) (*model.User, error) {
	username, secret, ok := decodeToken(token)
	if !ok {
		return nil, nil
	}

	user, err := m.GetUser(ctx, username)
	if err != nil || user == nil {
		return nil, err
	}
	keys, err := m.APIKeys(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		if passhash.Verify(secret, key.KeyHash) == nil {
			return user, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetCrate(_ context.Context, name string) (*model.Crate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.crateByName(name); ok {
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) CreateCrate(_ context.Context, name string) (*model.Crate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.crateByName(name); ok {
		return &c, nil
	}
	crate := model.Crate{ID: m.nextCrateID, Name: name}
	m.nextCrateID++
	m.crates[crate.ID] = crate
	return &crate, nil
}

func (m *Memory) crateByName(name string) (model.Crate, bool) {
	for _, c := range m.crates {
		if c.Name == name {
			return c, true
		}
	}
	return model.Crate{}, false
}

func (m *Memory) AddCrateOwner(_ context.Context, cid, uid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.owners[[2]int{cid, uid}] = struct{}{}
	return nil
}

func (m *Memory) RemoveCrateOwner(_ context.Context, cid, uid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.owners, [2]int{cid, uid})
	return nil
}

func (m *Memory) CrateOwners(_ context.Context, name string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owners := []model.User{}
	crate, ok := m.crateByName(name)
	if !ok {
		return owners, nil
	}
	for edge := range m.owners {
		if edge[0] == crate.ID {
			if u, ok := m.users[edge[1]]; ok {
				owners = append(owners, u)
			}
		}
	}
	return owners, nil
}

func (m *Memory) Migrate(ctx context.Context) error {
	_, err := m.CreateUser(ctx, BootstrapAdminName, BootstrapAdminPassword, model.RoleAdministrator)
	if err != nil && err != ErrConflict {
		return err
	}
	return nil
}
