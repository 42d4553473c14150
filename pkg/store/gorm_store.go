package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	dbfs "github.com/cratevault/cratevault/db"
	"github.com/cratevault/cratevault/pkg/model"
	"github.com/cratevault/cratevault/pkg/passhash"
)

// Ensure GormStore implements Store
var _ Store = (*GormStore)(nil)

// GormStore implements Store over Postgres using GORM.
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormStore creates a GormStore. acquireTimeout bounds each
// operation's wait for a pooled connection; zero disables the deadline.
func NewGormStore(db *gorm.DB, acquireTimeout time.Duration) *GormStore {
	return &GormStore{db: db, timeout: acquireTimeout}
}

// conn returns a request-scoped handle carrying the operation deadline.
func (s *GormStore) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		return s.db.WithContext(ctx), cancel
	}
	return s.db.WithContext(ctx), func() {}
}

func (s *GormStore) GetUser(ctx context.Context, name string) (*model.User, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var user model.User
	err := db.Where("name = ?", name).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var user model.User
	err := db.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user by id: %w", err)
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, name, password string, role model.Role) (*model.User, error) {
	existing, err := s.GetUser(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	hash, err := passhash.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("store: hash password: %w", err)
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	user := model.User{Name: name, PasswordHash: hash, Role: role}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("store: create user: %w", err)
	}

	// Re-query so the caller sees the row exactly as stored, generated
	// id included.
	created, err := s.GetUser(ctx, name)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("store: created user %q not found on re-read", name)
	}
	return created, nil
}

// VerifyPassword never touches the database; the hash string carries
// everything verification needs.
func (s *GormStore) VerifyPassword(_ context.Context, user *model.User, password string) error {
	return passhash.Verify(password, user.PasswordHash)
}

func (s *GormStore) APIKeys(ctx context.Context, uid int) ([]model.APIKey, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var keys []model.APIKey
	if err := db.Where("uid = ?", uid).Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("store: list api keys: %w", err)
	}
	return keys, nil
}

func (s *GormStore) GenerateAPIKey(ctx context.Context, name string, user *model.User) (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", fmt.Errorf("store: generate secret: %w", err)
	}
	keyHash, err := passhash.Hash(secret)
	if err != nil {
		return "", fmt.Errorf("store: hash secret: %w", err)
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	// Key names are unique across all users.
	var existing model.APIKey
	err = db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return "", ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("store: check key name: %w", err)
	}

	// A hash collision for the same owner is practically impossible;
	// checked anyway since the pair must stay unique.
	err = db.Where("key = ? AND uid = ?", keyHash, user.ID).First(&existing).Error
	if err == nil {
		return "", ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("store: check key hash: %w", err)
	}

	key := model.APIKey{Name: name, UserID: user.ID, KeyHash: keyHash}
	if err := db.Create(&key).Error; err != nil {
		if isUniqueViolation(err) {
			return "", ErrConflict
		}
		return "", fmt.Errorf("store: create api key: %w", err)
	}

	return encodeToken(user.Name, secret), nil
}

func (s *GormStore) RevokeAPIKey(ctx context.Context, id, uid int) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	// Scoping the delete to uid keeps one user from revoking another's
	// key; deleting nothing is not an error.
	if err := db.Where("id = ? AND uid = ?", id, uid).Delete(&model.APIKey{}).Error; err != nil {
		return fmt.Errorf("store: revoke api key: %w", err)
	}
	return nil
}

func (s *GormStore) VerifyAPIKey(ctx context.Context, token string) (*model.User, error) {
	username, secret, ok := decodeToken(token)
	if !ok {
		return nil, nil
	}

	user, err := s.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	keys, err := s.APIKeys(ctx, user.ID)
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

func (s *GormStore) GetCrate(ctx context.Context, name string) (*model.Crate, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var crate model.Crate
	err := db.Where("name = ?", name).First(&crate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get crate: %w", err)
	}
	return &crate, nil
}

func (s *GormStore) CreateCrate(ctx context.Context, name string) (*model.Crate, error) {
	existing, err := s.GetCrate(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	crate := model.Crate{Name: name}
	if err := db.Create(&crate).Error; err != nil {
		return nil, fmt.Errorf("store: create crate: %w", err)
	}
	return &crate, nil
}

func (s *GormStore) AddCrateOwner(ctx context.Context, cid, uid int) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	if err := db.Create(&model.Owner{CrateID: cid, UserID: uid}).Error; err != nil {
		return fmt.Errorf("store: add crate owner: %w", err)
	}
	return nil
}

func (s *GormStore) RemoveCrateOwner(ctx context.Context, cid, uid int) error {
	db, cancel := s.conn(ctx)
	defer cancel()

	if err := db.Where("cid = ? AND uid = ?", cid, uid).Delete(&model.Owner{}).Error; err != nil {
		return fmt.Errorf("store: remove crate owner: %w", err)
	}
	return nil
}

func (s *GormStore) CrateOwners(ctx context.Context, name string) ([]model.User, error) {
	crate, err := s.GetCrate(ctx, name)
	if err != nil {
		return nil, err
	}
	if crate == nil {
		return []model.User{}, nil
	}

	db, cancel := s.conn(ctx)
	defer cancel()

	var owners []model.User
	err = db.Table("users").
		Select("users.id, users.name, users.password_hash, users.role").
		Joins("INNER JOIN owners ON users.id = owners.uid").
		Where("owners.cid = ?", crate.ID).
		Find(&owners).Error
	if err != nil {
		return nil, fmt.Errorf("store: list crate owners: %w", err)
	}
	return owners, nil
}

// Migrate runs the embedded schema migrations and bootstraps the
// default administrator. Both halves are idempotent: migrations by
// version, the bootstrap by swallowing the name conflict.
func (s *GormStore) Migrate(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("store: access connection pool: %w", err)
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("store: prepare migration driver: %w", err)
	}
	source, err := iofs.New(dbfs.Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("store: load embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("store: prepare migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: run migrations: %w", err)
	}

	_, err = s.CreateUser(ctx, BootstrapAdminName, BootstrapAdminPassword, model.RoleAdministrator)
	if err != nil && !errors.Is(err, ErrConflict) {
		return fmt.Errorf("store: bootstrap admin: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
