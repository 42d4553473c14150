package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"time"

	"github.com/gorilla/sessions"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cratevault/cratevault/pkg/server"
	"github.com/cratevault/cratevault/pkg/server/endpoints"
	"github.com/cratevault/cratevault/pkg/store"
)

// TestContext holds the resources shared by the integration tests: a
// throwaway Postgres container, a migrated store, and an in-process
// HTTP server in front of it.
type TestContext struct {
	Container   testcontainers.Container
	DB          *gorm.DB
	Store       *store.GormStore
	Server      *httptest.Server
	HTTPClient  *http.Client
	DatabaseURL string
}

// NewTestContext starts a PostgreSQL testcontainer, runs the schema
// migrations against it, and serves the full router over a local
// listener.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("cratevault_test"),
		tcpostgres.WithUsername("cratevault"),
		tcpostgres.WithPassword("cratevault"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	connStr := fmt.Sprintf("postgres://cratevault:cratevault@%s:%s/cratevault_test?sslmode=disable", host, port.Port())

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	st := store.NewGormStore(db, 5*time.Second)
	if err := st.Migrate(ctx); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	sess := sessions.NewCookieStore([]byte("integration-test-session-key-123"))
	srv := server.NewServer(st, sess, "127.0.0.1", "0")
	endpoints.RegisterAll(srv)
	httpServer := httptest.NewServer(srv.Router)

	jar, err := cookiejar.New(nil)
	if err != nil {
		httpServer.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &TestContext{
		Container:   pgContainer,
		DB:          db,
		Store:       st,
		Server:      httpServer,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second, Jar: jar},
		DatabaseURL: connStr,
	}, nil
}

// Close tears down the HTTP server and the database container.
func (tc *TestContext) Close(ctx context.Context) {
	tc.Server.Close()
	if sqlDB, err := tc.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = tc.Container.Terminate(ctx)
}
