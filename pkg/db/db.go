// Package db establishes the database connection used by the
// credential store.
package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const retryInterval = time.Second

// Config holds database connection configuration.
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL env var).
	URL string
	// MaxConnections bounds the connection pool.
	MaxConnections int
	// AcquireTimeout bounds how long a request waits for a free
	// connection. Applied by the store as a per-operation deadline.
	AcquireTimeout time.Duration
}

// Connect establishes a database connection, retrying indefinitely
// until the database is reachable or ctx is cancelled. Each failed
// attempt is logged. The service deliberately blocks at startup rather
// than starting degraded: the database may come up after us.
func Connect(ctx context.Context, cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	for {
		db, err := open(dbURL)
		if err == nil {
			if cfg.MaxConnections > 0 {
				sqlDB, err := db.DB()
				if err != nil {
					return nil, fmt.Errorf("failed to access connection pool: %w", err)
				}
				sqlDB.SetMaxOpenConns(cfg.MaxConnections)
			}
			return db, nil
		}

		log.Printf("unable to connect to database: %v; retrying...", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func open(dbURL string) (*gorm.DB, error) {
	// Default to silent logging unless CRATEVAULT_LOG_LEVEL=debug is set
	logMode := logger.Silent
	if os.Getenv("CRATEVAULT_LOG_LEVEL") == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logMode),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}
