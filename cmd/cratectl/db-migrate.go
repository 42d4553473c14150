package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cratevault/cratevault/pkg/config"
	"github.com/cratevault/cratevault/pkg/db"
	"github.com/cratevault/cratevault/pkg/store"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

Runs the embedded schema migrations and bootstraps the default
administrator account. Safe to run on every deploy.

Example:
  cratectl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrations(); err != nil {
			fmt.Fprintln(os.Stderr, "Migration failed:", err)
			os.Exit(1)
		}
		fmt.Println("Migrations complete")
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
}

func runMigrations() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	gormDB, err := db.Connect(ctx, db.Config{
		URL:            cfg.DatabaseURL,
		MaxConnections: cfg.DatabasePoolMax,
		AcquireTimeout: cfg.DatabaseTimeout(),
	})
	if err != nil {
		return err
	}

	return store.NewGormStore(gormDB, cfg.DatabaseTimeout()).Migrate(ctx)
}
