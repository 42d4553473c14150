package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/cratevault/cratevault/pkg/config"
)

// dbWaitCmd represents the db wait command
var dbWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the database to accept connections",
	Long: `Wait for the database to accept connections by pinging it.

This command repeatedly pings the database until it responds or the
maximum number of retries is reached. Useful in container entrypoints
that must not start dependents before the database is up.

Example:
  cratectl db wait
  cratectl db wait --retries 90`,
	Run: func(cmd *cobra.Command, args []string) {
		retries, _ := cmd.Flags().GetInt("retries")

		if err := waitForDatabase(retries); err != nil {
			fmt.Fprintf(os.Stderr, "Database did not become ready: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Database is ready")
	},
}

func init() {
	dbCmd.AddCommand(dbWaitCmd)
	dbWaitCmd.Flags().IntP("retries", "r", 30, "Number of retries")
}

func waitForDatabase(retries int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	fmt.Println("Waiting for the database to be ready...")
	for i := 0; i < retries; i++ {
		if err := conn.Ping(); err == nil {
			fmt.Println()
			return nil
		}
		fmt.Print(".")
		time.Sleep(1 * time.Second)
	}

	fmt.Println()
	return fmt.Errorf("database is not ready after %d seconds", retries)
}
