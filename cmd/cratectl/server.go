package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/sessions"
	"github.com/spf13/cobra"

	"github.com/cratevault/cratevault/pkg/config"
	"github.com/cratevault/cratevault/pkg/db"
	"github.com/cratevault/cratevault/pkg/server"
	"github.com/cratevault/cratevault/pkg/server/endpoints"
	"github.com/cratevault/cratevault/pkg/store"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the Cratevault application server",
	Long: `Run the Cratevault application server.

The server requires DATABASE_URL (or database_url in the config file).
It blocks at startup until the database is reachable. By default, schema
migrations are run on startup; use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Ctrl-C during the connect retry loop aborts startup cleanly.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		gormDB, err := db.Connect(ctx, db.Config{
			URL:            cfg.DatabaseURL,
			MaxConnections: cfg.DatabasePoolMax,
			AcquireTimeout: cfg.DatabaseTimeout(),
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to database:", err)
			os.Exit(1)
		}

		st := store.NewGormStore(gormDB, cfg.DatabaseTimeout())

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := st.Migrate(ctx); err != nil {
				fmt.Fprintln(os.Stderr, "Migration failed:", err)
				os.Exit(1)
			}
		}

		key, err := cfg.SessionKeyBytes()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if cfg.SessionKey == "" {
			log.Println("CRATEVAULT_SESSION_KEY not set; sessions will not survive a restart")
		}
		sessionStore := sessions.NewCookieStore(key)

		srv := server.NewServer(st, sessionStore, cfg.BindAddress, cfg.Port)
		endpoints.RegisterAll(srv)

		log.Printf("Server starting on %s", cfg.Addr())
		if err := srv.Start(); err != nil {
			fmt.Fprintln(os.Stderr, "Server failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().Bool("no-migrate", false, "Skip database migrations on startup")
}
