package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cratevault/cratevault/pkg/config"
	"github.com/cratevault/cratevault/pkg/db"
	"github.com/cratevault/cratevault/pkg/model"
	"github.com/cratevault/cratevault/pkg/store"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management",
	Long:  `Administrative management of Cratevault user accounts.`,
}

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a user account",
	Long: `Create a user account.

The password is read from the --password flag, or from stdin when the
flag is omitted. Role is one of: viewer, publisher, administrator.

Example:
  cratectl user create alice --role publisher
  echo -n secret | cratectl user create bob`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		roleName, _ := cmd.Flags().GetString("role")
		password, _ := cmd.Flags().GetString("password")

		role, err := model.RoleString(roleName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid role %q (want one of: %s)\n",
				roleName, strings.Join(model.RoleStrings(), ", "))
			os.Exit(1)
		}

		if password == "" {
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				fmt.Fprintln(os.Stderr, "A password is required (flag or stdin)")
				os.Exit(1)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		user, err := createUser(name, password, role)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created user '%s' (id %d, role %s)\n", user.Name, user.ID, user.Role)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().StringP("role", "r", "viewer", "User role")
	userCreateCmd.Flags().StringP("password", "p", "", "Password (read from stdin when omitted)")
}

func createUser(name, password string, role model.Role) (*model.User, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	gormDB, err := db.Connect(ctx, db.Config{
		URL:            cfg.DatabaseURL,
		MaxConnections: cfg.DatabasePoolMax,
		AcquireTimeout: cfg.DatabaseTimeout(),
	})
	if err != nil {
		return nil, err
	}

	return store.NewGormStore(gormDB, cfg.DatabaseTimeout()).CreateUser(ctx, name, password, role)
}
