package main

import (
	"github.com/spf13/cobra"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database operations",
	Long:  `Operations on the Cratevault database: schema migration and readiness checks.`,
}

func init() {
	rootCmd.AddCommand(dbCmd)
}
