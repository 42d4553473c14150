package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cratectl",
	Short: "Cratevault registry identity server",
	Long:  `cratectl manages and runs the Cratevault registry identity server.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
