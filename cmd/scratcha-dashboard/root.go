package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scratcha-dashboard",
	Short: "Customer dashboard service for the Scratcha CAPTCHA platform",
	Long: `Scratcha Dashboard serves usage analytics, billing figures, and
application/API-key management for Scratcha customers.

Analytics are derived from a session-fixed event pool; account,
application, and key operations are delegated to the Scratcha backend.

Quick start:
  scratcha-dashboard serve     # Start the dashboard server

Management:
  scratcha-dashboard seed      # Regenerate the session event pool
  scratcha-dashboard validate  # Validate configuration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "scratcha-dashboard.yaml", "config file path")
}
