package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jihun-01/scratcha-dashboard/adapters/sqlite"
	"github.com/jihun-01/scratcha-dashboard/config"
)

const (
	checkMark = "✓"
	crossMark = "✗"
)

var (
	validateCheckBackend  bool
	validateCheckDatabase bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the dashboard configuration file.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - Backend is reachable (optional)
  - Database is writable (optional)

Examples:
  scratcha-dashboard validate
  scratcha-dashboard validate --config /etc/scratcha/dashboard.yaml --check-backend`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckBackend, "check-backend", false, "check if the backend is reachable")
	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if the database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config syntax valid\n", checkMark)

	if validateCheckBackend {
		if err := checkBackend(cfg.Backend.URL); err != nil {
			fmt.Printf("  %s Backend reachable\n", crossMark)
			return fmt.Errorf("backend check: %w", err)
		}
		fmt.Printf("  %s Backend reachable\n", checkMark)
	}

	if validateCheckDatabase {
		if err := checkDatabase(cfg.Database.DSN); err != nil {
			fmt.Printf("  %s Database writable\n", crossMark)
			return fmt.Errorf("database check: %w", err)
		}
		fmt.Printf("  %s Database writable\n", checkMark)
	}

	fmt.Printf("\nConfiguration valid\n")
	fmt.Printf("  Backend:  %s\n", cfg.Backend.URL)
	fmt.Printf("  Database: %s\n", cfg.Database.DSN)
	fmt.Printf("  Plan:     %s\n", cfg.Dashboard.DefaultPlan)
	fmt.Printf("  Scenario: %s\n", cfg.Dashboard.Scenario)
	return nil
}

func checkBackend(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func checkDatabase(dsn string) error {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Migrate()
}
