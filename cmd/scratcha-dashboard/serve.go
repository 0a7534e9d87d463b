package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jihun-01/scratcha-dashboard/bootstrap"
	"github.com/jihun-01/scratcha-dashboard/config"
)

var hotReload bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Start the Scratcha dashboard server.

The server will:
  - Load configuration from scratcha-dashboard.yaml (or --config)
  - Or load configuration from SCRATCHA_* environment variables
  - Open the local SQLite store and seed the event pool on first run
  - Serve the dashboard API

Environment variables (for Docker deployments):
  SCRATCHA_BACKEND_URL   - Scratcha backend base URL (required)
  SCRATCHA_DATABASE_DSN  - SQLite path (default: scratcha-dashboard.db)
  SCRATCHA_SERVER_PORT   - Server port (default: 8080)
  SCRATCHA_LOG_LEVEL     - Log level: debug, info, warn, error

Examples:
  scratcha-dashboard serve
  scratcha-dashboard serve --config /etc/scratcha/dashboard.yaml

  # Docker (env vars only):
  SCRATCHA_BACKEND_URL=https://api.scratcha.cloud scratcha-dashboard serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return err
	}

	app, err := bootstrap.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	if hotReload {
		if _, statErr := os.Stat(cfgFile); statErr == nil {
			holder, err := config.NewHolder(cfgFile, app.Logger)
			if err == nil {
				holder.WatchSignals()
				if err := holder.WatchFile(); err != nil {
					app.Logger.Warn().Err(err).Msg("config watch unavailable")
				}
				defer holder.Stop()
			}
		}
	}

	return app.Run()
}
