package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jihun-01/scratcha-dashboard/adapters/datagen"
	"github.com/jihun-01/scratcha-dashboard/adapters/sqlite"
	"github.com/jihun-01/scratcha-dashboard/config"
)

var (
	seedSize int
	seedSeed int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Regenerate the session event pool",
	Long: `Regenerate the local usage event pool.

The dashboard derives all analytics from a pool of demo events that is
fixed for the lifetime of the database. This command discards the
current pool and generates a fresh one.

Examples:
  scratcha-dashboard seed
  scratcha-dashboard seed --size 25000 --seed 42`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedSize, "size", 0, "pool size (default from config)")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 0, "RNG seed (default from config, 0 = time-based)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return err
	}

	size := cfg.Dashboard.PoolSize
	if seedSize > 0 {
		size = seedSize
	}
	seed := cfg.Dashboard.Seed
	if seedSeed != 0 {
		seed = seedSeed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	gen := datagen.New(seed)
	pool := gen.Pool(time.Now(), size)

	events := sqlite.NewEventStore(db)
	if err := events.Replace(context.Background(), pool); err != nil {
		return fmt.Errorf("replace pool: %w", err)
	}

	fmt.Printf("Seeded %d events into %s\n", len(pool), cfg.Database.DSN)
	return nil
}
