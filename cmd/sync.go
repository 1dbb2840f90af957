package cmd

import (
	"context"
	"fmt"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/logger"
	"catalog-sync/feature/catalog/remote"
	"catalog-sync/feature/catalog/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dryRunSync bool

// syncCmd runs exactly one reconciliation cycle and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single reconciliation cycle",
	Long: `Fetches both collections, reconciles them against the local
catalog and commits, then exits. Useful for cron-driven setups and for
inspecting what a cycle would do.

Examples:
  # One cycle, committed
  catalog-sync sync

  # Compute and log writes without persisting anything
  catalog-sync sync --dry-run`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Log planned writes and roll back instead of committing")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if dryRunSync {
		cfg.Sync.DryRun = true
	}

	client := remote.NewClient(cfg.Remote, l)
	sched := scheduler.New(db, client, cfg.Sync, l)

	sum, err := sched.RunCycle(context.Background())
	if err != nil {
		return fmt.Errorf("cycle failed: %w", err)
	}

	l.Info("Cycle complete",
		zap.Int("products_seen", sum.ProductsSeen),
		zap.Int("products_updated", sum.ProductsUpdated),
		zap.Int("offers_seen", sum.OffersSeen),
		zap.Int("product_price_writes", sum.ProductPriceWrites),
		zap.Int("option_quantity_writes", sum.OptionQuantityWrites),
		zap.Bool("products_unavailable", sum.ProductsUnavailable),
		zap.Bool("offers_unavailable", sum.OffersUnavailable),
		zap.Duration("duration", sum.Duration),
		zap.Bool("dry_run", cfg.Sync.DryRun),
	)
	return nil
}
