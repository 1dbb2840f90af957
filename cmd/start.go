package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/logger"
	"catalog-sync/core/server"
	"catalog-sync/feature/catalog/remote"
	"catalog-sync/feature/catalog/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync daemon",
	Long: `Runs reconciliation cycles on a fixed interval until the process
receives SIGINT or SIGTERM. A failed cycle is rolled back and retried
after a shorter backoff; the loop never exits on an ordinary failure.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to the local catalog. Unlike the remote endpoints,
		// the database is not optional: without it there is nothing to
		// reconcile against.
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		logg.Info("Connected to local catalog")

		// 4. Remote client and scheduler
		client := remote.NewClient(cfg.Remote, logg)
		sched := scheduler.New(db, client, cfg.Sync, logg)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// 5. Optional status server
		var app *fiber.App
		if cfg.Server.Enabled {
			app = server.New(cfg.Server, logg)
			app.Get("/status", server.KeyGuard(cfg.Server), func(c *fiber.Ctx) error {
				return c.JSON(sched.Status())
			})
			go func() {
				logg.Info("Status server listening", zap.String("port", cfg.Server.Port))
				if err := app.Listen(":" + cfg.Server.Port); err != nil {
					logg.Error("Status server stopped", zap.Error(err))
				}
			}()
		}

		// 6. Run the scheduler until the process is signalled
		logg.Info("Scheduler started",
			zap.Int("interval_seconds", cfg.Sync.IntervalSeconds),
			zap.Bool("dry_run", cfg.Sync.DryRun),
		)
		sched.Run(ctx)

		logg.Info("Shutting down")
		if app != nil {
			_ = app.Shutdown()
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
