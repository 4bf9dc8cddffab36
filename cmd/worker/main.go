package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robalyx/embedder/internal/setup"
	"github.com/robalyx/embedder/internal/setup/telemetry"
	"github.com/robalyx/embedder/internal/worker/core"
	"github.com/robalyx/embedder/internal/worker/purge"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// WorkerLogDir specifies where worker log files are stored.
	WorkerLogDir = "logs/worker_logs"

	// PurgeWorker removes old posts from the database.
	PurgeWorker = "purge"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "worker",
		Usage: "Start the embedder worker",
		Commands: []*cli.Command{
			{
				Name:  PurgeWorker,
				Usage: "Start the post purge worker",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "once",
						Usage: "Run a single purge and exit",
					},
					&cli.StringFlag{
						Name:  "older-than",
						Usage: "Override the configured post age, e.g. 30d",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return runPurge(ctx, c.Bool("once"), c.String("older-than"))
				},
			},
			{
				Name:  "status",
				Usage: "Show the status of running workers",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return showStatus(ctx)
				},
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

// runPurge starts the purge worker on its schedule or runs it once.
func runPurge(ctx context.Context, once bool, olderThan string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := setup.InitializeApp(ctx, telemetry.ServiceWorker, WorkerLogDir)
	if err != nil {
		return err
	}
	defer app.Cleanup()

	logger := app.LogManager.GetWorkerLogger(PurgeWorker + "_worker")
	reporter := core.NewStatusReporter(core.NewMonitor(app.StatusClient, logger), PurgeWorker, logger)

	cfg := app.Config.Worker.Purge
	if olderThan != "" {
		cfg.OlderThan = olderThan
	}

	worker, err := purge.New(app.Service, reporter, &cfg, logger)
	if err != nil {
		return err
	}

	if once {
		deleted, err := worker.RunOnce(ctx)
		if err != nil {
			return err
		}

		log.Printf("Deleted %d posts", deleted)
		return nil
	}

	log.Println("Purge worker started. Waiting for interrupt signal to gracefully shutdown...")
	if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Purge worker failed", zap.Error(err))
		return err
	}

	return nil
}

// showStatus prints the last reported status of every worker.
func showStatus(ctx context.Context) error {
	app, err := setup.InitializeApp(ctx, telemetry.ServiceCLI, WorkerLogDir)
	if err != nil {
		return err
	}
	defer app.Cleanup()

	statuses, err := core.NewMonitor(app.StatusClient, app.Logger).GetAllStatuses(ctx)
	if err != nil {
		return err
	}

	if len(statuses) == 0 {
		fmt.Println("No workers reported recently")
		return nil
	}

	now := time.Now()
	for _, status := range statuses {
		state := "healthy"
		switch {
		case status.IsStale(now):
			state = "offline"
		case !status.IsHealthy:
			state = "unhealthy"
		}

		fmt.Printf("%-8s %s  %-9s %3d%%  %s (last seen %s ago)\n",
			status.WorkerType, status.WorkerID, state, status.Progress, status.CurrentTask,
			now.Sub(status.LastSeen).Round(time.Second))
	}

	return nil
}
